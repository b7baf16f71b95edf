package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BuildInfo", func() {
	It("renders the stamped build metadata", func() {
		DeferCleanup(func(v, s, b string) {
			Version, Sha, Buildtime = v, s, b
		}, Version, Sha, Buildtime)
		Version, Sha, Buildtime = "v0.3.0", "abc123", "2026-10-01"

		Expect(BuildInfo()).To(Equal("Version: v0.3.0\nSha: abc123\nBuilt at: 2026-10-01\n"))
	})
})
