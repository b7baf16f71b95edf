package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rubberduck/pkg/cliui"
)

var _ = Describe("cliui", func() {
	Describe("Step", func() {
		It("prints the message with a success mark", func() {
			var buf bytes.Buffer
			err := cliui.Step(&buf, "Generating test", func() error { return nil })

			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("Generating test"))
			Expect(buf.String()).To(ContainSubstring("✓"))
			Expect(buf.String()).To(HaveSuffix("\n"))
		})

		It("returns the error with a failure mark", func() {
			var buf bytes.Buffer
			boom := errors.New("boom")
			err := cliui.Step(&buf, "Refining code", func() error { return boom })

			Expect(err).To(MatchError(boom))
			Expect(buf.String()).To(ContainSubstring("✗"))
		})
	})

	DescribeTable("FormatDuration",
		func(d time.Duration, want string) {
			Expect(cliui.FormatDuration(d)).To(Equal(want))
		},
		Entry("milliseconds", 12*time.Millisecond, "12ms"),
		Entry("seconds", 3200*time.Millisecond, "3.2s"),
	)

	It("marks errors", func() {
		Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
		Expect(cliui.Mark(errors.New("x"))).To(Equal(cliui.FailMark))
	})

	It("renders bot lines with and without markdown", func() {
		Expect(cliui.BotLine("It adds.", false)).To(ContainSubstring("It adds."))
		Expect(cliui.BotLine("It **adds**.", true)).To(ContainSubstring("adds"))
	})

	It("renders prompts", func() {
		Expect(cliui.Prompt("Ask a follow-up question…")).To(ContainSubstring("Ask a follow-up question…"))
		Expect(cliui.Prompt("")).To(ContainSubstring(">"))
	})

	It("renders errors", func() {
		Expect(cliui.ErrorLine("no key")).To(ContainSubstring("no key"))
	})
})
