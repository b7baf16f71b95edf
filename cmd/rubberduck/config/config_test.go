package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/rubberduck/cmd/rubberduck/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var tmpDir string

	run := func(args ...string) (string, error) {
		cmd := configcmder.NewConfigCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .rubberduck/ config directory")
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append(args, "--config-dir", tmpDir))
		err := cmd.Execute()
		return out.String(), err
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "rubberduck-config-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(tmpDir) })
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			_, err := run("set", "gateway.model", "my-model")
			Expect(err).NotTo(HaveOccurred())

			_, err = os.Stat(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects unknown keys", func() {
			_, err := run("set", "invalid_key", "value")
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly two arguments", func() {
			_, err := run("set", "gateway.model")
			Expect(err).To(HaveOccurred())
		})

		It("rejects invalid uint values", func() {
			_, err := run("set", "gateway.max_tokens", "not-a-number")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			_, err := run("set", "api.listen", ":9000")
			Expect(err).NotTo(HaveOccurred())

			out, err := run("get", "api.listen")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring(":9000"))
		})

		It("rejects unknown keys", func() {
			_, err := run("get", "invalid_key")
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly one argument", func() {
			_, err := run("get")
			Expect(err).To(HaveOccurred())
		})

		It("completes config keys", func() {
			var get *cobra.Command
			for _, sub := range configcmder.NewConfigCmd().Commands() {
				if sub.Name() == "get" {
					get = sub
				}
			}
			Expect(get).NotTo(BeNil())

			completions, _ := get.ValidArgsFunction(get, []string{}, "")
			Expect(completions).To(ContainElement("gateway.model"))
		})
	})

	Describe("list subcommand", func() {
		It("lists every key", func() {
			out, err := run("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("gateway.model"))
			Expect(out).To(ContainSubstring("eventstream.provider"))
		})

		It("shows set values", func() {
			_, err := run("set", "eventstream.topic", "duck.events")
			Expect(err).NotTo(HaveOccurred())

			out, err := run("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring(`"duck.events"`))
		})

		It("rejects any arguments", func() {
			_, err := run("list", "extra")
			Expect(err).To(HaveOccurred())
		})
	})
})
