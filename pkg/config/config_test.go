package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/rubberduck/pkg/config"
)

var _ = Describe("Configer", func() {
	var (
		tmpDir string
		cfger  *config.Configer
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(tmpDir) })

		cfger, err = config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("targets config.toml inside the override directory", func() {
		Expect(cfger.GetTarget()).To(Equal(filepath.Join(tmpDir, "config.toml")))
	})

	Describe("LoadConfig", func() {
		It("returns defaults when no file exists", func() {
			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})

		It("loads every section", func() {
			data := `version = 0

[gateway]
model = "davinci-002"
base_url = "http://localhost:9999/v1"
max_tokens = 256
timeout_seconds = 30

[api]
listen = ":9000"
events_listen = ":9001"

[projection]
dir = "/tmp/docs"

[eventstream]
provider = "kafka"
brokers = "localhost:9092"
topic = "duck"

[worker]
num_workers = 4
queue_size = 16
`
			Expect(os.WriteFile(cfger.GetTarget(), []byte(data), 0o600)).To(Succeed())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Gateway).To(Equal(config.GatewayConfig{
				Model:          "davinci-002",
				BaseURL:        "http://localhost:9999/v1",
				MaxTokens:      256,
				TimeoutSeconds: 30,
			}))
			Expect(cfg.API.Listen).To(Equal(":9000"))
			Expect(cfg.API.EventsListen).To(Equal(":9001"))
			Expect(cfg.Projection.Dir).To(Equal("/tmp/docs"))
			Expect(cfg.EventStream).To(Equal(config.EventStreamConfig{
				Provider: "kafka",
				Brokers:  "localhost:9092",
				Topic:    "duck",
			}))
			Expect(cfg.Worker.NumWorkers).To(Equal(uint(4)))
			Expect(cfg.Worker.QueueSize).To(Equal(uint(16)))
		})

		It("fills unset fields with defaults", func() {
			data := "[gateway]\nmodel = \"davinci-002\"\n"
			Expect(os.WriteFile(cfger.GetTarget(), []byte(data), 0o600)).To(Succeed())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())

			defaults := config.NewDefaultConfig()
			Expect(cfg.Gateway.Model).To(Equal("davinci-002"))
			Expect(cfg.Gateway.BaseURL).To(Equal(defaults.Gateway.BaseURL))
			Expect(cfg.Gateway.MaxTokens).To(Equal(defaults.Gateway.MaxTokens))
			Expect(cfg.API.Listen).To(Equal(defaults.API.Listen))
			Expect(cfg.EventStream.Provider).To(Equal("nop"))
		})

		It("fails on malformed TOML", func() {
			Expect(os.WriteFile(cfger.GetTarget(), []byte("not valid [[["), 0o600)).To(Succeed())

			_, err := cfger.LoadConfig()
			Expect(err).To(HaveOccurred())
		})

		It("rejects unsupported versions", func() {
			Expect(os.WriteFile(cfger.GetTarget(), []byte("version = 7\n"), 0o600)).To(Succeed())

			_, err := cfger.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("unsupported config version 7")))
		})
	})

	Describe("SaveConfig", func() {
		It("round-trips through LoadConfig", func() {
			cfg := config.NewDefaultConfig()
			cfg.Gateway.Model = "custom"
			cfg.Projection.Dir = "/var/duck"
			Expect(cfger.SaveConfig(cfg)).To(Succeed())

			loaded, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("writes with 0600 permissions", func() {
			Expect(cfger.SaveConfig(config.NewDefaultConfig())).To(Succeed())

			info, err := os.Stat(cfger.GetTarget())
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})

		It("rejects nil", func() {
			Expect(cfger.SaveConfig(nil)).NotTo(Succeed())
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		It("sets and reads a string key", func() {
			Expect(cfger.SetConfigValue("gateway.model", "davinci-002")).To(Succeed())

			val, err := cfger.GetConfigValue("gateway.model")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("davinci-002"))
		})

		It("sets and reads a numeric key", func() {
			Expect(cfger.SetConfigValue("gateway.max_tokens", "512")).To(Succeed())

			val, err := cfger.GetConfigValue("gateway.max_tokens")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("512"))
		})

		It("rejects non-numeric values for numeric keys", func() {
			err := cfger.SetConfigValue("worker.queue_size", "lots")
			Expect(err).To(MatchError(ContainSubstring("invalid value for worker.queue_size")))
		})

		It("returns an empty string for unset keys", func() {
			val, err := cfger.GetConfigValue("eventstream.brokers")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(BeEmpty())
		})

		It("rejects unknown keys", func() {
			Expect(cfger.SetConfigValue("proxy.upstream", "x")).To(MatchError(ContainSubstring("unknown config key")))

			_, err := cfger.GetConfigValue("proxy.upstream")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})
	})
})

var _ = Describe("config keys", func() {
	It("lists keys in section order", func() {
		keys := config.ValidConfigKeys()
		Expect(keys).To(HaveLen(12))
		Expect(keys[0]).To(Equal("gateway.model"))
		Expect(keys[len(keys)-1]).To(Equal("worker.queue_size"))
	})

	It("validates keys", func() {
		Expect(config.IsValidConfigKey("api.listen")).To(BeTrue())
		Expect(config.IsValidConfigKey("api.nope")).To(BeFalse())
	})
})

var _ = Describe("ParseConfigTOML", func() {
	It("parses a minimal document", func() {
		cfg, err := config.ParseConfigTOML([]byte("[api]\nlisten = \":1\"\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.API.Listen).To(Equal(":1"))
	})

	It("does not apply defaults", func() {
		cfg, err := config.ParseConfigTOML([]byte(""))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Gateway.Model).To(BeEmpty())
	})
})

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "viper-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(tmpDir) })
	})

	It("returns defaults when no config file exists", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(config.FromViper(v)).To(Equal(config.NewDefaultConfig()))
	})

	It("reads config file values over defaults", func() {
		data := "[gateway]\nmodel = \"davinci-002\"\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg := config.FromViper(v)
		Expect(cfg.Gateway.Model).To(Equal("davinci-002"))
		Expect(cfg.Gateway.MaxTokens).To(Equal(uint(1024)))
	})

	It("lets RUBBERDUCK_ variables override the file", func() {
		data := "[gateway]\nmodel = \"davinci-002\"\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
		GinkgoT().Setenv("RUBBERDUCK_GATEWAY_MODEL", "from-env")
		GinkgoT().Setenv("RUBBERDUCK_WORKER_NUM_WORKERS", "9")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg := config.FromViper(v)
		Expect(cfg.Gateway.Model).To(Equal("from-env"))
		Expect(cfg.Worker.NumWorkers).To(Equal(uint(9)))
	})
})

var _ = Describe("flags", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "flags-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(tmpDir) })
	})

	It("registers string flags from the registry with config defaults", func() {
		cmd := &cobra.Command{Use: "test"}
		var model string
		config.AddStringFlag(cmd, config.Flags, config.FlagModel, &model)

		f := cmd.Flags().Lookup("model")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("m"))
		Expect(f.DefValue).To(Equal(config.NewDefaultConfig().Gateway.Model))
	})

	It("registers uint flags", func() {
		cmd := &cobra.Command{Use: "test"}
		var tokens uint
		config.AddUintFlag(cmd, config.Flags, config.FlagMaxTokens, &tokens)

		f := cmd.Flags().Lookup("max-tokens")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal("1024"))
	})

	It("ignores unknown registry keys", func() {
		cmd := &cobra.Command{Use: "test"}
		var s string
		config.AddStringFlag(cmd, config.Flags, "nonexistent", &s)
		Expect(cmd.Flags().HasFlags()).To(BeFalse())
	})

	It("binds a set flag over the config file", func() {
		data := "[api]\nlisten = \":5555\"\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Flags, config.FlagListen, &listen)
		Expect(cmd.Flags().Set("listen", ":7777")).To(Succeed())

		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagListen})
		Expect(v.GetString("api.listen")).To(Equal(":7777"))
	})

	It("falls through to the config file when the flag is unset", func() {
		data := "[api]\nlisten = \":5555\"\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Flags, config.FlagListen, &listen)

		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagListen, "nonexistent"})
		Expect(v.GetString("api.listen")).To(Equal(":5555"))
	})
})
