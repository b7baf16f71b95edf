package setup_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rubberduck/cmd/rubberduck/setup"
	"github.com/papercomputeco/rubberduck/pkg/action"
	"github.com/papercomputeco/rubberduck/pkg/completion"
	"github.com/papercomputeco/rubberduck/pkg/config"
	"github.com/papercomputeco/rubberduck/pkg/conversation"
	"github.com/papercomputeco/rubberduck/pkg/logger"
	"github.com/papercomputeco/rubberduck/pkg/projection/memory"
)

var _ = Describe("ResolveProjectionDir", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "setup-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(tmpDir) })
	})

	It("prefers the override", func() {
		dir, err := setup.ResolveProjectionDir("/tmp/docs", tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(dir).To(Equal("/tmp/docs"))
	})

	It("defaults to documents inside the config dir", func() {
		dir, err := setup.ResolveProjectionDir("", tmpDir)
		Expect(err).NotTo(HaveOccurred())

		want, err := filepath.Abs(filepath.Join(tmpDir, "documents"))
		Expect(err).NotTo(HaveOccurred())
		Expect(dir).To(Equal(want))
		Expect(dir).To(BeADirectory())
	})
})

var _ = Describe("NewGateway", func() {
	It("uses the configured model", func() {
		tmpDir, err := os.MkdirTemp("", "setup-gateway-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(tmpDir) })

		cfg := config.NewDefaultConfig()
		cfg.Gateway.Model = "my-instruct-model"

		gw, err := setup.NewGateway(cfg, tmpDir, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(gw.Model()).To(Equal("my-instruct-model"))
	})
})

var _ = Describe("NewStrategyFactory", func() {
	var factory func(conversation.Trigger) (conversation.Strategy, error)

	BeforeEach(func() {
		c := completion.CompleterFunc(func(context.Context, string) (string, error) { return "ok", nil })
		factory = setup.NewStrategyFactory(c, memory.New(), logger.Nop())
	})

	It("builds projecting strategies for code actions", func() {
		strategy, err := factory(conversation.Trigger{
			Type:      conversation.ActionGenerateTest,
			Selection: conversation.Selection{Text: "func add() {}"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(strategy.Project).NotTo(BeNil())
	})

	It("passes validation errors through", func() {
		_, err := factory(conversation.Trigger{Type: conversation.ActionExplain})
		Expect(err).To(MatchError(action.ErrEmptySelection))
	})
})
