package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	gosdk "github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rubberduck/pkg/action"
	"github.com/papercomputeco/rubberduck/pkg/completion"
	"github.com/papercomputeco/rubberduck/pkg/conversation"
	"github.com/papercomputeco/rubberduck/pkg/logger"
	"github.com/papercomputeco/rubberduck/pkg/panel"
	"github.com/papercomputeco/rubberduck/pkg/projection/memory"
)

func resultText(result *gosdk.CallToolResult) string {
	ExpectWithOffset(1, result.Content).To(HaveLen(1))
	text, ok := result.Content[0].(*gosdk.TextContent)
	ExpectWithOffset(1, ok).To(BeTrue())
	return text.Text
}

var _ = Describe("conversation tools", func() {
	var (
		ctx    context.Context
		p      *panel.Panel
		host   *memory.Host
		server *Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		host = memory.New()

		ids := 0
		var err error
		p, err = panel.New(panel.Config{
			Strategies: func(t conversation.Trigger) (conversation.Strategy, error) {
				return action.New(t, action.Deps{
					Completer: completion.CompleterFunc(func(context.Context, string) (string, error) {
						return "test('adds', () => expect(add(1,2)).toBe(3))", nil
					}),
					Host: host,
				})
			},
			NewID: func() string {
				ids++
				return fmt.Sprintf("conv-%d", ids)
			},
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(Config{Panel: p, Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("start_conversation", func() {
		It("creates a conversation and mirrors the view as JSON text", func() {
			result, view, err := server.handleStart(ctx, nil, StartInput{
				Action:   "generateTest",
				Filename: "add.js",
				Code:     "function add(a,b){return a+b}",
				Language: "javascript",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(view.ID).To(Equal("conv-1"))
			Expect(view.Trigger.Type).To(Equal(conversation.ActionGenerateTest))

			var decoded conversation.View
			Expect(json.Unmarshal([]byte(resultText(result)), &decoded)).To(Succeed())
			Expect(decoded.ID).To(Equal("conv-1"))

			p.Wait()
			creates, _, _ := host.Counts()
			Expect(creates).To(Equal(1))
		})

		It("reports invalid triggers as tool errors", func() {
			result, _, err := server.handleStart(ctx, nil, StartInput{Action: "refine", Code: "x"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("Failed to start conversation"))
		})
	})

	Describe("send_message", func() {
		BeforeEach(func() {
			_, _, err := server.handleStart(ctx, nil, StartInput{Action: "explain", Code: "x := 1"})
			Expect(err).NotTo(HaveOccurred())
			p.Wait()
		})

		It("accepts a reply while waiting for the user", func() {
			result, out, err := server.handleSend(ctx, nil, SendInput{ConversationID: "conv-1", Content: "why?"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(out.Accepted).To(BeTrue())
			p.Wait()
		})

		It("reports unknown conversations as tool errors", func() {
			result, _, err := server.handleSend(ctx, nil, SendInput{ConversationID: "nope", Content: "hi"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})
	})

	Describe("get_conversation", func() {
		It("returns the answered conversation", func() {
			_, _, err := server.handleStart(ctx, nil, StartInput{Action: "explain", Code: "x := 1"})
			Expect(err).NotTo(HaveOccurred())
			p.Wait()

			result, view, err := server.handleGet(ctx, nil, GetInput{ConversationID: "conv-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(view.State.Type).To(Equal(conversation.StateWaitingForUserReply))
			Expect(view.Messages).To(HaveLen(1))
		})

		It("reports unknown conversations as tool errors", func() {
			result, _, err := server.handleGet(ctx, nil, GetInput{ConversationID: "nope"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("conversation not found"))
		})
	})
})
