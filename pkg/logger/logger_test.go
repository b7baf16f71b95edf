package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rubberduck/pkg/logger"
)

func decodeLine(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	ExpectWithOffset(1, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)).To(Succeed())
	return parsed
}

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("writes text records by default", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf))
			l.Info("conversation created", "conversation_id", "abc")

			Expect(buf.String()).To(ContainSubstring("conversation created"))
			Expect(buf.String()).To(ContainSubstring("conversation_id=abc"))
		})

		It("drops debug records unless debug is enabled", func() {
			var quiet, loud bytes.Buffer
			logger.New(logger.WithWriter(&quiet)).Debug("hidden")
			logger.New(logger.WithWriter(&loud), logger.WithDebug(true)).Debug("shown")

			Expect(quiet.String()).To(BeEmpty())
			Expect(loud.String()).To(ContainSubstring("shown"))
		})

		It("writes JSON records", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.Info("answer produced", "messages", 2)

			parsed := decodeLine(&buf)
			Expect(parsed["msg"]).To(Equal("answer produced"))
			Expect(parsed["messages"]).To(BeNumerically("==", 2))
		})

		It("writes pretty records", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true))
			l.Info("projecting document")

			Expect(buf.String()).To(ContainSubstring("projecting document"))
		})

		It("labels pretty records with the prefix", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriter(&buf), logger.WithPretty(true), logger.WithPrefix("refine")).Info("answer produced")

			Expect(buf.String()).To(ContainSubstring("refine"))
			Expect(buf.String()).To(ContainSubstring("answer produced"))
		})

		It("writes to every writer", func() {
			var a, b bytes.Buffer
			logger.New(logger.WithWriters(&a, &b)).Info("both")

			Expect(a.String()).To(ContainSubstring("both"))
			Expect(b.String()).To(ContainSubstring("both"))
		})

		It("keeps attributes bound with With and WithGroup", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.With("component", "panel").WithGroup("trigger").Info("created", "type", "explain")

			parsed := decodeLine(&buf)
			Expect(parsed["component"]).To(Equal("panel"))
			group, ok := parsed["trigger"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(group["type"]).To(Equal("explain"))
		})
	})

	Describe("Nop", func() {
		It("is disabled at every level", func() {
			l := logger.Nop()
			Expect(l.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
			Expect(func() {
				l.With("k", "v").WithGroup("g").Error("ignored")
			}).NotTo(Panic())
		})
	})

	Describe("Multi", func() {
		It("fans records out to every logger", func() {
			var text, js bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&text)),
				logger.New(logger.WithWriter(&js), logger.WithJSON(true)),
			)
			multi.With("conversation_id", "c1").Info("state changed")

			Expect(text.String()).To(ContainSubstring("state changed"))
			parsed := decodeLine(&js)
			Expect(parsed["conversation_id"]).To(Equal("c1"))
		})

		It("is enabled when any logger is", func() {
			multi := logger.Multi(logger.Nop(), logger.New(logger.WithDebug(true)))
			Expect(multi.Handler().Enabled(context.Background(), slog.LevelDebug)).To(BeTrue())
		})
	})
})
