package completion_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rubberduck/pkg/completion"
)

type recorder struct {
	prompts []string
	reply   string
	err     error
}

func (r *recorder) Complete(_ context.Context, prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	return r.reply, r.err
}

var _ = Describe("builders", func() {
	var (
		ctx context.Context
		rec *recorder
	)

	BeforeEach(func() {
		ctx = context.Background()
		rec = &recorder{}
	})

	Describe("Explain", func() {
		It("sends the explain prompt and trims the answer", func() {
			rec.reply = "\n It adds two numbers. \n"

			out, err := completion.Explain(ctx, rec, "function add(a,b){return a+b}")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("It adds two numbers."))
			Expect(rec.prompts).To(ConsistOf("Explain the code below:\n\n function add(a,b){return a+b}"))
		})

		It("rejects blank code without calling the completer", func() {
			_, err := completion.Explain(ctx, rec, "  ")
			Expect(err).To(MatchError(completion.ErrEmptyInput))
			Expect(rec.prompts).To(BeEmpty())
		})

		It("passes completer errors through untouched", func() {
			boom := errors.New("boom")
			rec.err = boom

			_, err := completion.Explain(ctx, rec, "x := 1")
			Expect(err).To(BeIdenticalTo(boom))
		})
	})

	Describe("AnswerFollowUp", func() {
		It("includes the code, the previous answer and the question", func() {
			rec.reply = "Because of overflow."

			out, err := completion.AnswerFollowUp(ctx, rec, "a+b", "It adds.", "why int?")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("Because of overflow."))
			Expect(rec.prompts[0]).To(ContainSubstring("a+b"))
			Expect(rec.prompts[0]).To(ContainSubstring("It adds."))
			Expect(rec.prompts[0]).To(ContainSubstring("why int?"))
		})
	})

	Describe("GenerateTest", func() {
		It("names the language and strips the code fence", func() {
			rec.reply = "```javascript\ntest('add', () => {});\n```\n"

			out, err := completion.GenerateTest(ctx, rec, "function add(a,b){return a+b}", "javascript")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("test('add', () => {});"))
			Expect(rec.prompts[0]).To(ContainSubstring("javascript"))
			Expect(rec.prompts[0]).To(ContainSubstring("function add(a,b){return a+b}"))
		})
	})

	Describe("RefineCode", func() {
		It("sends the base code and the instruction", func() {
			rec.reply = "refined"

			out, err := completion.RefineCode(ctx, rec, "base", "add a negative-number case", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("refined"))
			Expect(rec.prompts[0]).To(ContainSubstring("Instruction:\nadd a negative-number case"))
			Expect(rec.prompts[0]).To(ContainSubstring("Code:\nbase"))
		})

		It("requires an instruction", func() {
			_, err := completion.RefineCode(ctx, rec, "base", "", "go")
			Expect(err).To(MatchError(completion.ErrEmptyInput))
		})
	})

	Describe("CompleterFunc", func() {
		It("adapts a function", func() {
			f := completion.CompleterFunc(func(_ context.Context, p string) (string, error) {
				return "echo " + p, nil
			})
			out, err := f.Complete(ctx, "hi")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("echo hi"))
		})
	})
})

var _ = Describe("TrimCodeFence", func() {
	DescribeTable("fences",
		func(in, want string) {
			Expect(completion.TrimCodeFence(in)).To(Equal(want))
		},
		Entry("plain text", "  x := 1 \n", "x := 1"),
		Entry("fenced with language", "```go\nx := 1\n```", "x := 1"),
		Entry("fenced without language", "```\na\nb\n```\n\n", "a\nb"),
		Entry("unterminated fence", "```go\nx := 1", "x := 1"),
		Entry("single line fence marker", "```", "```"),
	)
})
