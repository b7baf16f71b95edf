package selection_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rubberduck/pkg/selection"
)

const source = "package add\n\nfunc Add(a, b int) int {\n\treturn a + b\n}\n"

var _ = Describe("ParseRange", func() {
	DescribeTable("valid ranges",
		func(in string, want selection.Range) {
			r, err := selection.ParseRange(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(r).To(Equal(want))
		},
		Entry("empty", "", selection.Range{}),
		Entry("single line", "4", selection.Range{Start: 4, End: 4}),
		Entry("span", "3:5", selection.Range{Start: 3, End: 5}),
		Entry("open end", "3:", selection.Range{Start: 3}),
		Entry("spaces", " 3 : 5 ", selection.Range{Start: 3, End: 5}),
	)

	DescribeTable("invalid ranges",
		func(in string) {
			_, err := selection.ParseRange(in)
			Expect(err).To(MatchError(selection.ErrInvalidRange))
		},
		Entry("zero", "0"),
		Entry("letters", "a:b"),
		Entry("reversed", "5:3"),
	)
})

var _ = Describe("FromText", func() {
	It("cuts an inclusive 1-based range", func() {
		sel, err := selection.FromText("add.go", source, selection.Range{Start: 3, End: 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(sel.Text).To(Equal("func Add(a, b int) int {\n\treturn a + b\n}"))
		Expect(sel.StartLine).To(Equal(3))
		Expect(sel.EndLine).To(Equal(5))
		Expect(sel.Language).To(Equal("go"))
	})

	It("selects the whole file for the zero range", func() {
		sel, err := selection.FromText("add.go", source, selection.Range{})
		Expect(err).NotTo(HaveOccurred())
		Expect(sel.StartLine).To(Equal(1))
		Expect(sel.EndLine).To(Equal(5))
	})

	It("rejects ranges past the end", func() {
		_, err := selection.FromText("add.go", source, selection.Range{Start: 4, End: 9})
		Expect(err).To(MatchError(selection.ErrInvalidRange))
	})
})

var _ = Describe("Read", func() {
	It("reads the file from disk", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "add.js")
		Expect(os.WriteFile(path, []byte("function add(a,b){return a+b}\n"), 0o600)).To(Succeed())

		sel, err := selection.Read(path, selection.Range{Start: 1, End: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(sel.Filename).To(Equal(path))
		Expect(sel.Text).To(Equal("function add(a,b){return a+b}"))
		Expect(sel.Language).To(Equal("javascript"))
	})

	It("wraps missing files", func() {
		_, err := selection.Read("/does/not/exist.go", selection.Range{})
		Expect(err).To(MatchError(os.ErrNotExist))
	})
})

var _ = Describe("languages", func() {
	It("maps extensions both ways", func() {
		Expect(selection.LanguageForFilename("x.PY")).To(Equal("python"))
		Expect(selection.LanguageForFilename("Makefile")).To(BeEmpty())
		Expect(selection.ExtensionForLanguage("typescript")).To(Equal(".ts"))
		Expect(selection.ExtensionForLanguage("")).To(Equal(".txt"))
	})
})
