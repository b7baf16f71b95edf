// Package selection reads a line range of a source file into a
// conversation.Selection.
package selection

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/papercomputeco/rubberduck/pkg/conversation"
)

// ErrInvalidRange is returned for malformed or out of bounds line ranges.
var ErrInvalidRange = errors.New("invalid line range")

// Range is a 1-based inclusive line range. The zero Range selects the whole
// file.
type Range struct {
	Start int
	End   int
}

// ParseRange parses "START:END", "START:" (to end of file), "LINE" or "".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, nil
	}

	startStr, endStr, hasColon := strings.Cut(s, ":")

	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil || start < 1 {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}

	if !hasColon {
		return Range{Start: start, End: start}, nil
	}

	endStr = strings.TrimSpace(endStr)
	if endStr == "" {
		return Range{Start: start}, nil
	}

	end, err := strconv.Atoi(endStr)
	if err != nil || end < start {
		return Range{Start: start}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}

	return Range{Start: start, End: end}, nil
}

// Read loads the lines of r from path.
func Read(path string, r Range) (conversation.Selection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return conversation.Selection{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return FromText(path, string(data), r)
}

// FromText cuts r out of text, a file named filename.
func FromText(filename, text string, r Range) (conversation.Selection, error) {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	start, end := r.Start, r.End
	if start == 0 {
		start = 1
	}
	if end == 0 {
		end = len(lines)
	}
	if start > len(lines) || end > len(lines) || end < start {
		return conversation.Selection{}, fmt.Errorf("%w: %d:%d outside 1:%d", ErrInvalidRange, start, end, len(lines))
	}

	return conversation.Selection{
		Filename:  filename,
		StartLine: start,
		EndLine:   end,
		Text:      strings.Join(lines[start-1:end], "\n"),
		Language:  LanguageForFilename(filename),
	}, nil
}

var extLanguages = map[string]string{
	".go":    "go",
	".js":    "javascript",
	".jsx":   "javascriptreact",
	".mjs":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescriptreact",
	".py":    "python",
	".rb":    "ruby",
	".rs":    "rust",
	".java":  "java",
	".kt":    "kotlin",
	".c":     "c",
	".h":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".php":   "php",
	".swift": "swift",
	".scala": "scala",
	".sh":    "shellscript",
	".sql":   "sql",
	".lua":   "lua",
	".ex":    "elixir",
	".exs":   "elixir",
}

var languageExts = map[string]string{
	"go":              ".go",
	"javascript":      ".js",
	"javascriptreact": ".jsx",
	"typescript":      ".ts",
	"typescriptreact": ".tsx",
	"python":          ".py",
	"ruby":            ".rb",
	"rust":            ".rs",
	"java":            ".java",
	"kotlin":          ".kt",
	"c":               ".c",
	"cpp":             ".cpp",
	"csharp":          ".cs",
	"php":             ".php",
	"swift":           ".swift",
	"scala":           ".scala",
	"shellscript":     ".sh",
	"sql":             ".sql",
	"lua":             ".lua",
	"elixir":          ".ex",
}

// LanguageForFilename returns the editor language id for filename's
// extension, or "" when unknown.
func LanguageForFilename(filename string) string {
	return extLanguages[strings.ToLower(filepath.Ext(filename))]
}

// ExtensionForLanguage returns the file extension for a language id,
// defaulting to ".txt".
func ExtensionForLanguage(language string) string {
	if ext, ok := languageExts[language]; ok {
		return ext
	}
	return ".txt"
}
