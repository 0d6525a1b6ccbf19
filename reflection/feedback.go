package reflection

import (
	"regexp"
	"strings"
)

// perfectKeywords mark a review with nothing left to improve.
var perfectKeywords = []string{
	"无需改进",
	"无需修改",
	"没有改进建议",
	"代码完美",
	"no need for improvement",
	"perfect",
	"optimal",
}

// verdictWindow is how many leading characters of a review are searched.
const verdictWindow = 100

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	codeBlock   = regexp.MustCompile("(?s)```[\\w+#.-]*[ \\t]*\\n?(.*?)\\s*```")
)

// IsPerfect reports whether review says the code needs no further changes.
// Punctuation is dropped and the first 100 characters are matched, case
// insensitively, against a fixed keyword list in English and Chinese.
func IsPerfect(review string) bool {
	clean := []rune(punctuation.ReplaceAllString(review, ""))
	if len(clean) > verdictWindow {
		clean = clean[:verdictWindow]
	}
	head := strings.ToLower(strings.TrimSpace(string(clean)))
	for _, k := range perfectKeywords {
		if strings.Contains(head, k) {
			return true
		}
	}
	return false
}

// ExtractCode returns the contents of the first fenced code block in text,
// or the whole text trimmed when there is none.
func ExtractCode(text string) string {
	if m := codeBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}
