package labels

import (
	"regexp"
	"strings"

	"github.com/Veraticus/sortit/internal/model"
)

var (
	labelPrefixRe = regexp.MustCompile(`(?i)^\s*labels?\s*:\s*`)
	numberingRe   = regexp.MustCompile(`^\d+[.)]\s*`)
)

// ParseLabelText turns a free-text model reply into labels. The reply is
// expected to be a comma-separated list, but newline and semicolon separated
// lists, bullets, numbering and quotes are tolerated.
func ParseLabelText(text string) model.LabelSet {
	text = cleanMarkdownWrapper(text)
	text = labelPrefixRe.ReplaceAllString(text, "")

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})

	seen := make(map[string]struct{}, len(fields))
	out := make(model.LabelSet, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		f = strings.TrimLeft(f, "-*•· \t")
		f = numberingRe.ReplaceAllString(f, "")
		f = strings.Trim(f, "\"'`“”")
		f = strings.TrimRight(f, ".!:")
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}

		key := model.NormalizeLabel(f)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, model.Label{Name: f})
	}
	return out
}

// cleanMarkdownWrapper strips a surrounding ``` code fence.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	if i := strings.Index(content, "\n"); i >= 0 {
		content = content[i+1:]
	} else {
		content = strings.TrimPrefix(content, "```")
	}
	if j := strings.LastIndex(content, "```"); j >= 0 {
		content = content[:j]
	}
	return strings.TrimSpace(content)
}
