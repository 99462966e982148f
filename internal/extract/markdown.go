package extract

import (
	"regexp"
	"strings"
)

var (
	reCodeFence  = regexp.MustCompile("(?s)```.*?```")
	reInlineCode = regexp.MustCompile("`([^`]*)`")
	reHTMLTag    = regexp.MustCompile(`<[^>]+>`)
	reJSXBraces  = regexp.MustCompile(`\{[^{}]*\}`)
	reImage      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	reTitle      = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	reSection    = regexp.MustCompile(`(?m)^#{2,6}\s+(.+)$`)
	reBold       = regexp.MustCompile(`(\*\*|__)(.*?)(\*\*|__)`)
	reEmphasis   = regexp.MustCompile(`(\*|_)(.*?)(\*|_)`)
	reListMarker = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+`)
	reTableSep   = regexp.MustCompile(`(?m)^\s*\|?[\s:|-]+\|[\s:|-]*$`)
	reTableRow   = regexp.MustCompile(`(?m)^\s*\|(.+)\|\s*$`)
	reHorizRule  = regexp.MustCompile(`(?m)^\s*(?:-{3,}|\*{3,}|_{3,})\s*$`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
	reTrailingWS = regexp.MustCompile(`(?m)[ \t]+$`)
)

// ExtractMarkdownText strips markdown, HTML, and JSX syntax from a document
// while keeping the semantic markers retrieval benefits from: the top-level
// header becomes a "TITLE:" line, deeper headers become "SECTION:" lines,
// and images are reduced to their alt text as "[IMAGE: alt]".
func ExtractMarkdownText(content string) string {
	text := content

	text = reCodeFence.ReplaceAllString(text, "")

	// Markers first, while the header/image syntax is still intact.
	text = reImage.ReplaceAllString(text, "[IMAGE: $1]")
	text = reLink.ReplaceAllString(text, "$1")
	text = reTitle.ReplaceAllString(text, "TITLE: $1")
	text = reSection.ReplaceAllString(text, "SECTION: $1")

	text = reHTMLTag.ReplaceAllString(text, "")
	// Innermost braces first, so nested JSX expressions collapse fully.
	for reJSXBraces.MatchString(text) {
		text = reJSXBraces.ReplaceAllString(text, "")
	}

	text = reBold.ReplaceAllString(text, "$2")
	text = reEmphasis.ReplaceAllString(text, "$2")
	text = reInlineCode.ReplaceAllString(text, "$1")

	text = reHorizRule.ReplaceAllString(text, "")
	text = reTableSep.ReplaceAllString(text, "")
	text = reTableRow.ReplaceAllStringFunc(text, func(row string) string {
		cells := strings.Split(strings.Trim(strings.TrimSpace(row), "|"), "|")
		for i, c := range cells {
			cells[i] = strings.TrimSpace(c)
		}
		return strings.Join(cells, " ")
	})
	text = reListMarker.ReplaceAllString(text, "")

	text = reTrailingWS.ReplaceAllString(text, "")
	text = reBlankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
