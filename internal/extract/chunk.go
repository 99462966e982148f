package extract

import "strings"

// breakChars are the characters we prefer to split on, best-last within the
// window: sentence punctuation, newlines, then plain spaces.
const breakChars = " \n.!?"

// SplitIntoChunks splits text into chunks of at most chunkSize bytes,
// breaking at the last sentence-ending punctuation, newline, or space inside
// the window. The boundary is only taken when it falls past 70% of the
// window; an earlier boundary would produce a degenerate short chunk, so the
// text gets a hard cut at the window edge instead. Chunks are trimmed and
// never empty.
func SplitIntoChunks(text string, chunkSize int) []string {
	if chunkSize <= 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + chunkSize

		if end < len(text) {
			window := text[start:end]
			if lastBreak := strings.LastIndexAny(window, breakChars); lastBreak > chunkSize*7/10 {
				end = start + lastBreak + 1
			}
		} else {
			end = len(text)
		}

		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		start = end
	}

	return chunks
}
