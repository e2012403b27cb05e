package summarizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxHeuristicSentences = 8

// heuristicSummary bullets the first sentences of the transcript under the
// instruction header.
func heuristicSummary(transcript, prompt string) string {
	sentences := splitSentences(transcript, maxHeuristicSentences)
	bullets := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		bullets = append(bullets, "- "+sentence)
	}
	return "Instruction: " + prompt + "\n\nSummary (heuristic):\n" + strings.Join(bullets, "\n")
}

// splitSentences cuts text after '.', '!' or '?' when whitespace follows.
// The whitespace run is dropped, empty pieces are skipped and at most limit
// trimmed sentences are returned. A whitespace-only piece is kept as "".
func splitSentences(text string, limit int) []string {
	var out []string
	start := 0
	for i := 0; i < len(text) && len(out) < limit; {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i
		for i < len(text) {
			ws, wsSize := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(ws) {
				break
			}
			i += wsSize
		}
		if i == end {
			continue
		}
		out = appendSentence(out, text[start:end])
		start = i
	}
	if len(out) < limit && start < len(text) {
		out = appendSentence(out, text[start:])
	}
	return out
}

func appendSentence(out []string, piece string) []string {
	if piece == "" {
		return out
	}
	return append(out, strings.TrimSpace(piece))
}
