// Package format turns raw transcript text into readable prose, either
// deterministically or through an LLM with automatic fallback.
package format

import (
	"strings"
	"unicode"
)

// DefaultParagraphLength is the number of sentences per paragraph when none
// is configured.
const DefaultParagraphLength = 4

// Standard splits text into sentences on terminal punctuation, capitalizes
// each, and groups paragraphLength sentences per paragraph separated by a
// blank line. It is deterministic and never fails; empty input yields empty
// output.
func Standard(text string, paragraphLength int) string {
	return reflow(text, paragraphLength, true)
}

// Compact groups sentences into paragraphs like Standard but skips the
// cleanup pass, keeping each sentence's casing as transcribed.
func Compact(text string, paragraphLength int) string {
	return reflow(text, paragraphLength, false)
}

func reflow(text string, paragraphLength int, cleanup bool) string {
	if paragraphLength <= 0 {
		paragraphLength = DefaultParagraphLength
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}

	var out strings.Builder
	var paragraph strings.Builder
	count := 0

	flush := func() {
		if paragraph.Len() == 0 {
			return
		}
		if out.Len() > 0 {
			out.WriteString("\n\n")
		}
		out.WriteString(paragraph.String())
		paragraph.Reset()
		count = 0
	}

	for _, sentence := range sentences {
		if paragraph.Len() > 0 {
			paragraph.WriteByte(' ')
		}
		if cleanup {
			sentence = capitalizeFirst(sentence)
		}
		paragraph.WriteString(sentence)
		paragraph.WriteByte('.')
		count++
		if count >= paragraphLength {
			flush()
		}
	}
	flush()

	return out.String()
}

// splitSentences breaks text on terminal punctuation, normalizing internal
// whitespace and dropping empty fragments.
func splitSentences(text string) []string {
	fragments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(fragments))
	for _, f := range fragments {
		f = strings.Join(strings.Fields(f), " ")
		if f != "" {
			sentences = append(sentences, f)
		}
	}
	return sentences
}

func capitalizeFirst(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

// Unsuitable reports whether text looks like lyrics or cue markup that
// paragraph reflow would mangle: music notation, bracketed stage cues, or
// mostly short unpunctuated repeating lines.
func Unsuitable(text string) bool {
	if strings.ContainsRune(text, '♪') || strings.ContainsRune(text, '[') {
		return true
	}

	lines := nonEmptyLines(text)
	if len(lines) < 4 {
		return false
	}

	unpunctuated := 0
	seen := make(map[string]int, len(lines))
	repeated := false
	for _, line := range lines {
		if !strings.ContainsAny(line, ".!?") && len(line) <= 60 {
			unpunctuated++
		}
		seen[line]++
		if seen[line] > 1 {
			repeated = true
		}
	}
	return repeated && unpunctuated*5 >= len(lines)*4
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
