package chat

import (
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// Paragraph splitting limits. Long unbroken answers are re-chunked at
// sentence boundaries so the client can render them as separate bubbles.
const (
	longParagraphThreshold = 300
	sentenceChunkLimit     = 200
)

var (
	paragraphBreak   = regexp.MustCompile(`\n\s*\n`)
	sectionBreak     = regexp.MustCompile(`###\s+`)
	sentencePattern  = regexp.MustCompile(`[^.!?]+[.!?]+`)
	whitespaceOnlyRe = regexp.MustCompile(`^\s*$`)
)

// SplitIntoParagraphs breaks response text into display paragraphs. It tries
// progressively finer splits: blank lines, single newlines, markdown section
// headers, and finally sentence grouping for long single blocks.
func SplitIntoParagraphs(text string) []string {
	paragraphs := splitAndTrim(paragraphBreak.Split(text, -1))

	if len(paragraphs) == 1 {
		byLine := splitAndTrim(strings.Split(text, "\n"))
		if len(byLine) > 1 {
			paragraphs = byLine
		}
	}

	if len(paragraphs) == 1 {
		sections := splitAndTrim(sectionBreak.Split(text, -1))
		if len(sections) > 1 {
			for i := 1; i < len(sections); i++ {
				sections[i] = "### " + sections[i]
			}
			paragraphs = sections
		}
	}

	if len(paragraphs) == 1 && len(paragraphs[0]) > longParagraphThreshold {
		if chunks := chunkSentences(paragraphs[0]); len(chunks) > 0 {
			paragraphs = chunks
		}
	}

	if len(paragraphs) == 0 {
		return []string{text}
	}
	return paragraphs
}

func splitAndTrim(parts []string) []string {
	var out []string
	for _, p := range parts {
		if whitespaceOnlyRe.MatchString(p) {
			continue
		}
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// chunkSentences groups sentences into chunks of roughly sentenceChunkLimit
// characters.
func chunkSentences(text string) []string {
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}

	var chunks []string
	var current string
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if current != "" && len(current)+1+len(sentence) > sentenceChunkLimit {
			chunks = append(chunks, current)
			current = sentence
			continue
		}
		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// DelayFunc returns the pause before streaming paragraph i. Injectable so
// handler tests can run without sleeping.
type DelayFunc func(paragraphIndex int) time.Duration

// DefaultDelay pauses 800ms-2s between paragraphs to pace the stream like a
// person typing. The first paragraph is sent immediately.
func DefaultDelay(paragraphIndex int) time.Duration {
	if paragraphIndex == 0 {
		return 0
	}
	return 800*time.Millisecond + time.Duration(rand.Int63n(int64(1200*time.Millisecond)))
}
