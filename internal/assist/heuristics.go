package assist

import (
	"fmt"
	"strings"
)

// maxSummarySentences caps heuristic call summaries.
const maxSummarySentences = 3

var actionMarkers = []string{
	"i'll", "i will", "we'll", "we will", "let's", "need to",
	"follow up", "send", "schedule", "review", "call back",
}

// heuristicSummarize returns the leading sentences of a transcript as a
// summary. Good enough to be useful when no model is configured.
func heuristicSummarize(transcript string) string {
	sentences := splitSentences(transcript)
	if len(sentences) == 0 {
		return ""
	}
	if len(sentences) > maxSummarySentences {
		sentences = sentences[:maxSummarySentences]
	}
	return strings.Join(sentences, " ")
}

// heuristicSuggestions scans a transcript for commitment phrases and turns
// each matching sentence into a follow-up suggestion.
func heuristicSuggestions(transcript string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, sentence := range splitSentences(transcript) {
		lower := strings.ToLower(sentence)
		for _, marker := range actionMarkers {
			if strings.Contains(lower, marker) {
				if !seen[sentence] {
					seen[sentence] = true
					out = append(out, "Follow up: "+sentence)
				}
				break
			}
		}
	}
	return out
}

// heuristicReply drafts a short acknowledgement reply.
func heuristicReply(fromName, subject string) string {
	greeting := "Hi"
	if fromName != "" {
		greeting = "Hi " + firstWord(fromName)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s,\n\n", greeting)
	if subject != "" {
		fmt.Fprintf(&b, "Thanks for your message about %q. ", strings.TrimSpace(subject))
	} else {
		b.WriteString("Thanks for your message. ")
	}
	b.WriteString("I've received it and will get back to you with a full answer shortly.\n\nBest regards")
	return b.String()
}

func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(cur.String())
			if len(s) > 1 {
				out = append(out, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}
