package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// ErrUnknownFunction is returned by Invoke for unregistered function names.
var ErrUnknownFunction = fmt.Errorf("unknown function")

// Service exposes the assist functions, each callable directly or through
// the Invoke registry.
type Service struct {
	gen Generator // nil = heuristics only
}

// NewService creates an assist service. gen may be nil.
func NewService(gen Generator) *Service {
	return &Service{gen: gen}
}

// CallSummary is the result of summarizing a call transcript.
type CallSummary struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

// SummarizeCall produces a summary and follow-up suggestions for a call
// transcript. Falls back to heuristics when the model is unavailable.
func (s *Service) SummarizeCall(ctx context.Context, transcript string) (CallSummary, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return CallSummary{}, fmt.Errorf("transcript is empty")
	}

	if s.gen != nil {
		prompt := "Summarize this call transcript in at most three sentences, then list concrete follow-up actions, one per line prefixed with '- ':\n\n" + transcript
		text, err := s.gen.Generate(ctx, prompt)
		if err == nil {
			return parseModelSummary(text), nil
		}
		log.Printf("assist: summarize model call failed, using heuristics: %v", err)
	}

	return CallSummary{
		Summary:     heuristicSummarize(transcript),
		Suggestions: heuristicSuggestions(transcript),
	}, nil
}

// DraftReply produces a suggested reply to an inbound email.
func (s *Service) DraftReply(ctx context.Context, fromName, subject, body string) (string, error) {
	if strings.TrimSpace(subject) == "" && strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("nothing to reply to")
	}

	if s.gen != nil {
		prompt := fmt.Sprintf(
			"Draft a short, professional reply to this email. Sender: %s\nSubject: %s\n\n%s",
			fromName, subject, body)
		text, err := s.gen.Generate(ctx, prompt)
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		log.Printf("assist: draft reply model call failed, using heuristics: %v", err)
	}

	return heuristicReply(fromName, subject), nil
}

// DigestInput is the material for one user's daily digest.
type DigestInput struct {
	UserName       string   `json:"userName"`
	TodosDue       []string `json:"todosDue"`
	EventsToday    []string `json:"eventsToday"`
	UnreadMessages int      `json:"unreadMessages"`
	TriagePending  int      `json:"triagePending"`
}

// DailyDigest composes a morning digest. The composition itself is
// deterministic; the model only rephrases it when available.
func (s *Service) DailyDigest(ctx context.Context, in DigestInput) (string, error) {
	base := composeDigest(in)

	if s.gen != nil {
		text, err := s.gen.Generate(ctx, "Rewrite this daily digest in a friendly, concise tone. Keep every fact:\n\n"+base)
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		log.Printf("assist: digest model call failed, using plain digest: %v", err)
	}

	return base, nil
}

func composeDigest(in DigestInput) string {
	var b strings.Builder
	name := in.UserName
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Good morning, %s.\n", name)

	if len(in.TodosDue) > 0 {
		fmt.Fprintf(&b, "\nDue today (%d):\n", len(in.TodosDue))
		for _, todo := range in.TodosDue {
			fmt.Fprintf(&b, "- %s\n", todo)
		}
	}
	if len(in.EventsToday) > 0 {
		fmt.Fprintf(&b, "\nOn your calendar (%d):\n", len(in.EventsToday))
		for _, ev := range in.EventsToday {
			fmt.Fprintf(&b, "- %s\n", ev)
		}
	}
	if in.UnreadMessages > 0 {
		fmt.Fprintf(&b, "\nYou have %d unread chat messages.\n", in.UnreadMessages)
	}
	if in.TriagePending > 0 {
		fmt.Fprintf(&b, "You have %d emails waiting for triage.\n", in.TriagePending)
	}
	if len(in.TodosDue) == 0 && len(in.EventsToday) == 0 && in.UnreadMessages == 0 && in.TriagePending == 0 {
		b.WriteString("\nNothing urgent on your plate today.\n")
	}
	return b.String()
}

// parseModelSummary splits a model response into the summary paragraph and
// "- " prefixed suggestion lines.
func parseModelSummary(text string) CallSummary {
	var summaryLines, suggestions []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "- ") {
			suggestions = append(suggestions, strings.TrimPrefix(trimmed, "- "))
		} else if len(suggestions) == 0 {
			summaryLines = append(summaryLines, trimmed)
		}
	}
	return CallSummary{
		Summary:     strings.Join(summaryLines, " "),
		Suggestions: suggestions,
	}
}

// Invoke dispatches a named function with JSON arguments. This is the
// backing for the generic /api/invoke endpoint.
func (s *Service) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	switch name {
	case "summarize_call":
		var in struct {
			Transcript string `json:"transcript"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("bad arguments: %w", err)
		}
		return s.SummarizeCall(ctx, in.Transcript)

	case "draft_email_reply":
		var in struct {
			FromName string `json:"fromName"`
			Subject  string `json:"subject"`
			Body     string `json:"body"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("bad arguments: %w", err)
		}
		reply, err := s.DraftReply(ctx, in.FromName, in.Subject, in.Body)
		if err != nil {
			return nil, err
		}
		return map[string]string{"reply": reply}, nil

	case "daily_digest":
		var in DigestInput
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("bad arguments: %w", err)
		}
		digest, err := s.DailyDigest(ctx, in)
		if err != nil {
			return nil, err
		}
		return map[string]string{"digest": digest}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
}
