// Package workload derives relative load scores for a team cohort from
// weighted activity counts. The score is a ranking signal within the batch,
// not an absolute measurement: every category is normalized against the
// batch maximum before weighting.
package workload

import (
	"errors"
	"fmt"
)

// Weights distribute the four activity categories into one score. They must
// sum to 1. Assigned todos dominate: outstanding work is a stronger load
// signal than communication volume.
type Weights struct {
	Chat   float64
	Files  float64
	Todos  float64
	Events float64
}

// DefaultWeights is the product's shipped weighting.
var DefaultWeights = Weights{Chat: 0.25, Files: 0.20, Todos: 0.40, Events: 0.15}

// FileScope selects how file-upload counts are gathered upstream. Uploads
// have historically been counted workspace-wide while the other categories
// are scoped to the member's active projects; that asymmetry is kept as an
// explicit policy rather than silently fixed.
type FileScope string

const (
	FileScopeGlobal  FileScope = "global"
	FileScopeProject FileScope = "project"
)

// ParseFileScope maps a config string to a FileScope, defaulting to global.
func ParseFileScope(raw string) FileScope {
	if raw == string(FileScopeProject) {
		return FileScopeProject
	}
	return FileScopeGlobal
}

// Activity is one member's tallies for the computation window.
// AssignedTodos counts every todo assigned to the member regardless of
// completion status.
type Activity struct {
	UserID         string
	ChatMessages   int
	FileUploads    int
	AssignedTodos  int
	CalendarEvents int
}

// Score carries the 0-100 load result for one member.
type Score struct {
	UserID string  `json:"userId"`
	Load   float64 `json:"loadScore"`
}

// ErrInvalidInput is returned when a count is negative. The upstream queries
// can only produce non-negative counts, so a negative value means a caller
// bug and is surfaced instead of coerced.
var ErrInvalidInput = errors.New("workload: invalid input")

// Calculate produces one Score per Activity. Output order matches input
// order; callers re-sort for display. An empty batch yields an empty result.
func Calculate(batch []Activity, w Weights) ([]Score, error) {
	for _, a := range batch {
		if a.ChatMessages < 0 || a.FileUploads < 0 || a.AssignedTodos < 0 || a.CalendarEvents < 0 {
			return nil, fmt.Errorf("%w: negative count for user %s", ErrInvalidInput, a.UserID)
		}
	}

	maxChat, maxFiles, maxTodos, maxEvents := 1, 1, 1, 1
	for _, a := range batch {
		if a.ChatMessages > maxChat {
			maxChat = a.ChatMessages
		}
		if a.FileUploads > maxFiles {
			maxFiles = a.FileUploads
		}
		if a.AssignedTodos > maxTodos {
			maxTodos = a.AssignedTodos
		}
		if a.CalendarEvents > maxEvents {
			maxEvents = a.CalendarEvents
		}
	}

	scores := make([]Score, 0, len(batch))
	for _, a := range batch {
		weighted := float64(a.ChatMessages)/float64(maxChat)*w.Chat +
			float64(a.FileUploads)/float64(maxFiles)*w.Files +
			float64(a.AssignedTodos)/float64(maxTodos)*w.Todos +
			float64(a.CalendarEvents)/float64(maxEvents)*w.Events
		scores = append(scores, Score{UserID: a.UserID, Load: weighted * 100})
	}
	return scores, nil
}
