package workload

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateEmptyBatch(t *testing.T) {
	scores, err := Calculate(nil, DefaultWeights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 0 {
		t.Errorf("expected empty result, got %d scores", len(scores))
	}
}

func TestCalculateConcreteScenario(t *testing.T) {
	batch := []Activity{
		{UserID: "a", ChatMessages: 10, FileUploads: 0, AssignedTodos: 4, CalendarEvents: 2},
		{UserID: "b", ChatMessages: 5, FileUploads: 8, AssignedTodos: 2, CalendarEvents: 2},
	}
	scores, err := Calculate(batch, DefaultWeights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	// a: 1.0*0.25 + 0*0.20 + 1.0*0.40 + 1.0*0.15 = 0.80
	// b: 0.5*0.25 + 1.0*0.20 + 0.5*0.40 + 1.0*0.15 = 0.675
	if math.Abs(scores[0].Load-80) > 1e-9 {
		t.Errorf("user a: expected 80, got %v", scores[0].Load)
	}
	if math.Abs(scores[1].Load-67.5) > 1e-9 {
		t.Errorf("user b: expected 67.5, got %v", scores[1].Load)
	}
}

func TestCalculateBounds(t *testing.T) {
	batch := []Activity{
		{UserID: "a", ChatMessages: 1000, FileUploads: 500, AssignedTodos: 42, CalendarEvents: 9},
		{UserID: "b"},
		{UserID: "c", ChatMessages: 3, AssignedTodos: 1},
	}
	scores, err := Calculate(batch, DefaultWeights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range scores {
		if s.Load < 0 || s.Load > 100 {
			t.Errorf("score for %s out of bounds: %v", s.UserID, s.Load)
		}
	}
}

func TestCalculateBatchMaximumScoresHundred(t *testing.T) {
	batch := []Activity{
		{UserID: "top", ChatMessages: 7, FileUploads: 3, AssignedTodos: 11, CalendarEvents: 2},
		{UserID: "rest", ChatMessages: 2, FileUploads: 1, AssignedTodos: 4, CalendarEvents: 1},
	}
	scores, err := Calculate(batch, DefaultWeights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(scores[0].Load-100) > 1e-9 {
		t.Errorf("batch maximum in every category should score exactly 100, got %v", scores[0].Load)
	}
}

func TestCalculateMonotonic(t *testing.T) {
	base := []Activity{
		{UserID: "a", ChatMessages: 2, AssignedTodos: 1},
		{UserID: "b", ChatMessages: 10, FileUploads: 4, AssignedTodos: 6, CalendarEvents: 3},
	}
	before, err := Calculate(base, DefaultWeights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Bump a's chat count without moving the batch maximum (held by b).
	bumped := []Activity{
		{UserID: "a", ChatMessages: 5, AssignedTodos: 1},
		base[1],
	}
	after, err := Calculate(bumped, DefaultWeights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after[0].Load <= before[0].Load {
		t.Errorf("increasing a category should raise the score: before %v, after %v", before[0].Load, after[0].Load)
	}
}

func TestCalculateZeroCategoryContributesZero(t *testing.T) {
	// Nobody uploaded anything: the files category maximum floors at 1 and
	// every ratio is 0/1, so files contribute nothing rather than NaN.
	batch := []Activity{
		{UserID: "a", ChatMessages: 4, AssignedTodos: 4, CalendarEvents: 4},
		{UserID: "b", ChatMessages: 2, AssignedTodos: 2, CalendarEvents: 2},
	}
	scores, err := Calculate(batch, DefaultWeights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(scores[0].Load-80) > 1e-9 {
		t.Errorf("expected 80 (all weights except files), got %v", scores[0].Load)
	}
	for _, s := range scores {
		if math.IsNaN(s.Load) || math.IsInf(s.Load, 0) {
			t.Errorf("score for %s is not finite: %v", s.UserID, s.Load)
		}
	}
}

func TestCalculateRejectsNegativeCounts(t *testing.T) {
	_, err := Calculate([]Activity{{UserID: "a", ChatMessages: -1}}, DefaultWeights)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseFileScope(t *testing.T) {
	if ParseFileScope("project") != FileScopeProject {
		t.Error("expected project scope")
	}
	if ParseFileScope("global") != FileScopeGlobal {
		t.Error("expected global scope")
	}
	if ParseFileScope("") != FileScopeGlobal {
		t.Error("unknown scope should default to global")
	}
}
