package constellation

import (
	"math"
	"testing"
	"time"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// fixedRand always returns 0.5, which zeroes the jitter term.
func fixedRand() float64 { return 0.5 }

func dm(author string, age time.Duration) Message {
	return Message{AuthorID: author, RoomType: "dm", CreatedAt: now.Add(-age)}
}

func TestMapNoOthers(t *testing.T) {
	placements := Map("self", []User{{ID: "self", Name: "Me"}}, nil, now, fixedRand, DefaultConfig())
	if len(placements) != 0 {
		t.Errorf("expected empty output, got %d placements", len(placements))
	}
}

func TestMapColdPlacement(t *testing.T) {
	users := []User{{ID: "self"}, {ID: "a", Name: "Ada"}, {ID: "b", Name: "Ben"}}
	placements := Map("self", users, nil, now, fixedRand, DefaultConfig())
	if len(placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(placements))
	}
	for _, p := range placements {
		if math.Abs(p.Distance-0.90) > 1e-9 {
			t.Errorf("%s: expected cold distance 0.90, got %v", p.UserID, p.Distance)
		}
		if math.Abs(p.Size-2.5) > 1e-9 {
			t.Errorf("%s: expected minimum size 2.5, got %v", p.UserID, p.Size)
		}
	}
}

func TestMapDistanceExtremes(t *testing.T) {
	users := []User{{ID: "self"}, {ID: "a"}, {ID: "b"}}
	var messages []Message
	for i := 0; i < 10; i++ {
		messages = append(messages, dm("a", time.Hour))
	}
	placements := Map("self", users, messages, now, fixedRand, DefaultConfig())

	byID := map[string]Placement{}
	for _, p := range placements {
		byID[p.UserID] = p
	}
	if math.Abs(byID["a"].Distance-0.25) > 1e-9 {
		t.Errorf("max-recent contact should sit at 0.25, got %v", byID["a"].Distance)
	}
	if math.Abs(byID["b"].Distance-0.90) > 1e-9 {
		t.Errorf("zero-recent contact should sit at 0.90, got %v", byID["b"].Distance)
	}
}

func TestMapOrderingByRecent(t *testing.T) {
	users := []User{{ID: "self"}, {ID: "quiet"}, {ID: "busy"}}
	messages := []Message{
		dm("busy", time.Hour),
		dm("busy", 2*time.Hour),
		dm("quiet", time.Hour),
	}
	placements := Map("self", users, messages, now, fixedRand, DefaultConfig())
	if placements[0].UserID != "busy" {
		t.Errorf("expected busy contact first in angular order, got %s", placements[0].UserID)
	}
	if placements[0].Distance >= placements[1].Distance {
		t.Errorf("more recent activity should mean smaller distance: %v >= %v",
			placements[0].Distance, placements[1].Distance)
	}
}

func TestMapBoundsAndAngles(t *testing.T) {
	cfg := DefaultConfig()
	users := []User{{ID: "self"}, {ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	messages := []Message{
		dm("a", time.Hour), dm("a", 30*24*time.Hour),
		dm("b", 2*time.Hour), dm("b", time.Hour), dm("b", 3*time.Hour),
		dm("c", 20*24*time.Hour),
	}
	placements := Map("self", users, messages, now, fixedRand, cfg)
	if len(placements) != 4 {
		t.Fatalf("expected 4 placements, got %d", len(placements))
	}
	for i, p := range placements {
		if p.Distance < cfg.DistanceMin-1e-9 || p.Distance > cfg.DistanceMin+cfg.DistanceSpan+1e-9 {
			t.Errorf("%s: distance out of range: %v", p.UserID, p.Distance)
		}
		if p.Size < cfg.SizeMin-1e-9 || p.Size > cfg.SizeMax+1e-9 {
			t.Errorf("%s: size out of range: %v", p.UserID, p.Size)
		}
		want := float64(i) / 4 * 2 * math.Pi
		if math.Abs(p.Angle-want) > 1e-9 {
			t.Errorf("%s: expected base angle %v with zero jitter, got %v", p.UserID, want, p.Angle)
		}
	}
}

func TestMapJitterBounded(t *testing.T) {
	cfg := DefaultConfig()
	users := []User{{ID: "self"}, {ID: "a"}, {ID: "b"}}
	// Extremes of the injected random source.
	for _, r := range []float64{0, 0.999999} {
		r := r
		placements := Map("self", users, nil, now, func() float64 { return r }, cfg)
		for i, p := range placements {
			base := float64(i) / 2 * 2 * math.Pi
			if math.Abs(p.Angle-base) > cfg.Jitter+1e-9 {
				t.Errorf("jitter exceeded ±%v: base %v, angle %v", cfg.Jitter, base, p.Angle)
			}
		}
	}
}

func TestMapIgnoresNonDMAndStrangers(t *testing.T) {
	users := []User{{ID: "self"}, {ID: "a"}}
	messages := []Message{
		{AuthorID: "a", RoomType: "project", CreatedAt: now.Add(-time.Hour)},
		{AuthorID: "stranger", RoomType: "dm", CreatedAt: now.Add(-time.Hour)},
		dm("a", time.Hour),
	}
	placements := Map("self", users, messages, now, fixedRand, DefaultConfig())
	if placements[0].TotalCount != 1 {
		t.Errorf("expected only the dm from a to count, got total %d", placements[0].TotalCount)
	}
}

func TestMapZeroTimestampNeverRecent(t *testing.T) {
	users := []User{{ID: "self"}, {ID: "a"}}
	messages := []Message{{AuthorID: "a", RoomType: "dm"}} // zero CreatedAt
	placements := Map("self", users, messages, now, fixedRand, DefaultConfig())
	if placements[0].TotalCount != 1 {
		t.Errorf("expected total 1, got %d", placements[0].TotalCount)
	}
	if placements[0].RecentCount != 0 {
		t.Errorf("zero timestamp must not count as recent, got %d", placements[0].RecentCount)
	}
}

func TestMapStrictPairing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictPairing = true
	users := []User{{ID: "self"}, {ID: "a"}}
	messages := []Message{
		{AuthorID: "a", RoomType: "dm", RoomID: PairRoomID("self", "a"), CreatedAt: now.Add(-time.Hour)},
		// Authored by a, but in a's DM room with someone else.
		{AuthorID: "a", RoomType: "dm", RoomID: PairRoomID("a", "z"), CreatedAt: now.Add(-time.Hour)},
	}
	placements := Map("self", users, messages, now, fixedRand, cfg)
	if placements[0].TotalCount != 1 {
		t.Errorf("strict pairing should drop off-pair messages, got total %d", placements[0].TotalCount)
	}
}

func TestPairRoomIDSymmetric(t *testing.T) {
	if PairRoomID("a", "b") != PairRoomID("b", "a") {
		t.Error("pair room id must not depend on argument order")
	}
}
