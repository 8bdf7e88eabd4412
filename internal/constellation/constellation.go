// Package constellation places every other user on a polar "closeness" map
// around the current user. Recent direct-message volume pulls a contact
// toward the center, cumulative volume grows its point, and contacts are
// fanned evenly around the circle in order of recent activity.
package constellation

import (
	"math"
	"sort"
	"time"
)

// Config holds the placement constants. Two shipped variants of this
// visualization disagreed on the size range and jitter, so they are
// configuration rather than hard-coded; DefaultConfig matches the variant
// currently in production.
type Config struct {
	RecentWindow time.Duration
	DistanceMin  float64
	DistanceSpan float64
	SizeMin      float64
	SizeMax      float64
	// Jitter is the half-width, in radians, of the random offset added to
	// each base angle so points do not sit on a perfect grid.
	Jitter float64
	// StrictPairing additionally requires the message's room to be the
	// pairwise DM room of self and the contact. The historical filter only
	// checks author and room type, which can over-count in shared DM rooms.
	StrictPairing bool
}

// DefaultConfig returns the production constants: 7-day recency window,
// distance in [0.25, 0.90], size in [2.5, 7.5], jitter ±0.15 rad.
func DefaultConfig() Config {
	return Config{
		RecentWindow: 7 * 24 * time.Hour,
		DistanceMin:  0.25,
		DistanceSpan: 0.65,
		SizeMin:      2.5,
		SizeMax:      7.5,
		Jitter:       0.15,
	}
}

// User is a contact candidate.
type User struct {
	ID   string
	Name string
}

// Message is the slice of a chat message the model reads. A zero CreatedAt
// (for example from an unparseable upstream timestamp) is never recent.
type Message struct {
	AuthorID  string
	RoomType  string
	RoomID    string
	CreatedAt time.Time
}

// Placement is one contact's point on the map.
type Placement struct {
	UserID      string  `json:"userId"`
	Name        string  `json:"name"`
	RecentCount int     `json:"recentCount"`
	TotalCount  int     `json:"totalCount"`
	Angle       float64 `json:"angle"`
	Distance    float64 `json:"distance"`
	Size        float64 `json:"size"`
}

const roomTypeDM = "dm"

// Map computes a Placement for every user other than selfID. now fixes the
// recency window and rnd supplies uniform values in [0,1) for the angular
// jitter; both are injected so callers (and tests) control determinism.
func Map(selfID string, users []User, messages []Message, now time.Time, rnd func() float64, cfg Config) []Placement {
	cutoff := now.Add(-cfg.RecentWindow)

	placements := make([]Placement, 0, len(users))
	for _, u := range users {
		if u.ID == selfID {
			continue
		}
		p := Placement{UserID: u.ID, Name: u.Name}
		for _, m := range messages {
			if m.RoomType != roomTypeDM {
				continue
			}
			if m.AuthorID != selfID && m.AuthorID != u.ID {
				continue
			}
			if cfg.StrictPairing && m.RoomID != PairRoomID(selfID, u.ID) {
				continue
			}
			p.TotalCount++
			if !m.CreatedAt.IsZero() && !m.CreatedAt.Before(cutoff) {
				p.RecentCount++
			}
		}
		placements = append(placements, p)
	}

	if len(placements) == 0 {
		return placements
	}

	// Stable: ties keep user-list order so reruns with the same inputs
	// assign the same base angles.
	sort.SliceStable(placements, func(i, j int) bool {
		return placements[i].RecentCount > placements[j].RecentCount
	})

	maxRecent, maxTotal := 1, 1
	for _, p := range placements {
		if p.RecentCount > maxRecent {
			maxRecent = p.RecentCount
		}
		if p.TotalCount > maxTotal {
			maxTotal = p.TotalCount
		}
	}

	n := len(placements)
	for i := range placements {
		base := float64(i) / float64(n) * 2 * math.Pi
		jitter := (rnd()*2 - 1) * cfg.Jitter
		placements[i].Angle = base + jitter

		proximity := float64(placements[i].RecentCount) / float64(maxRecent)
		placements[i].Distance = cfg.DistanceMin + (1-proximity)*cfg.DistanceSpan

		sizeNorm := float64(placements[i].TotalCount) / float64(maxTotal)
		placements[i].Size = cfg.SizeMin + sizeNorm*(cfg.SizeMax-cfg.SizeMin)
	}
	return placements
}

// PairRoomID is the canonical room id for the DM channel between two users,
// independent of ordering.
func PairRoomID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return "dm:" + a + ":" + b
}
