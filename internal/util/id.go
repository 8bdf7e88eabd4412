// Package util holds small helpers shared across the service.
package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random 128-bit identifier as lowercase hex. A non-empty
// prefix is joined with an underscore ("prj_ab12...") so the entity kind
// stays readable in logs and URLs.
func NewID(prefix string) string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	id := hex.EncodeToString(buf)
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
