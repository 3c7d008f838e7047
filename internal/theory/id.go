package theory

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDPrefix marks theory identifiers.
const IDPrefix = "theory_"

// NewID generates a new theory identifier.
func NewID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return IDPrefix + strings.ToLower(id.String()), nil
}

// NewEventID generates an analytics event identifier.
func NewEventID() string {
	return uuid.NewString()
}
