package theory

import (
	"strings"

	"github.com/hpungsan/rumors/internal/errors"
)

// ValidateForInsert rejects a theory missing required fields.
// Both stores call it before writing so a bad row never reaches the database.
func ValidateForInsert(t *Theory) error {
	if t == nil {
		return errors.NewInvalidRequest("theory is required")
	}
	if t.ID == "" {
		return errors.NewInvalidRequest("id is required")
	}
	if strings.TrimSpace(t.Content) == "" {
		return errors.NewInvalidRequest("content is required")
	}
	if t.Category == "" {
		return errors.NewInvalidRequest("category is required")
	}
	if t.Classification != "" && !t.Classification.Valid() {
		return errors.NewInvalidRequest("unknown classification: " + string(t.Classification))
	}
	if t.ShareCount < 0 {
		return errors.NewInvalidRequest("share_count must not be negative")
	}
	return nil
}

// ValidateEvent checks an analytics event before insert.
// An unknown type is INVALID_EVENT so callers can tell it apart from a missing field.
func ValidateEvent(e *Event) error {
	if e == nil {
		return errors.NewInvalidRequest("event is required")
	}
	if !e.Type.Valid() {
		return errors.NewInvalidEvent(string(e.Type))
	}
	if e.TheoryID == "" {
		return errors.NewInvalidRequest("theory_id is required")
	}
	return nil
}
