package theory

import "time"

// Classification is the cosmetic "document marking" shown on a theory.
// It carries no access-control meaning.
type Classification string

const (
	TopSecret    Classification = "TOP SECRET"
	Secret       Classification = "SECRET"
	Confidential Classification = "CONFIDENTIAL"
)

// DefaultClassification is applied when a request omits the marking.
const DefaultClassification = TopSecret

// Classifications lists the valid markings in display order.
var Classifications = []Classification{TopSecret, Secret, Confidential}

// Valid reports whether c is one of the three known markings.
func (c Classification) Valid() bool {
	switch c {
	case TopSecret, Secret, Confidential:
		return true
	}
	return false
}

// Theory is a generated conspiracy theory as stored.
// Fields correspond to the conspiracy_theories table.
type Theory struct {
	// ID is "theory_" followed by a lowercase ULID, assigned before insert
	ID string `json:"id"`

	// Content is the generated sentence
	Content string `json:"content"`

	// Category is a key from the prompt catalog
	Category string `json:"category"`

	// Classification is the display marking
	Classification Classification `json:"classification"`

	// CreatedAt is set by the store on insert
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is bumped by favorite toggles
	UpdatedAt time.Time `json:"updated_at"`

	// IsFavorite defaults to false
	IsFavorite bool `json:"is_favorite"`

	// ShareCount only ever grows, via the store's atomic increment
	ShareCount int `json:"share_count"`

	// PromptUsed is the exact prompt sent to the model, kept for auditing
	PromptUsed string `json:"prompt_used,omitempty"`
}

// EventType is the closed set of analytics event kinds.
type EventType string

const (
	EventGenerated EventType = "generated"
	EventViewed    EventType = "viewed"
	EventShared    EventType = "shared"
	EventCopied    EventType = "copied"
	EventSaved     EventType = "saved"
)

// Valid reports whether t belongs to the closed event enumeration.
func (t EventType) Valid() bool {
	switch t {
	case EventGenerated, EventViewed, EventShared, EventCopied, EventSaved:
		return true
	}
	return false
}

// Event is an append-only analytics row (theory_analytics table).
type Event struct {
	ID        string         `json:"id"`
	TheoryID  string         `json:"theory_id"`
	Type      EventType      `json:"event_type"`
	Platform  *string        `json:"platform,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// CategoryStat aggregates stored theories per category.
type CategoryStat struct {
	Category string    `json:"category"`
	Count    int       `json:"count"`
	Latest   time.Time `json:"latest"`
}

// SitemapEntry is the minimal projection read for sitemap generation.
type SitemapEntry struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}
