package theory

import "strings"

// FallbackCategory is used for any key outside the catalog.
const FallbackCategory = "random"

// Category describes one entry of the prompt catalog.
type Category struct {
	Slug        string
	Title       string
	Description string
	Prompt      string
}

var catalog = []Category{
	{
		Slug:        "absurd-science",
		Title:       "Absurd Science",
		Description: "Fictional scientific conspiracy theories that blend ridiculous pseudo-science with comedy.",
		Prompt: `Generate a single-sentence humorous conspiracy theory about absurd science.
Examples: "WiFi routers are actually quantum flux generators that turn thoughts into bandwidth." or "Scientists discovered gravity is just really persistent peer pressure from the Earth."
Requirements:
- EXACTLY one sentence
- Maximum 50 words
- Include scientific-sounding terms used incorrectly or absurdly
- Be clearly humorous and fictional
- Start with a brief setup like "Scientists secretly know that..." or "The real reason for..."
Generate only the conspiracy theory sentence, nothing else.`,
	},
	{
		Slug:        "historical-lies",
		Title:       "Historical Lies",
		Description: "Comedic reinterpretations of historical events with absurd explanations.",
		Prompt: `Generate a single-sentence humorous conspiracy theory about historical events.
Examples: "The Titanic actually sank because it was carrying too many time travelers from 2024." or "Napoleon was short because he kept shrinking every time he invaded a country."
Requirements:
- EXACTLY one sentence
- Maximum 50 words
- Reference a real historical event or figure with an absurd explanation
- Be clearly humorous and fictional
- Start with something like "The truth is..." or "What really happened was..."
Generate only the conspiracy theory sentence, nothing else.`,
	},
	{
		Slug:        "celebrity-secrets",
		Title:       "Celebrity Secrets",
		Description: "Hilarious fictional conspiracy theories about celebrities and their secret activities.",
		Prompt: `Generate a single-sentence humorous conspiracy theory about celebrities.
Examples: "Taylor Swift's concert tours are actually sophisticated weather control experiments." or "Gordon Ramsay only gets angry because he can hear what the food is thinking."
Requirements:
- EXACTLY one sentence
- Maximum 50 words
- Reference real or archetypal celebrities with absurd secret activities
- Be clearly humorous and fictional
- Start with something like "The real secret is..." or "What celebrities don't want you to know..."
Generate only the conspiracy theory sentence, nothing else.`,
	},
	{
		Slug:        "paranormal-nonsense",
		Title:       "Paranormal Nonsense",
		Description: "Supernatural conspiracy theories with mundane and ridiculous explanations.",
		Prompt: `Generate a single-sentence humorous conspiracy theory about paranormal phenomena.
Examples: "Bigfoot sightings are just really hairy park rangers who forgot to shave during camping season." or "UFOs are actually interdimensional food trucks that only serve snacks to confused humans."
Requirements:
- EXACTLY one sentence
- Maximum 50 words
- Include paranormal elements (ghosts, aliens, cryptids, etc.) with mundane explanations
- Be clearly humorous and fictional
- Start with something like "The truth about [paranormal thing]..." or "What they don't tell you..."
Generate only the conspiracy theory sentence, nothing else.`,
	},
	{
		Slug:        "government-filth",
		Title:       "Government Filth",
		Description: "Satirical takes on government activities and political conspiracy theories.",
		Prompt: `Generate a single-sentence humorous conspiracy theory about government activities.
Examples: "The DMV is actually a time-dilation experiment to test human patience limits." or "Traffic lights are synchronized by a secret AI that feeds on road rage."
Requirements:
- EXACTLY one sentence
- Maximum 50 words
- Reference everyday government/public systems with absurd secret purposes
- Be clearly humorous and fictional
- Start with something like "The government secretly uses..." or "The real purpose of..."
Generate only the conspiracy theory sentence, nothing else.`,
	},
	{
		Slug:        FallbackCategory,
		Title:       "Complete Random",
		Description: "Completely random conspiracy theories combining unrelated concepts for maximum absurdity.",
		Prompt: `Generate a single-sentence humorous conspiracy theory combining random elements.
Examples: "Coffee shops are actually data extraction points where baristas harvest dreams through steam wand frequencies." or "Rubber ducks control the global economy through strategic squeaking patterns."
Requirements:
- EXACTLY one sentence
- Maximum 50 words
- Combine completely unrelated concepts in an absurd but creative way
- Be clearly humorous and fictional
- Start with something like "The secret connection between..." or "Nobody realizes that..."
Generate only the conspiracy theory sentence, nothing else.`,
	},
}

var bySlug = func() map[string]Category {
	m := make(map[string]Category, len(catalog))
	for _, c := range catalog {
		m[c.Slug] = c
	}
	return m
}()

// Categories returns the catalog in display order.
func Categories() []Category {
	out := make([]Category, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for slug and whether it exists.
func Lookup(slug string) (Category, bool) {
	c, ok := bySlug[normalizeSlug(slug)]
	return c, ok
}

// IsKnown reports whether slug is in the closed category set.
func IsKnown(slug string) bool {
	_, ok := Lookup(slug)
	return ok
}

// Resolve returns the canonical category key for slug.
// Unknown keys resolve to FallbackCategory.
func Resolve(slug string) string {
	if c, ok := Lookup(slug); ok {
		return c.Slug
	}
	return FallbackCategory
}

// PromptFor returns the prompt template for slug, falling back to the
// "random" template for unknown keys. It never fails.
func PromptFor(slug string) string {
	if c, ok := Lookup(slug); ok {
		return c.Prompt
	}
	return bySlug[FallbackCategory].Prompt
}

func normalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
