package theory

import (
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Platform is a social network a theory can be shared to.
type Platform string

const (
	Facebook Platform = "facebook"
	Twitter  Platform = "twitter"
	Reddit   Platform = "reddit"
)

// Platforms lists the supported share targets.
var Platforms = []Platform{Facebook, Twitter, Reddit}

// Valid reports whether p is a supported share target.
func (p Platform) Valid() bool {
	switch p {
	case Facebook, Twitter, Reddit:
		return true
	}
	return false
}

// ShareHashtags are appended to twitter intents.
var ShareHashtags = []string{"Comedy", "Satire", "Fictional", "RidiculousRumors"}

const (
	shareExcerptChars = 100
	maxShareChars     = 280
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// SanitizeForSharing collapses whitespace and truncates to maxLen runes,
// ending with "..." when truncated.
func SanitizeForSharing(text string, maxLen int) string {
	cleaned := strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
	if utf8.RuneCountInString(cleaned) <= maxLen {
		return cleaned
	}
	if maxLen <= 3 {
		return string([]rune(cleaned)[:maxLen])
	}
	return string([]rune(cleaned)[:maxLen-3]) + "..."
}

// ShareText builds the platform-specific teaser for a theory.
func ShareText(p Platform, content string) string {
	excerpt := content
	if utf8.RuneCountInString(excerpt) > shareExcerptChars {
		excerpt = string([]rune(excerpt)[:shareExcerptChars]) + "..."
	}

	var text string
	switch p {
	case Facebook:
		text = `BOMBASTIC NEWS: "` + excerpt + `"`
	case Twitter:
		text = `RIDICULOUS RUMOR: "` + excerpt + `" #Comedy #Satire #Fictional #AI`
	default:
		text = `CONSPIRACY LEAK: "` + excerpt + `"`
	}
	return SanitizeForSharing(text, maxShareChars)
}

// ShareURL returns the share intent URL for a theory page.
func ShareURL(p Platform, content, pageURL string) string {
	text := url.QueryEscape(ShareText(p, content))
	u := url.QueryEscape(pageURL)

	switch p {
	case Facebook:
		return "https://www.facebook.com/sharer/sharer.php?u=" + u + "&quote=" + text
	case Twitter:
		return "https://twitter.com/intent/tweet?text=" + text + "&url=" + u +
			"&hashtags=" + url.QueryEscape(strings.Join(ShareHashtags, ","))
	default:
		return "https://reddit.com/submit?url=" + u + "&title=" + text
	}
}

// FormatTerminalDate renders t as "2006.01.02" in UTC.
func FormatTerminalDate(t time.Time) string {
	return t.UTC().Format("2006.01.02")
}
