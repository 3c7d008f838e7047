package theory

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestSanitizeForSharing(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"collapses whitespace", "a\n\nb   c", 280, "a b c"},
		{"trims", "  hello  ", 280, "hello"},
		{"exact length kept", "abcde", 5, "abcde"},
		{"truncates with ellipsis", "abcdefghij", 8, "abcde..."},
		{"multibyte runes", "ééééé", 4, "é..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeForSharing(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("SanitizeForSharing() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShareText_ExcerptsLongContent(t *testing.T) {
	long := strings.Repeat("x", 150)
	got := ShareText(Reddit, long)

	if !strings.HasPrefix(got, "CONSPIRACY LEAK: ") {
		t.Errorf("ShareText(reddit) = %q, want CONSPIRACY LEAK prefix", got)
	}
	if !strings.Contains(got, strings.Repeat("x", 100)+"...") {
		t.Error("expected 100-char excerpt followed by ellipsis")
	}
	if strings.Contains(got, strings.Repeat("x", 101)) {
		t.Error("excerpt should stop at 100 chars")
	}
}

func TestShareText_KeepsQuotesLiteral(t *testing.T) {
	content := `Bigfoot said "no comment" to the DMV.`

	tests := []struct {
		platform Platform
		want     string
	}{
		{Reddit, `CONSPIRACY LEAK: "Bigfoot said "no comment" to the DMV."`},
		{Facebook, `BOMBASTIC NEWS: "Bigfoot said "no comment" to the DMV."`},
		{Twitter, `RIDICULOUS RUMOR: "Bigfoot said "no comment" to the DMV." #Comedy #Satire #Fictional #AI`},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			if got := ShareText(tt.platform, content); got != tt.want {
				t.Errorf("ShareText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShareText_NewlinesBecomeSpaces(t *testing.T) {
	got := ShareText(Reddit, "Line one.\nLine two.")
	if got != `CONSPIRACY LEAK: "Line one. Line two."` {
		t.Errorf("ShareText() = %q", got)
	}
	if strings.Contains(got, `\n`) {
		t.Error("share text contains an escaped newline")
	}
}

func TestShareURL(t *testing.T) {
	page := "https://ridiculousrumors.com/theories/theory_01abc"
	content := "Pigeons are drones."

	tests := []struct {
		platform Platform
		host     string
		urlParam string
	}{
		{Facebook, "www.facebook.com", "u"},
		{Twitter, "twitter.com", "url"},
		{Reddit, "reddit.com", "url"},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			u, err := url.Parse(ShareURL(tt.platform, content, page))
			if err != nil {
				t.Fatalf("ShareURL produced invalid URL: %v", err)
			}
			if u.Host != tt.host {
				t.Errorf("host = %q, want %q", u.Host, tt.host)
			}
			if got := u.Query().Get(tt.urlParam); got != page {
				t.Errorf("%s = %q, want %q", tt.urlParam, got, page)
			}
		})
	}

	tw, _ := url.Parse(ShareURL(Twitter, content, page))
	if tw.Query().Get("hashtags") != "Comedy,Satire,Fictional,RidiculousRumors" {
		t.Errorf("hashtags = %q", tw.Query().Get("hashtags"))
	}
}

func TestPlatform_Valid(t *testing.T) {
	for _, p := range Platforms {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	if Platform("myspace").Valid() {
		t.Error("myspace should be invalid")
	}
}

func TestFormatTerminalDate(t *testing.T) {
	ts := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	if got := FormatTerminalDate(ts); got != "2024.03.10" {
		t.Errorf("FormatTerminalDate() = %q, want %q", got, "2024.03.10")
	}
}

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id, err := NewID()
		if err != nil {
			t.Fatalf("NewID() error = %v", err)
		}
		if !strings.HasPrefix(id, IDPrefix) {
			t.Fatalf("NewID() = %q, want %q prefix", id, IDPrefix)
		}
		if id != strings.ToLower(id) {
			t.Errorf("NewID() = %q, want lowercase", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}

	if NewEventID() == NewEventID() {
		t.Error("NewEventID() returned duplicates")
	}
}
