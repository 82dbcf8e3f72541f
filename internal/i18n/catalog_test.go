package i18n

import (
	"testing"
	"testing/fstest"

	"golang.org/x/text/language"
)

func TestMatch(t *testing.T) {
	c, err := Load("de")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		header string
		want   language.Tag
	}{
		{header: "", want: language.German},
		{header: "en-US,en;q=0.9", want: language.English},
		{header: "de-AT", want: language.German},
		{header: "fr-FR,en;q=0.5", want: language.English},
		{header: "ja", want: language.German},
		{header: "not a header;;", want: language.German},
	}
	for _, tt := range tests {
		if got := c.Match(tt.header); got != tt.want {
			t.Fatalf("Match(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestSprintf(t *testing.T) {
	c, err := Load("de")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := c.Sprintf(language.German, "invitation.confirmed"); got != "Einladung erfolgreich bestätigt." {
		t.Fatalf("unexpected german text %q", got)
	}
	if got := c.Sprintf(language.English, "invitation.updated", "declined"); got != "Invitation updated to declined" {
		t.Fatalf("unexpected english text %q", got)
	}
	if got := c.Sprintf(language.English, "no.such.key"); got != "no.such.key" {
		t.Fatalf("unknown key = %q, want key echoed", got)
	}
}

func TestLocalesDefineSameKeys(t *testing.T) {
	c, err := Load("en")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	keys := []string{
		"internal",
		"access.forbidden",
		"auth.unauthorized",
		"invitation.sent",
		"invitation.invalid_token",
		"invitation.notification_failed",
		"invitation.email.subject",
		"timer.already_running",
		"timer.not_running",
	}
	for _, tag := range []language.Tag{language.German, language.English} {
		for _, key := range keys {
			if got := c.Sprintf(tag, key); got == key {
				t.Fatalf("%v: key %q is not translated", tag, key)
			}
		}
	}
}

func TestLoadFromFSRejectsUnknownFallback(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en.yaml": {Data: []byte("locale: en\nmessages:\n  hello: Hello\n")},
	}
	_, err := LoadFromFS(fsys, "de")
	if err == nil {
		t.Fatal("expected error for fallback without catalog")
	}
}
