package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGooseLoggerPrintf(t *testing.T) {
	var buf bytes.Buffer
	l := gooseLogger{logger: zerolog.New(&buf)}

	l.Printf("OK   %s (%v)\n", "00001_init.sql", "12ms")

	out := buf.String()
	if !strings.Contains(out, `"message":"OK   00001_init.sql (12ms)"`) {
		t.Errorf("output = %s, want trimmed migration message", out)
	}
	if !strings.Contains(out, `"component":"goose"`) {
		t.Errorf("output = %s, want goose component", out)
	}
}

func TestGooseLoggerFatalfPanics(t *testing.T) {
	var buf bytes.Buffer
	l := gooseLogger{logger: zerolog.New(&buf)}

	defer func() {
		if recover() == nil {
			t.Fatal("Fatalf did not panic")
		}
		if !strings.Contains(buf.String(), "no migrations found") {
			t.Errorf("output = %s, want the fatal message", buf.String())
		}
	}()
	l.Fatalf("no migrations found")
}
