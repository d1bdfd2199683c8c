package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestWrite_JSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": []string{"<a>"}}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := buf.String(), "{\"data\":[\"<a>\"]}\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWrite_Pretty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": 1}, "json", true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"data\": 1\n") {
		t.Fatalf("expected indented output, got %q", buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, nil, "edn", false); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
