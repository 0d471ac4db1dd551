package infra

import (
	"strings"
	"testing"
)

func TestExtractMarker(t *testing.T) {
	query := `--sql 0f6b8a52-3c1d-4e7f-9a20-5b8c7d6e4f31
select value from kv_entries where key = $1;
`
	marker, body, err := extractMarker(query)
	if err != nil {
		t.Fatalf("extractMarker error: %v", err)
	}
	if marker != "0f6b8a52-3c1d-4e7f-9a20-5b8c7d6e4f31" {
		t.Fatalf("unexpected marker %q", marker)
	}
	if !strings.HasPrefix(body, "select value") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestExtractMarkerMissing(t *testing.T) {
	if _, _, err := extractMarker("select 1;"); err == nil {
		t.Fatal("expected error for query without marker")
	}
	if _, _, err := extractMarker("--sql not-a-uuid\nselect 1;"); err == nil {
		t.Fatal("expected error for malformed marker")
	}
}
