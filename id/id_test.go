package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/bossbat/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"WorkerID", id.NewWorkerID, "wkr_"},
		{"OccurrenceID", id.NewOccurrenceID, "occ_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	orig := id.NewOccurrenceID()
	parsed, err := id.ParseOccurrenceID(orig.String())
	if err != nil {
		t.Fatalf("ParseOccurrenceID: %v", err)
	}
	if parsed.String() != orig.String() {
		t.Errorf("round trip: got %q, want %q", parsed.String(), orig.String())
	}
}

func TestCrossTypeRejection(t *testing.T) {
	w := id.NewWorkerID()
	if _, err := id.ParseOccurrenceID(w.String()); err == nil {
		t.Error("expected error parsing worker ID as occurrence ID")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero ID should be nil")
	}
	if i.String() != "" {
		t.Errorf("nil String() = %q, want empty", i.String())
	}
	if i.Prefix() != "" {
		t.Errorf("nil Prefix() = %q, want empty", i.Prefix())
	}
}

func TestMarshalUnmarshalText(t *testing.T) {
	orig := id.NewWorkerID()
	data, err := orig.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var got id.ID
	if err := got.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if got.String() != orig.String() {
		t.Errorf("got %q, want %q", got.String(), orig.String())
	}

	var empty id.ID
	if err := empty.UnmarshalText(nil); err != nil {
		t.Fatalf("UnmarshalText(nil): %v", err)
	}
	if !empty.IsNil() {
		t.Error("expected nil ID after unmarshaling empty text")
	}
}

func TestUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		s := id.NewOccurrenceID().String()
		if _, dup := seen[s]; dup {
			t.Fatalf("duplicate ID %q", s)
		}
		seen[s] = struct{}{}
	}
}
