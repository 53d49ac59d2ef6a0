package keyspace_test

import (
	"testing"

	"github.com/xraph/bossbat/keyspace"
)

func TestKeyNames(t *testing.T) {
	ks := keyspace.New("bossbat")

	if got := ks.Trigger("daily"); got != "bossbat:work:daily" {
		t.Errorf("Trigger = %q", got)
	}
	if got := ks.Demand("daily"); got != "bossbat:work:demand:daily" {
		t.Errorf("Demand = %q", got)
	}
	if got := ks.Lock("daily"); got != "bossbat:lock:daily" {
		t.Errorf("Lock = %q", got)
	}
}

func TestDecode(t *testing.T) {
	ks := keyspace.New("p")

	tests := []struct {
		key        string
		wantName   string
		wantDemand bool
		wantOK     bool
	}{
		{"p:work:daily", "daily", false, true},
		{"p:work:demand:daily", "daily", true, true},
		{"p:work:something:with:colons", "something:with:colons", false, true},
		{"p:work:demand:a:b", "a:b", true, true},
		{"p:lock:daily", "", false, false},
		{"other:work:daily", "", false, false},
		{"some-other-key", "", false, false},
		{"p:work:", "", false, false},
		{"p:work:demand:", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			name, demand, ok := ks.Decode(tt.key)
			if name != tt.wantName || demand != tt.wantDemand || ok != tt.wantOK {
				t.Errorf("Decode(%q) = (%q, %v, %v), want (%q, %v, %v)",
					tt.key, name, demand, ok, tt.wantName, tt.wantDemand, tt.wantOK)
			}
		})
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	ks := keyspace.New("bossbat")
	for _, name := range []string{"a", "x:y", "demand"} {
		if got, demand, ok := ks.Decode(ks.Trigger(name)); !ok || demand || got != name {
			t.Errorf("trigger round trip for %q: (%q, %v, %v)", name, got, demand, ok)
		}
		if got, demand, ok := ks.Decode(ks.Demand(name)); !ok || !demand || got != name {
			t.Errorf("demand round trip for %q: (%q, %v, %v)", name, got, demand, ok)
		}
	}
}
