package domain

import (
	"encoding/json"
	"testing"
)

func TestNewCheckResult(t *testing.T) {
	empty := NewCheckResult(ModeExact, nil, "Hostname not present in whitelist")
	if empty.Allowed || empty.MatchCount != 0 {
		t.Fatalf("empty result = %+v, want not allowed with zero matches", empty)
	}
	if empty.Matches == nil {
		t.Fatal("Matches should be an empty slice, got nil")
	}

	hit := NewCheckResult(ModeWildcard, []string{"a.example.com", "b.example.com"}, "Found hosts with that suffix")
	if !hit.Allowed || hit.MatchCount != 2 {
		t.Fatalf("hit result = %+v, want allowed with two matches", hit)
	}
}

func TestCheckResultJSONShape(t *testing.T) {
	data, err := json.Marshal(CheckResult{Mode: ModeInvalid, Reason: "Empty hostname"})
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}

	want := `{"allowed":false,"mode":"invalid","match_count":0,"matches":[],"reason":"Empty hostname"}`
	if string(data) != want {
		t.Fatalf("marshal result = %s, want %s", data, want)
	}
}

func TestHostnamesOf(t *testing.T) {
	hosts := []AllowedHost{{Hostname: "b.example.com"}, {Hostname: "a.example.com"}}
	got := HostnamesOf(hosts)
	if len(got) != 2 || got[0] != "b.example.com" || got[1] != "a.example.com" {
		t.Fatalf("HostnamesOf = %v, want row order preserved", got)
	}
}
