package domain

import "encoding/json"

// CheckResult is the outcome of a single allow-list check. It is never persisted.
type CheckResult struct {
	Allowed    bool     `json:"allowed"`
	Mode       Mode     `json:"mode"`
	MatchCount int      `json:"match_count"`
	Matches    []string `json:"matches"`
	Reason     string   `json:"reason"`
}

// NewCheckResult builds a result whose Allowed and MatchCount fields follow from matches.
func NewCheckResult(mode Mode, matches []string, reason string) CheckResult {
	if matches == nil {
		matches = []string{}
	}
	return CheckResult{
		Allowed:    len(matches) > 0,
		Mode:       mode,
		MatchCount: len(matches),
		Matches:    matches,
		Reason:     reason,
	}
}

// MarshalJSON keeps "matches" an array even for zero-value results.
func (r CheckResult) MarshalJSON() ([]byte, error) {
	type alias CheckResult
	out := alias(r)
	if out.Matches == nil {
		out.Matches = []string{}
	}
	return json.Marshal(out)
}
