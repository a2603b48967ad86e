// Package matcher decides whether a hostname or a "*.domain" pattern is on the
// allow-list. It owns normalization, validation and the exact/wildcard split;
// storage is reached through Repository.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"allowhost/internal/domain"
)

const (
	DefaultSuffixLimit = 20

	wildcardPrefix = "*."

	ReasonEmpty            = "Empty hostname"
	ReasonInvalidChars     = "Hostname has invalid characters"
	ReasonWildcardFound    = "Found hosts with that suffix"
	ReasonWildcardNotFound = "No hosts match this wildcard"
	ReasonExactFound       = "Exact hostname found in whitelist"
	ReasonExactNotFound    = "Hostname not present in whitelist"
)

// ErrLookupFailed marks every error caused by the Repository, so callers can
// tell "query failed" apart from "nothing matched".
var ErrLookupFailed = errors.New("matcher: allow-list lookup failed")

// Repository is the read side of the allow-list store.
type Repository interface {
	ExactMatches(ctx context.Context, hostname string) ([]string, error)
	SuffixMatches(ctx context.Context, parent string, limit int) ([]string, error)
}

type Matcher struct {
	repo        Repository
	suffixLimit int
}

type Option func(*Matcher)

// WithSuffixLimit caps wildcard results. Values below 1 keep the default.
func WithSuffixLimit(limit int) Option {
	return func(m *Matcher) {
		if limit > 0 {
			m.suffixLimit = limit
		}
	}
}

func New(repo Repository, opts ...Option) *Matcher {
	m := &Matcher{
		repo:        repo,
		suffixLimit: DefaultSuffixLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Matcher) SuffixLimit() int {
	return m.suffixLimit
}

// Evaluate checks raw against the allow-list. Malformed input yields a ModeInvalid
// result and a nil error; a non-nil error always wraps ErrLookupFailed.
func (m *Matcher) Evaluate(ctx context.Context, raw string) (domain.CheckResult, error) {
	query := Normalize(raw)

	mode, reason := Classify(query)
	switch mode {
	case domain.ModeInvalid:
		return domain.NewCheckResult(domain.ModeInvalid, nil, reason), nil

	case domain.ModeWildcard:
		parent := strings.TrimPrefix(query, wildcardPrefix)
		matches, err := m.repo.SuffixMatches(ctx, parent, m.suffixLimit)
		if err != nil {
			return domain.CheckResult{}, fmt.Errorf("%w: suffix %q: %w", ErrLookupFailed, parent, err)
		}
		reason := ReasonWildcardNotFound
		if len(matches) > 0 {
			reason = ReasonWildcardFound
		}
		return domain.NewCheckResult(domain.ModeWildcard, matches, reason), nil

	case domain.ModeExact:
		matches, err := m.repo.ExactMatches(ctx, query)
		if err != nil {
			return domain.CheckResult{}, fmt.Errorf("%w: exact %q: %w", ErrLookupFailed, query, err)
		}
		reason := ReasonExactNotFound
		if len(matches) > 0 {
			reason = ReasonExactFound
		}
		return domain.NewCheckResult(domain.ModeExact, matches, reason), nil
	}

	return domain.CheckResult{}, fmt.Errorf("matcher: unhandled mode %s", mode)
}

// Normalize trims surrounding whitespace and lowercases the query.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Classify decides the lookup mode of an already normalized query. The reason is
// only set for ModeInvalid.
func Classify(query string) (domain.Mode, string) {
	if query == "" {
		return domain.ModeInvalid, ReasonEmpty
	}
	if !hasAllowedChars(query) {
		return domain.ModeInvalid, ReasonInvalidChars
	}
	if len(query) > len(wildcardPrefix) && strings.HasPrefix(query, wildcardPrefix) {
		return domain.ModeWildcard, ""
	}
	return domain.ModeExact, ""
}

// hasAllowedChars accepts only a-z, 0-9, '.', '-' and '*'. It walks bytes, so any
// multi-byte rune fails on its first byte.
func hasAllowedChars(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '.', c == '-', c == '*':
		default:
			return false
		}
	}
	return true
}
