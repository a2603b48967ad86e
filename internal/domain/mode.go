package domain

import (
	"encoding/json"
	"fmt"
)

// Mode tells how a query was classified.
type Mode uint8

const (
	ModeInvalid Mode = iota
	ModeExact
	ModeWildcard
)

var modeNames = [...]string{
	ModeInvalid:  "invalid",
	ModeExact:    "exact",
	ModeWildcard: "wildcard",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode maps the wire name back to a Mode.
func ParseMode(name string) (Mode, error) {
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return ModeInvalid, fmt.Errorf("domain: unknown mode %q", name)
}

func (m Mode) MarshalJSON() ([]byte, error) {
	if int(m) >= len(modeNames) {
		return nil, fmt.Errorf("domain: cannot marshal %s", m)
	}
	return json.Marshal(m.String())
}

func (m *Mode) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseMode(name)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
