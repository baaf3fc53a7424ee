/*
Package factory converts persisted documents into engine values.

PURPOSE:
  The engine works on typed values; the outside world stores JSON state
  blobs and YAML preset files. This package sits between the two. Parsing
  always goes through the engine's sanitizer, so whatever comes off disk
  or over the wire becomes a canonical incentive.State.

STATE JSON:
  {
    "settings":    {"baseMonths": 3, "capPct": 120, "factorMode": "multiply", "capFactor": true},
    "departments": {"general_manager": {"fin": {...}, "ops": {...}, "ind": {...}}, ...},
    "overrides":   {"emp-7": {"fin": {...}, "ops": {...}, "ind": {...}}},
    "employees":   [{"id": "emp-7", "department": "office", "salary": 4200, ...}],
    "selectedId":  "emp-7"
  }

USAGE:
  codec := factory.NewCodec(defaults)

  state := codec.ParseState(blob) // never fails
  blob, err := codec.MarshalState(state)

SEE ALSO:
  - incentive/sanitize.go: the field-by-field rules applied on parse
  - factory/presets.go:    YAML department presets
*/
package factory

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/warp/incentive-engine/incentive"
)

// Codec parses and serialises State documents against a set of defaults.
type Codec struct {
	defaults *incentive.Defaults
}

// NewCodec creates a codec. A nil defaults uses the standard defaults.
func NewCodec(defaults *incentive.Defaults) *Codec {
	if defaults == nil {
		defaults = incentive.StandardDefaults()
	}
	return &Codec{defaults: defaults}
}

// Defaults returns the defaults the codec degrades to.
func (c *Codec) Defaults() *incentive.Defaults {
	return c.defaults
}

// ParseState decodes a persisted JSON document. Empty or invalid input
// yields the default state.
func (c *Codec) ParseState(data []byte) incentive.State {
	if len(data) == 0 {
		return c.defaults.State()
	}
	return c.defaults.Sanitize(data)
}

// MarshalState encodes s as indented JSON.
func (c *Codec) MarshalState(s incentive.State) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "failed to marshal state")
	}
	return data, nil
}

// ParseState decodes a JSON document against the standard defaults.
func ParseState(data []byte) incentive.State {
	return NewCodec(nil).ParseState(data)
}

// MarshalState encodes s as indented JSON.
func MarshalState(s incentive.State) ([]byte, error) {
	return NewCodec(nil).MarshalState(s)
}
