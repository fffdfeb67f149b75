// Package policy holds the API-key authorization table. The table is loaded
// once at startup and never mutated afterwards; callers share it by pointer.
//
// File layout (any format viper understands, picked by extension):
//
//	keys:
//	  - key: "opaque-token"
//	    global: true
//	  - key: "guild-scoped-token"
//	    guilds: ["111", "222"]
//
// Keys are listed rather than used as map keys because viper lower-cases map
// keys and API keys are case-sensitive.
package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Policy is the permission entry attached to one API key.
type Policy struct {
	Global bool
	Guilds map[string]struct{}
}

// Allows reports whether the policy may act on guild.
func (p Policy) Allows(guild string) bool {
	if p.Global {
		return true
	}
	_, ok := p.Guilds[guild]
	return ok
}

// NewPolicy builds a policy from a guild list.
func NewPolicy(global bool, guilds ...string) Policy {
	p := Policy{Global: global, Guilds: make(map[string]struct{}, len(guilds))}
	for _, g := range guilds {
		p.Guilds[g] = struct{}{}
	}
	return p
}

// Table maps API keys to policies. The zero value is an empty table.
type Table struct {
	entries map[string]Policy
}

// NewTable copies entries into an immutable table.
func NewTable(entries map[string]Policy) *Table {
	t := &Table{entries: make(map[string]Policy, len(entries))}
	for k, v := range entries {
		t.entries[k] = v
	}
	return t
}

// Lookup returns the policy for key. Empty keys never match.
func (t *Table) Lookup(key string) (Policy, bool) {
	if t == nil || key == "" {
		return Policy{}, false
	}
	p, ok := t.entries[key]
	return p, ok
}

// Len returns the number of keys.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Summary counts global and guild-scoped keys.
func (t *Table) Summary() (global, scoped int) {
	if t == nil {
		return 0, 0
	}
	for _, p := range t.entries {
		if p.Global {
			global++
		} else {
			scoped++
		}
	}
	return global, scoped
}

// entry is the on-disk shape of one key.
type entry struct {
	Key    string   `mapstructure:"key"`
	Global bool     `mapstructure:"global"`
	Guilds []string `mapstructure:"guilds"`
}

// Load reads the policy file at path.
func Load(path string) (*Table, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("policy: read %s: %w", path, err)
	}
	return FromViper(v)
}

// FromViper decodes the "keys" list from an already-populated viper instance.
func FromViper(v *viper.Viper) (*Table, error) {
	var raw []entry
	if err := v.UnmarshalKey("keys", &raw); err != nil {
		return nil, fmt.Errorf("policy: decode keys: %w", err)
	}
	entries := make(map[string]Policy, len(raw))
	for i, e := range raw {
		key := strings.TrimSpace(e.Key)
		if key == "" {
			return nil, fmt.Errorf("policy: entry %d has an empty key", i)
		}
		if _, dup := entries[key]; dup {
			return nil, fmt.Errorf("policy: entry %d duplicates an earlier key", i)
		}
		if !e.Global && len(e.Guilds) == 0 {
			return nil, fmt.Errorf("policy: entry %d is neither global nor scoped to any guild", i)
		}
		entries[key] = NewPolicy(e.Global, e.Guilds...)
	}
	if len(entries) == 0 {
		return nil, errors.New("policy: no keys configured")
	}
	return &Table{entries: entries}, nil
}
