package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// VoteSet is a set of user ids kept in insertion order. It is persisted as a
// JSON array in a text column; Scan drops duplicates so the set property holds
// even for rows written by other tools.
type VoteSet []string

// Has reports whether user is a member.
func (v VoteSet) Has(user string) bool {
	for _, id := range v {
		if id == user {
			return true
		}
	}
	return false
}

// Add inserts user and reports whether the set changed.
func (v *VoteSet) Add(user string) bool {
	if v.Has(user) {
		return false
	}
	*v = append(*v, user)
	return true
}

// Remove deletes user and reports whether the set changed.
func (v *VoteSet) Remove(user string) bool {
	for i, id := range *v {
		if id == user {
			*v = append((*v)[:i:i], (*v)[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of members.
func (v VoteSet) Len() int { return len(v) }

// Clone returns an independent copy.
func (v VoteSet) Clone() VoteSet {
	out := make(VoteSet, len(v))
	copy(out, v)
	return out
}

// MarshalJSON encodes a nil set as [] rather than null.
func (v VoteSet) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(v))
}

// UnmarshalJSON decodes a JSON array, dropping duplicates.
func (v *VoteSet) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*v = dedupe(ids)
	return nil
}

// Value implements driver.Valuer.
func (v VoteSet) Value() (driver.Value, error) {
	b, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (v *VoteSet) Scan(src any) error {
	var raw []byte
	switch s := src.(type) {
	case nil:
		*v = VoteSet{}
		return nil
	case []byte:
		raw = s
	case string:
		raw = []byte(s)
	default:
		return fmt.Errorf("voteset: unsupported column type %T", src)
	}
	if len(raw) == 0 {
		*v = VoteSet{}
		return nil
	}
	return v.UnmarshalJSON(raw)
}

func dedupe(ids []string) VoteSet {
	out := make(VoteSet, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
