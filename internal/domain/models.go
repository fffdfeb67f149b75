// Package domain defines the persistence models for suggestions, reports and
// idempotency records. These types are mapped with GORM and form the core
// data layer of the feedback service.
package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidID is returned by ParseKind when an id carries neither the
// suggestion nor the report prefix.
var ErrInvalidID = errors.New("invalid record id")

// Kind tags a record as a suggestion or a report. It is resolved once from the
// id prefix and then passed around as a typed value.
type Kind int

const (
	KindSuggestion Kind = iota + 1
	KindReport
)

const (
	suggestionPrefix = "s_"
	reportPrefix     = "r_"
)

// ParseKind resolves the record kind from the id prefix ("s_" or "r_").
func ParseKind(id string) (Kind, error) {
	switch {
	case strings.HasPrefix(id, suggestionPrefix):
		return KindSuggestion, nil
	case strings.HasPrefix(id, reportPrefix):
		return KindReport, nil
	default:
		return 0, ErrInvalidID
	}
}

// Table returns the table holding records of this kind.
func (k Kind) Table() string {
	switch k {
	case KindSuggestion:
		return Suggestion{}.TableName()
	case KindReport:
		return Report{}.TableName()
	}
	return ""
}

// String implements fmt.Stringer; used as a metrics/log label.
func (k Kind) String() string {
	switch k {
	case KindSuggestion:
		return "suggestion"
	case KindReport:
		return "report"
	}
	return "unknown"
}

// Record is implemented by *Suggestion and *Report.
type Record interface {
	RecordID() string
	Kind() Kind
}

// RecordFields are the columns shared by suggestions and reports.
//
// Fields:
//   - ID: caller-supplied id including the kind prefix.
//   - Context / Author / Avatar: immutable after creation.
//   - Guild: owning guild; immutable, all authorization is scoped by it.
//   - Channel: current channel; changed by the move operation.
//   - Message: rendered chat message id, also the vote lookup key.
//   - Status: free-form ("pending", "approved", ...); changed by setstatus.
//   - CreatedAt: stamped server-side on insert.
type RecordFields struct {
	ID        string    `json:"id"         gorm:"type:varchar(128);primaryKey"`
	Context   string    `json:"context"    gorm:"type:text;not null"`
	Author    string    `json:"author"     gorm:"type:varchar(255);not null"`
	Avatar    string    `json:"avatar"     gorm:"type:text;not null"`
	Guild     string    `json:"guild"      gorm:"type:varchar(64);not null;index"`
	Channel   string    `json:"channel"    gorm:"type:varchar(64);not null"`
	Message   string    `json:"message"    gorm:"type:varchar(64);not null;index"`
	Status    string    `json:"status"     gorm:"type:varchar(64);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Suggestion is a community suggestion with mutually exclusive vote sets.
// VoteVersion is bumped on every vote write and guards the compare-and-swap
// update; it is never exposed to clients.
type Suggestion struct {
	RecordFields
	Upvotes     VoteSet `json:"upvotes"   gorm:"type:text;not null"`
	Downvotes   VoteSet `json:"downvotes" gorm:"type:text;not null"`
	VoteVersion int64   `json:"-"         gorm:"not null;default:0"`
}

// TableName returns the database table name for Suggestion.
func (Suggestion) TableName() string { return "suggestions" }

// RecordID implements Record.
func (s *Suggestion) RecordID() string { return s.ID }

// Kind implements Record.
func (s *Suggestion) Kind() Kind { return KindSuggestion }

// Report is a community report. Reports cannot be voted on.
type Report struct {
	RecordFields
}

// TableName returns the database table name for Report.
func (Report) TableName() string { return "reports" }

// RecordID implements Record.
func (r *Report) RecordID() string { return r.ID }

// Kind implements Record.
func (r *Report) Kind() Kind { return KindReport }

// NewRecord builds an empty-vote record of the given kind from its fields.
func NewRecord(kind Kind, f RecordFields) Record {
	if kind == KindSuggestion {
		return &Suggestion{RecordFields: f, Upvotes: VoteSet{}, Downvotes: VoteSet{}}
	}
	return &Report{RecordFields: f}
}

// Direction is the side of a vote.
type Direction int

const (
	Up Direction = iota + 1
	Down
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// Sets returns the target and opposite vote sets of s for this direction.
func (d Direction) Sets(s *Suggestion) (target, opposite *VoteSet) {
	if d == Down {
		return &s.Downvotes, &s.Upvotes
	}
	return &s.Upvotes, &s.Downvotes
}

// Snapshot is every record of one guild, as returned by fetchall.
type Snapshot struct {
	Suggestions []Suggestion `json:"suggestions"`
	Reports     []Report     `json:"reports"`
}
