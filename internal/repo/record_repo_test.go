package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codedsnow/feedback-api/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func newRecordDB(t *testing.T) *gorm.DB {
	t.Helper()
	return newTestDB(t, &domain.Suggestion{}, &domain.Report{})
}

func fields(id, guild, message string) domain.RecordFields {
	return domain.RecordFields{
		ID:      id,
		Context: "ctx " + id,
		Author:  "author",
		Avatar:  "https://cdn/avatar.png",
		Guild:   guild,
		Channel: "c1",
		Message: message,
		Status:  "pending",
	}
}

func TestInsertRecord_StampsAndDetectsDuplicate(t *testing.T) {
	db := newRecordDB(t)
	ctx := context.Background()

	s := &domain.Suggestion{RecordFields: fields("s_1", "g1", "m1")}
	if err := InsertRecord(ctx, db, s); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if s.CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt to be stamped")
	}
	if s.Upvotes == nil || s.Downvotes == nil {
		t.Fatalf("expected vote sets to be initialized")
	}

	err := InsertRecord(ctx, db, &domain.Suggestion{RecordFields: fields("s_1", "g1", "m2")})
	if err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestInsertRecord_Error_NoTable(t *testing.T) {
	db := newTestDB(t)
	err := InsertRecord(context.Background(), db, &domain.Report{RecordFields: fields("r_1", "g1", "m1")})
	if err == nil || err == ErrDuplicate {
		t.Fatalf("expected a non-duplicate error, got %v", err)
	}
}

func TestGetRecord_ScopedByGuild(t *testing.T) {
	db := newRecordDB(t)
	ctx := context.Background()
	if err := InsertRecord(ctx, db, &domain.Report{RecordFields: fields("r_1", "g1", "m1")}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec, err := GetRecord(ctx, db, domain.KindReport, "g1", "r_1")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if rec.RecordID() != "r_1" || rec.Kind() != domain.KindReport {
		t.Fatalf("unexpected record %+v", rec)
	}

	if _, err := GetRecord(ctx, db, domain.KindReport, "g2", "r_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other guild, got %v", err)
	}
	if _, err := GetRecord(ctx, db, domain.Kind(0), "g1", "r_1"); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID for unknown kind, got %v", err)
	}
}

func TestUpdateStatus_ReturnsLocation(t *testing.T) {
	db := newRecordDB(t)
	ctx := context.Background()
	if err := InsertRecord(ctx, db, &domain.Suggestion{RecordFields: fields("s_1", "g1", "m1")}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	loc, err := UpdateStatus(ctx, db, domain.KindSuggestion, "g1", "s_1", "approved")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if loc.Message != "m1" || loc.Channel != "c1" {
		t.Fatalf("unexpected location %+v", loc)
	}

	// Same value again is still a match.
	if _, err := UpdateStatus(ctx, db, domain.KindSuggestion, "g1", "s_1", "approved"); err != nil {
		t.Fatalf("repeat UpdateStatus: %v", err)
	}

	var got domain.Suggestion
	if err := db.First(&got, "id = ?", "s_1").Error; err != nil || got.Status != "approved" {
		t.Fatalf("status not persisted: err=%v got=%+v", err, got)
	}
}

func TestUpdateStatus_NotFound_NoWrite(t *testing.T) {
	db := newRecordDB(t)
	ctx := context.Background()
	if err := InsertRecord(ctx, db, &domain.Report{RecordFields: fields("r_1", "g1", "m1")}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := UpdateStatus(ctx, db, domain.KindReport, "g2", "r_1", "closed")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var got domain.Report
	if err := db.First(&got, "id = ?", "r_1").Error; err != nil || got.Status != "pending" {
		t.Fatalf("row must be untouched: err=%v got=%+v", err, got)
	}
}

func TestUpdateChannel_ReturnsNewChannel(t *testing.T) {
	db := newRecordDB(t)
	ctx := context.Background()
	if err := InsertRecord(ctx, db, &domain.Report{RecordFields: fields("r_1", "g1", "m1")}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	loc, err := UpdateChannel(ctx, db, domain.KindReport, "g1", "r_1", "c9")
	if err != nil {
		t.Fatalf("UpdateChannel: %v", err)
	}
	if loc.Channel != "c9" || loc.Message != "m1" {
		t.Fatalf("unexpected location %+v", loc)
	}
}

func TestListSuggestionsAndReports_FilterAndOrder(t *testing.T) {
	db := newRecordDB(t)
	ctx := context.Background()

	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)

	later := &domain.Suggestion{RecordFields: fields("s_2", "g1", "m2")}
	later.CreatedAt = t2
	earlier := &domain.Suggestion{RecordFields: fields("s_1", "g1", "m1")}
	earlier.CreatedAt = t1
	other := &domain.Suggestion{RecordFields: fields("s_3", "g2", "m3")}
	for _, s := range []*domain.Suggestion{later, earlier, other} {
		if err := InsertRecord(ctx, db, s); err != nil {
			t.Fatalf("seed %s: %v", s.ID, err)
		}
	}

	got, err := ListSuggestions(ctx, db, "g1")
	if err != nil {
		t.Fatalf("ListSuggestions: %v", err)
	}
	if len(got) != 2 || got[0].ID != "s_1" || got[1].ID != "s_2" {
		t.Fatalf("unexpected suggestions %+v", got)
	}

	reports, err := ListReports(ctx, db, "g1")
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if reports == nil || len(reports) != 0 {
		t.Fatalf("expected empty non-nil reports, got %#v", reports)
	}
}
