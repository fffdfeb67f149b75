package repo

import (
	"context"
	"testing"
	"time"

	"github.com/codedsnow/feedback-api/internal/domain"
)

func TestGetIdempotency_EmptyKey_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	rec, err := GetIdempotency(context.Background(), db, IdemKey{APIKeyHash: "h", Route: "/submit", Key: "   "}, time.Now().UTC())
	if rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for empty key, got (%v, %v)", rec, err)
	}
}

func TestGetIdempotency_ExpiredOrMissing_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	now := time.Now().UTC()

	exp := &domain.Idempotency{
		ID:          "expired",
		APIKeyHash:  "h1",
		Route:       "/submit",
		Key:         "k1",
		RequestHash: "b1",
		Response:    `{"success":true}`,
		CreatedAt:   now.Add(-2 * time.Hour),
		ExpiresAt:   now.Add(-time.Hour),
	}
	if err := db.Create(exp).Error; err != nil {
		t.Fatalf("seed expired: %v", err)
	}

	k := IdemKey{APIKeyHash: "h1", Route: "/submit", Key: "k1"}
	if rec, err := GetIdempotency(context.Background(), db, k, now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for expired, got (%v, %v)", rec, err)
	}
	k.Key = "missing"
	if rec, err := GetIdempotency(context.Background(), db, k, now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for missing, got (%v, %v)", rec, err)
	}
}

func TestCreateIdempotency_SuccessDuplicateAndScope(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()
	ttl := 90 * time.Minute
	start := time.Now().UTC()

	k := IdemKey{APIKeyHash: "h9", Route: "/submit", Key: "k9"}
	rec, err := CreateIdempotency(ctx, db, k, "b9", `{"success":true}`, ttl)
	if err != nil {
		t.Fatalf("CreateIdempotency error: %v", err)
	}
	if rec == nil || rec.ID == "" || rec.RequestHash != "b9" || rec.Response != `{"success":true}` {
		t.Fatalf("unexpected record: %+v", rec)
	}
	// Loose bound to avoid timing flakes.
	if !(rec.ExpiresAt.After(start) && rec.ExpiresAt.Before(start.Add(2*time.Hour))) {
		t.Fatalf("unexpected ExpiresAt: %v", rec.ExpiresAt)
	}

	if _, err := CreateIdempotency(ctx, db, k, "bX", "{}", ttl); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Same client key on another route or for another API key is independent.
	if _, err := CreateIdempotency(ctx, db, IdemKey{APIKeyHash: "h9", Route: "/move", Key: "k9"}, "b9", "{}", ttl); err != nil {
		t.Fatalf("other route: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, IdemKey{APIKeyHash: "hX", Route: "/submit", Key: "k9"}, "b9", "{}", ttl); err != nil {
		t.Fatalf("other api key: %v", err)
	}

	got, err := GetIdempotency(ctx, db, k, time.Now().UTC())
	if err != nil || got.RequestHash != "b9" {
		t.Fatalf("GetIdempotency: rec=%+v err=%v", got, err)
	}
}

func TestCreateIdempotency_ReplacesExpired(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()
	k := IdemKey{APIKeyHash: "h1", Route: "/submit", Key: "k1"}

	if _, err := CreateIdempotency(ctx, db, k, "old", "{}", -time.Minute); err != nil {
		t.Fatalf("seed expired: %v", err)
	}
	rec, err := CreateIdempotency(ctx, db, k, "new", "{}", time.Hour)
	if err != nil {
		t.Fatalf("expected expired row to be replaced, got %v", err)
	}
	if rec.RequestHash != "new" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

// Generic DB error path: attempt insert without migrating the table.
func TestCreateIdempotency_Error_NoTable(t *testing.T) {
	db := newTestDB(t) // intentionally NOT migrating
	_, err := CreateIdempotency(context.Background(), db, IdemKey{APIKeyHash: "h", Route: "/r", Key: "k"}, "b", "{}", time.Minute)
	if err == nil {
		t.Fatalf("expected error when table is missing")
	}
	if err == ErrDuplicate {
		t.Fatalf("expected non-duplicate error, got ErrDuplicate")
	}
}

func TestPurgeIdempotency(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()

	_, _ = CreateIdempotency(ctx, db, IdemKey{APIKeyHash: "h", Route: "/r", Key: "old"}, "b", "{}", -time.Minute)
	_, _ = CreateIdempotency(ctx, db, IdemKey{APIKeyHash: "h", Route: "/r", Key: "live"}, "b", "{}", time.Hour)

	n, err := PurgeIdempotency(ctx, db, time.Now().UTC())
	if err != nil {
		t.Fatalf("PurgeIdempotency: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged row, got %d", n)
	}
	var left int64
	db.Model(&domain.Idempotency{}).Count(&left)
	if left != 1 {
		t.Fatalf("expected 1 remaining row, got %d", left)
	}
}
