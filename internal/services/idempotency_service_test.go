package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/tbourn/library-community/internal/domain"
)

func TestIdempotencyService_RememberAndLookup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewIdempotencyService(db, time.Hour)

	if _, found, err := svc.Lookup(ctx, "u1", domain.IdempotencyScopeDiscussions, "k1"); err != nil || found {
		t.Fatalf("empty lookup: found=%v err=%v", found, err)
	}
	if err := svc.Remember(ctx, "u1", domain.IdempotencyScopeDiscussions, "k1", "d-1", http.StatusCreated); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	id, found, err := svc.Lookup(ctx, "u1", domain.IdempotencyScopeDiscussions, "k1")
	if err != nil || !found || id != "d-1" {
		t.Fatalf("Lookup = %q %v %v", id, found, err)
	}

	// Another user with the same key is independent.
	if _, found, _ := svc.Lookup(ctx, "u2", domain.IdempotencyScopeDiscussions, "k1"); found {
		t.Fatal("key leaked across users")
	}

	// The first record wins.
	if err := svc.Remember(ctx, "u1", domain.IdempotencyScopeDiscussions, "k1", "d-2", http.StatusCreated); err != nil {
		t.Fatalf("duplicate Remember: %v", err)
	}
	id, _, _ = svc.Lookup(ctx, "u1", domain.IdempotencyScopeDiscussions, "k1")
	if id != "d-1" {
		t.Fatalf("duplicate overwrote record: %q", id)
	}
}

func TestIdempotencyService_BlankKeyIsIgnored(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdempotencyService(db, 0)
	ctx := context.Background()

	if err := svc.Remember(ctx, "u1", "discussions", "  ", "x", 201); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	var n int64
	db.Model(&domain.Idempotency{}).Count(&n)
	if n != 0 {
		t.Fatalf("blank key stored %d rows", n)
	}
	if _, found, err := svc.Lookup(ctx, "u1", "discussions", ""); found || err != nil {
		t.Fatalf("blank lookup: %v %v", found, err)
	}
}

func TestIdempotencyService_Purge(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewIdempotencyService(db, time.Minute)

	if err := svc.Remember(ctx, "u1", domain.IdempotencyScopeDiscussions, "old", "d-1", http.StatusCreated); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if n, err := svc.Purge(ctx, time.Now()); err != nil || n != 0 {
		t.Fatalf("fresh purge: n=%d err=%v", n, err)
	}
	n, err := svc.Purge(ctx, time.Now().Add(2*time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("expired purge: n=%d err=%v", n, err)
	}

	var left int64
	db.Model(&domain.Idempotency{}).Count(&left)
	if left != 0 {
		t.Fatalf("rows left=%d", left)
	}
}

func TestIdempotencyService_RunPurger(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdempotencyService(db, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Remember(ctx, "u1", domain.IdempotencyScopeDiscussions, "k", "d-1", http.StatusCreated); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	done := make(chan struct{})
	go func() {
		svc.RunPurger(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		var n int64
		db.Model(&domain.Idempotency{}).Count(&n)
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("purger never removed the expired record")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	// Disabled interval returns at once.
	svc.RunPurger(context.Background(), 0)
}
