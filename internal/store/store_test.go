package store

import (
	"context"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	got, err := s.Load(ctx, "missing")
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if got != nil {
		t.Fatal("missing key should load as nil")
	}

	payload := []byte(`[{"id":"A0_star"}]`)
	if err := s.Save(ctx, "alpha", payload); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = s.Load(ctx, "alpha")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("round trip mismatch: %s", got)
	}

	// The store keeps its own copy; mutating the returned slice must
	// not corrupt a later load.
	got[0] = 'X'
	again, _ := s.Load(ctx, "alpha")
	if string(again) != string(payload) {
		t.Fatalf("stored snapshot was aliased: %s", again)
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Save(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ := s.Load(ctx, "k")
	if string(got) != "two" {
		t.Fatalf("expected latest snapshot, got %s", got)
	}
}
