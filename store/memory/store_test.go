package memory_test

import (
	"context"
	"crypto/sha256"
	"errors"
	"testing"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/id"
	"github.com/eirrgang/scale-ms/store/memory"
)

func testIdentity(t *testing.T, seed string) id.ResourceID {
	t.Helper()
	digest := sha256.Sum256([]byte(seed))
	rid, err := id.NewResourceID(digest[:])
	if err != nil {
		t.Fatalf("NewResourceID() error: %v", err)
	}
	return rid
}

func TestStoreItemLifecycle(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	identity := testIdentity(t, "item-1")
	record := map[string]any{"type": []any{"scalems", "test"}, "data": 1}

	ok, err := s.HasItem(ctx, identity)
	if err != nil || ok {
		t.Fatalf("HasItem() = %v, %v before put", ok, err)
	}
	if _, err := s.GetItem(ctx, identity); !errors.Is(err, scalems.ErrItemNotFound) {
		t.Fatalf("GetItem() error = %v, want ErrItemNotFound", err)
	}

	if err := s.PutItem(ctx, identity, record); err != nil {
		t.Fatalf("PutItem() error: %v", err)
	}
	if err := s.PutItem(ctx, identity, record); !errors.Is(err, scalems.ErrItemExists) {
		t.Errorf("PutItem() twice error = %v, want ErrItemExists", err)
	}

	got, err := s.GetItem(ctx, identity)
	if err != nil {
		t.Fatalf("GetItem() error: %v", err)
	}
	got["data"] = 99
	again, err := s.GetItem(ctx, identity)
	if err != nil {
		t.Fatalf("GetItem() error: %v", err)
	}
	if again["data"] != 1 {
		t.Error("store shares mutable state with callers")
	}
}

func TestStoreListOrder(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	ids := []id.ResourceID{
		testIdentity(t, "c"),
		testIdentity(t, "a"),
		testIdentity(t, "b"),
	}
	for _, rid := range ids {
		if err := s.PutItem(ctx, rid, map[string]any{"data": nil}); err != nil {
			t.Fatalf("PutItem() error: %v", err)
		}
	}

	listed, err := s.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems() error: %v", err)
	}
	if len(listed) != len(ids) {
		t.Fatalf("ListItems() returned %d identities, want %d", len(listed), len(ids))
	}
	for i := range ids {
		if !id.Equal(listed[i], ids[i]) {
			t.Errorf("ListItems()[%d] = %v, want insertion order preserved", i, listed[i])
		}
	}
}

func TestStoreResults(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	identity := testIdentity(t, "cmd")

	if _, err := s.GetResult(ctx, identity); !errors.Is(err, scalems.ErrItemNotFound) {
		t.Fatalf("GetResult() error = %v, want ErrItemNotFound", err)
	}

	if err := s.PutResult(ctx, identity, &scalems.Result{ExitCode: 0, Stdout: "/tmp/out"}); err != nil {
		t.Fatalf("PutResult() error: %v", err)
	}
	got, err := s.GetResult(ctx, identity)
	if err != nil {
		t.Fatalf("GetResult() error: %v", err)
	}
	if got.Stdout != "/tmp/out" || !got.Success() {
		t.Errorf("GetResult() = %+v", got)
	}
}

func TestStoreClosed(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	identity := testIdentity(t, "x")
	if err := s.PutItem(ctx, identity, nil); !errors.Is(err, scalems.ErrStoreClosed) {
		t.Errorf("PutItem() after close error = %v, want ErrStoreClosed", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, scalems.ErrStoreClosed) {
		t.Errorf("Ping() after close error = %v, want ErrStoreClosed", err)
	}
}
