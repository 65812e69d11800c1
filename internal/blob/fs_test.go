package blob_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"pergola/internal/blob"
	"pergola/internal/testsupport"
)

func openFS(t *testing.T) blob.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := blob.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open blob store: %v", err)
	}
	return store
}

func TestFSPutGetDelete(t *testing.T) {
	store := openFS(t)
	ctx := context.Background()
	key := "proposals/opp-1/v1.pdf"

	if err := store.Put(ctx, key, strings.NewReader("%PDF-1.4 fake"), "application/pdf"); err != nil {
		t.Fatalf("put: %v", err)
	}

	body, contentType, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("body = %q", data)
	}
	if contentType != "application/pdf" {
		t.Errorf("content type = %q, want application/pdf", contentType)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := store.Get(ctx, key); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFSPutOverwritesExistingVersion(t *testing.T) {
	store := openFS(t)
	ctx := context.Background()
	key := "proposals/opp-1/v1.pdf"

	if err := store.Put(ctx, key, strings.NewReader("first"), "application/pdf"); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := store.Put(ctx, key, strings.NewReader("second"), "application/pdf"); err != nil {
		t.Fatalf("second put: %v", err)
	}

	body, _, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer body.Close()
	data, _ := io.ReadAll(body)
	if string(data) != "second" {
		t.Errorf("body = %q, want second", data)
	}
}

func TestFSRejectsEscapingKeys(t *testing.T) {
	store := openFS(t)
	ctx := context.Background()

	for _, key := range []string{"", "/etc/passwd", "../outside", "a/../../b"} {
		if err := store.Put(ctx, key, strings.NewReader("x"), ""); err == nil {
			t.Errorf("key %q: expected rejection", key)
		}
	}
}

func TestFSGetMissing(t *testing.T) {
	store := openFS(t)
	if _, _, err := store.Get(context.Background(), "nope/missing.pdf"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
