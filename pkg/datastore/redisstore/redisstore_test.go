package redisstore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/nethajinirmal13/mlrun/pkg/datastore"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s, err := New(Config{Endpoint: mr.Addr()}, WithClient(client))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return s, mr
}

func TestPutGet(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "/run/object", []byte("hello")); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, err := s.Get(ctx, "/run/object")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Get = %q, want %q", got, "hello")
	}

	// The stored key is the brace wrapped path tail.
	if val, err := mr.Get("{/run/object}"); err != nil || val != "hello" {
		t.Errorf("stored under %v %q, want key {/run/object} = %q", err, val, "hello")
	}
}

func TestPutOverwrites(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "/k", []byte("first")); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := s.Put(ctx, "/k", []byte("second")); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, err := s.Get(ctx, "/k")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Get = %q, want %q", got, "second")
	}
}

func TestAppend(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	// Append creates the key if absent.
	if err := s.Append(ctx, "/log", []byte("a")); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := s.Append(ctx, "/log", []byte("b")); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	got, err := s.Get(ctx, "/log")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got) != "ab" {
		t.Errorf("Get = %q, want %q", got, "ab")
	}
}

func TestGetRange(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "/data", []byte("0123456789")); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	tests := []struct {
		name string
		opts []datastore.GetOption
		want string
	}{
		{"whole value", nil, "0123456789"},
		{"offset only", []datastore.GetOption{datastore.WithOffset(2)}, "23456789"},
		{"offset and size", []datastore.GetOption{datastore.WithOffset(2), datastore.WithSize(3)}, "234"},
		{"size only", []datastore.GetOption{datastore.WithSize(4)}, "0123"},
		{"size past the end", []datastore.GetOption{datastore.WithOffset(8), datastore.WithSize(10)}, "89"},
		{"offset past the end", []datastore.GetOption{datastore.WithOffset(100)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Get(ctx, "/data", tt.opts...)
			if err != nil {
				t.Fatalf("Get error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Get = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetMissingKey(t *testing.T) {
	s, _ := newTestStore(t)

	got, err := s.Get(context.Background(), "/nothing/here")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Get = %q, want empty", got)
	}
}

func TestGetInvalidArguments(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		opts []datastore.GetOption
	}{
		{"negative offset", []datastore.GetOption{datastore.WithOffset(-1)}},
		{"zero size", []datastore.GetOption{datastore.WithSize(0)}},
		{"negative size", []datastore.GetOption{datastore.WithSize(-5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Get(ctx, "/data", tt.opts...); !errors.Is(err, datastore.ErrInvalidArgument) {
				t.Errorf("Get error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestStatNotImplemented(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.Stat(context.Background(), "/k"); !errors.Is(err, datastore.ErrNotImplemented) {
		t.Errorf("Stat error = %v, want ErrNotImplemented", err)
	}
}

func TestListDir(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"/a/x", "/a/y", "/a/sub/z", "/b/z"} {
		if err := s.Put(ctx, key, []byte("v")); err != nil {
			t.Fatalf("Put(%q) error: %v", key, err)
		}
	}

	tests := []struct {
		key  string
		want []string
	}{
		{"/a/", []string{"/a/sub/z", "/a/x", "/a/y"}},
		{"/a", []string{"/a/sub/z", "/a/x", "/a/y"}},
		{"/b/", []string{"/b/z"}},
		{"/c/", nil},
	}

	for _, tt := range tests {
		got, err := s.ListDir(ctx, tt.key)
		if err != nil {
			t.Fatalf("ListDir(%q) error: %v", tt.key, err)
		}
		sort.Strings(got)
		if len(got) != len(tt.want) {
			t.Errorf("ListDir(%q) = %v, want %v", tt.key, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ListDir(%q) = %v, want %v", tt.key, got, tt.want)
				break
			}
		}
	}
}

func TestRm(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "/a/x", []byte("v")); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := s.Rm(ctx, "/a/x"); err != nil {
		t.Fatalf("Rm error: %v", err)
	}
	got, err := s.Get(ctx, "/a/x")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Get after Rm = %q, want empty", got)
	}

	// Removing an absent key is a no-op.
	if err := s.Rm(ctx, "/a/x"); err != nil {
		t.Errorf("Rm of absent key error: %v", err)
	}
}

func TestRmRecursive(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"/a/x", "/a/y", "/b/z"} {
		if err := s.Put(ctx, key, []byte("v")); err != nil {
			t.Fatalf("Put(%q) error: %v", key, err)
		}
	}
	// Staged spark artifacts live under a prefixed copy of the same keys.
	for _, key := range []string{"_spark:{/a/x}", "_spark:{/b/z}"} {
		if err := mr.Set(key, "staged"); err != nil {
			t.Fatalf("Set(%q) error: %v", key, err)
		}
	}

	if err := s.Rm(ctx, "/a/", datastore.WithRecursive()); err != nil {
		t.Fatalf("Rm error: %v", err)
	}

	left, err := s.ListDir(ctx, "/a/")
	if err != nil {
		t.Fatalf("ListDir error: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("keys left under /a/ after recursive Rm: %v", left)
	}
	if mr.Exists("_spark:{/a/x}") {
		t.Error("spark key under /a/ survived recursive Rm")
	}
	if !mr.Exists("{/b/z}") {
		t.Error("recursive Rm of /a/ deleted /b/z")
	}
	if !mr.Exists("_spark:{/b/z}") {
		t.Error("recursive Rm of /a/ deleted the spark key of /b/z")
	}
}

func TestRmMaxDepthNotImplemented(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	err := s.Rm(ctx, "/a/", datastore.WithRecursive(), datastore.WithMaxDepth(2))
	if !errors.Is(err, datastore.ErrNotImplemented) {
		t.Errorf("Rm error = %v, want ErrNotImplemented", err)
	}
}

func TestUpload(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	// Larger than two read chunks, so the append loop runs more than once.
	content := make([]byte, 2*uploadChunkSize+1234)
	for i := range content {
		content[i] = byte(i % 251)
	}
	src := filepath.Join(t.TempDir(), "artifact.bin")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	if err := s.Upload(ctx, "/artifacts/model", src); err != nil {
		t.Fatalf("Upload error: %v", err)
	}
	got, err := s.Get(ctx, "/artifacts/model")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("Get returned %d bytes, want %d matching bytes", len(got), len(content))
	}
}

func TestUploadMissingFile(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.Upload(context.Background(), "/k", filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Error("Upload of a missing file did not fail")
	}
}
