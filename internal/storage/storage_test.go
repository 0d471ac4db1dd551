package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

func TestFileStorePutOpen(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	n, err := store.Put(ctx, "/generated/videos/a.mp4", "video/mp4", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != int64(len("payload")) {
		t.Fatalf("size mismatch: %d", n)
	}
	if _, err := os.Stat(filepath.Join(store.BasePath(), "generated", "videos", "a.mp4")); err != nil {
		t.Fatalf("file not written: %v", err)
	}

	rc, err := store.Open(ctx, "generated/videos/a.mp4")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "payload" {
		t.Fatalf("content mismatch: %q", data)
	}
}

func TestFileStoreOpenMissing(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())
	if _, err := store.Open(context.Background(), "missing.mp4"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSanitizeKey(t *testing.T) {
	valid := map[string]string{
		"a/b.mp4":      "a/b.mp4",
		"./a/../b.mp4": "b.mp4",
		"\\a\\b.mp4":   "a/b.mp4",
	}
	for in, want := range valid {
		got, err := sanitizeKey(in)
		if err != nil || got != want {
			t.Fatalf("sanitizeKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", "  ", "../etc/passwd", "a/../../b", ".."} {
		if _, err := sanitizeKey(in); err == nil {
			t.Fatalf("sanitizeKey(%q) expected error", in)
		}
	}
}

type stubS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func (s *stubS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := s.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "missing"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (s *stubS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	s.objects[aws.ToString(in.Key)] = data
	s.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorePutOpen(t *testing.T) {
	stub := &stubS3{objects: map[string][]byte{}, types: map[string]string{}}
	store, err := NewS3Store(stub, "bucket", "media")
	if err != nil {
		t.Fatalf("NewS3Store: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Put(ctx, "generated/videos/a.mp4", "video/mp4", strings.NewReader("vid")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := stub.objects["media/generated/videos/a.mp4"]; !ok {
		t.Fatalf("object stored under wrong key: %v", stub.objects)
	}
	if stub.types["media/generated/videos/a.mp4"] != "video/mp4" {
		t.Fatal("content type not forwarded")
	}

	rc, err := store.Open(ctx, "generated/videos/a.mp4")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "vid" {
		t.Fatalf("content mismatch: %q", data)
	}

	if _, err := store.Open(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewS3StoreValidation(t *testing.T) {
	if _, err := NewS3Store(nil, "b", ""); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewS3Store(&stubS3{}, "", ""); err == nil {
		t.Fatal("expected error for empty bucket")
	}
}
