package storage

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
)

func TestSourceKey(t *testing.T) {
	if got := SourceKey("job-1"); got != "uploads/job-1/source" {
		t.Fatalf("unexpected source key %q", got)
	}
}

func TestNewClientRequiresBucket(t *testing.T) {
	if _, err := NewClient(Config{Endpoint: "localhost:9000", Access: "a", Secret: "b"}); err == nil {
		t.Fatal("expected error without bucket")
	}

	c, err := NewClient(Config{Endpoint: "localhost:9000", Access: "a", Secret: "b", Bucket: "jobs"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.Bucket() != "jobs" {
		t.Fatalf("expected bucket jobs, got %q", c.Bucket())
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}) {
		t.Fatal("expected NoSuchKey to be not found")
	}
	if isNotFound(minio.ErrorResponse{Code: "AccessDenied"}) {
		t.Fatal("expected AccessDenied to be a real error")
	}
	if isNotFound(errors.New("dial tcp: refused")) {
		t.Fatal("expected plain error to be a real error")
	}
}
