// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package sync

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type fakeS3 struct {
	mu     sync.Mutex
	err    error
	inputs []*s3.PutObjectInput
	bodies [][]byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

type fakeSQS struct {
	mu       sync.Mutex
	urlErr   error
	recvErr  error
	lookups  int
	receives []*sqs.ReceiveMessageInput
}

func (f *fakeSQS) GetQueueUrl(_ context.Context, in *sqs.GetQueueUrlInput, _ ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.urlErr != nil {
		return nil, f.urlErr
	}
	return &sqs.GetQueueUrlOutput{QueueUrl: aws.String("https://sqs.test/123/" + aws.ToString(in.QueueName))}, nil
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receives = append(f.receives, in)
	if f.recvErr != nil {
		return nil, f.recvErr
	}
	return &sqs.ReceiveMessageOutput{Messages: []sqstypes.Message{{Body: aws.String("ready")}}}, nil
}

func TestS3BlobStore_Upload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	client := &fakeS3{}
	store := newS3BlobStore(client, "frame-bucket")
	store.newKey = func() string { return "key-1" }

	name, sum, err := store.Upload(context.Background(), path, ".jpg")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if name != "key-1.jpg" {
		t.Errorf("name = %q, want key-1.jpg", name)
	}
	// md5("hello")
	if sum != "5d41402abc4b2a76b9719d911017c592" {
		t.Errorf("md5 = %q", sum)
	}

	if len(client.inputs) != 1 {
		t.Fatalf("PutObject calls = %d, want 1", len(client.inputs))
	}
	in := client.inputs[0]
	if aws.ToString(in.Bucket) != "frame-bucket" || aws.ToString(in.Key) != "key-1.jpg" {
		t.Errorf("bucket/key = %s/%s", aws.ToString(in.Bucket), aws.ToString(in.Key))
	}
	if aws.ToInt64(in.ContentLength) != 5 {
		t.Errorf("content length = %d, want 5", aws.ToInt64(in.ContentLength))
	}
	if aws.ToString(in.ContentMD5) != "XUFAKrxLKna5cZ2REBfFkg==" {
		t.Errorf("content md5 = %q", aws.ToString(in.ContentMD5))
	}
	if string(client.bodies[0]) != "hello" {
		t.Errorf("body = %q, want the full file after hashing", client.bodies[0])
	}
}

func TestS3BlobStore_UniqueKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := newS3BlobStore(&fakeS3{}, "b")
	first, _, err := store.Upload(context.Background(), path, ".mp4")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	second, _, err := store.Upload(context.Background(), path, ".mp4")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if first == second {
		t.Errorf("keys collide: %q", first)
	}
	if !strings.HasSuffix(first, ".mp4") || len(first) != 36+len(".mp4") {
		t.Errorf("key = %q, want <uuid>.mp4", first)
	}
}

func TestS3BlobStore_Errors(t *testing.T) {
	t.Parallel()

	store := newS3BlobStore(&fakeS3{err: errors.New("access denied")}, "b")
	if _, _, err := store.Upload(context.Background(), filepath.Join(t.TempDir(), "missing"), ".jpg"); err == nil {
		t.Error("expected error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.Upload(context.Background(), path, ".jpg"); err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Errorf("Upload() error = %v, want the S3 error", err)
	}
}

func TestSQSReadinessQueue_Wait(t *testing.T) {
	t.Parallel()

	client := &fakeSQS{}
	queue := newSQSReadinessQueue(client, "frame-ready", 3*time.Second)

	for i := 0; i < 2; i++ {
		if err := queue.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}

	if client.lookups != 1 {
		t.Errorf("queue url lookups = %d, want 1 (cached)", client.lookups)
	}
	if len(client.receives) != 2 {
		t.Fatalf("receives = %d, want 2", len(client.receives))
	}
	in := client.receives[0]
	if aws.ToString(in.QueueUrl) != "https://sqs.test/123/frame-ready" {
		t.Errorf("queue url = %q", aws.ToString(in.QueueUrl))
	}
	if in.MaxNumberOfMessages != 1 || in.WaitTimeSeconds != 3 {
		t.Errorf("max/wait = %d/%d, want 1/3", in.MaxNumberOfMessages, in.WaitTimeSeconds)
	}
}

func TestSQSReadinessQueue_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		client *fakeSQS
	}{
		{"queue lookup", &fakeSQS{urlErr: errors.New("no such queue")}},
		{"receive", &fakeSQS{recvErr: errors.New("throttled")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			queue := newSQSReadinessQueue(tt.client, "frame-ready", time.Second)
			if err := queue.Wait(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}

	// a failed lookup is not cached
	client := &fakeSQS{urlErr: errors.New("no such queue")}
	queue := newSQSReadinessQueue(client, "frame-ready", time.Second)
	_ = queue.Wait(context.Background())
	client.urlErr = nil
	if err := queue.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() after recovery error = %v", err)
	}
	if client.lookups != 2 {
		t.Errorf("lookups = %d, want 2", client.lookups)
	}
}
