// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package sync

import (
	"context"
	"crypto/md5" //nolint:gosec // the frame API identifies blobs by MD5
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"

	"github.com/tomtom215/aurasync/internal/config"
	"github.com/tomtom215/aurasync/internal/logging"
)

// BlobStore uploads media files where the frame service can fetch them.
type BlobStore interface {
	// Upload stores the file at path under a fresh name ending in ext and
	// returns that name with the hex MD5 of the content.
	Upload(ctx context.Context, path, ext string) (filename, md5hex string, err error)
}

// ReadinessQueue is the frame service's out of band signal between upload
// steps. Wait blocks for at most the configured wait and never retries; it is
// a best-effort pause, not a barrier.
type ReadinessQueue interface {
	Wait(ctx context.Context) error
}

// LoadAWSConfig builds the AWS configuration used by the S3 and SQS clients.
// Static keys are used when both are configured, otherwise the default
// credential chain applies.
func LoadAWSConfig(ctx context.Context, cfg config.AuraConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.HasStaticCredentials() {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return awsCfg, nil
}

// s3PutObjectAPI is the slice of *s3.Client the blob store uses.
type s3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3BlobStore uploads blobs to the frame service's S3 bucket.
type S3BlobStore struct {
	client s3PutObjectAPI
	bucket string
	newKey func() string
}

var _ BlobStore = (*S3BlobStore)(nil)

// NewS3BlobStore creates a store for cfg.S3Bucket. A configured S3 endpoint
// switches to path-style addressing, which S3-compatible servers expect.
func NewS3BlobStore(awsCfg aws.Config, cfg config.AuraConfig) *S3BlobStore {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3BlobStore(client, cfg.S3Bucket)
}

func newS3BlobStore(client s3PutObjectAPI, bucket string) *S3BlobStore {
	return &S3BlobStore{
		client: client,
		bucket: bucket,
		newKey: func() string { return uuid.NewString() },
	}
}

// Upload implements BlobStore.
func (s *S3BlobStore) Upload(ctx context.Context, path, ext string) (string, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sum, size, err := md5File(f)
	if err != nil {
		return "", "", fmt.Errorf("hash %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("rewind %s: %w", path, err)
	}

	key := s.newKey() + ext
	start := time.Now()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(size),
		ContentMD5:    aws.String(base64.StdEncoding.EncodeToString(sum)),
	})
	if err != nil {
		return "", "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}

	logging.Debug().
		Str("bucket", s.bucket).
		Str("key", key).
		Int64("bytes", size).
		Dur("duration", time.Since(start)).
		Msg("Uploaded blob")
	return key, hex.EncodeToString(sum), nil
}

func md5File(r io.Reader) ([]byte, int64, error) {
	h := md5.New() //nolint:gosec // content hash, not a security boundary
	n, err := io.Copy(h, r)
	if err != nil {
		return nil, 0, err
	}
	return h.Sum(nil), n, nil
}

// sqsAPI is the slice of *sqs.Client the readiness queue uses.
type sqsAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
}

// SQSReadinessQueue long-polls the frame service's SQS queue once per Wait.
type SQSReadinessQueue struct {
	client    sqsAPI
	queueName string
	wait      time.Duration

	mu       sync.Mutex
	queueURL string
}

var _ ReadinessQueue = (*SQSReadinessQueue)(nil)

// NewSQSReadinessQueue creates a queue for cfg.ReadinessQueue.
func NewSQSReadinessQueue(awsCfg aws.Config, cfg config.AuraConfig) *SQSReadinessQueue {
	return newSQSReadinessQueue(sqs.NewFromConfig(awsCfg), cfg.ReadinessQueue, cfg.ReadinessWait)
}

func newSQSReadinessQueue(client sqsAPI, queueName string, wait time.Duration) *SQSReadinessQueue {
	return &SQSReadinessQueue{client: client, queueName: queueName, wait: wait}
}

// resolveURL looks up the queue URL on first use and caches it.
func (q *SQSReadinessQueue) resolveURL(ctx context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.queueURL != "" {
		return q.queueURL, nil
	}

	out, err := q.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(q.queueName)})
	if err != nil {
		return "", fmt.Errorf("get queue url for %s: %w", q.queueName, err)
	}
	q.queueURL = aws.ToString(out.QueueUrl)
	return q.queueURL, nil
}

// Wait implements ReadinessQueue.
func (q *SQSReadinessQueue) Wait(ctx context.Context) error {
	queueURL, err := q.resolveURL(ctx)
	if err != nil {
		return err
	}

	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: 1,
		WaitTimeSeconds:     int32(q.wait / time.Second),
	})
	if err != nil {
		return fmt.Errorf("receive from %s: %w", q.queueName, err)
	}

	logging.Debug().Str("queue", q.queueName).Int("messages", len(out.Messages)).Msg("Readiness poll returned")
	return nil
}
