// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage implements the template store on S3-compatible object
// storage. Each template is one JSON object under a configurable key prefix.
// The client is configured for path-style access so it works against local
// emulators as well as hosted providers.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/panjf2000/ants/v2"

	"pagestore/internal/models"
	"pagestore/internal/store"
)

const contentTypeJSON = "application/json"

// objectAPI is the subset of the S3 client the store uses.
type objectAPI interface {
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, opts ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Config holds the connection settings for the blob store.
type Config struct {
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
	Bucket     string
	Prefix     string
	MaxRetries int
	RetryDelay time.Duration
	Workers    int
}

// BlobStore is an object-storage-backed store.Store.
type BlobStore struct {
	api        objectAPI
	bucket     string
	prefix     string
	maxRetries int
	retryDelay time.Duration
	pool       *ants.Pool
	logger     *slog.Logger

	bucketMu    sync.Mutex
	bucketReady bool
}

var _ store.Store = (*BlobStore)(nil)

// New creates a blob store with static credentials and path-style
// addressing. The bucket is created lazily on the first write.
func New(cfg Config) (*BlobStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("blob store requires endpoint, access key and secret key")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(strings.TrimRight(cfg.Endpoint, "/")),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})
	return newBlobStore(client, cfg)
}

func newBlobStore(api objectAPI, cfg Config) (*BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("blob store requires a bucket name")
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create fetch pool: %w", err)
	}

	return &BlobStore{
		api:        api,
		bucket:     cfg.Bucket,
		prefix:     cfg.Prefix,
		maxRetries: maxRetries,
		retryDelay: cfg.RetryDelay,
		pool:       pool,
		logger:     slog.Default().With("component", "blob-store", "bucket", cfg.Bucket),
	}, nil
}

// Close releases the fetch worker pool.
func (b *BlobStore) Close() error {
	b.pool.Release()
	return nil
}

func (b *BlobStore) key(id string) string {
	return b.prefix + id + ".json"
}

// ensureBucket creates the bucket once per process. A bucket that already
// exists counts as success.
func (b *BlobStore) ensureBucket(ctx context.Context) error {
	b.bucketMu.Lock()
	defer b.bucketMu.Unlock()
	if b.bucketReady {
		return nil
	}

	err := b.retry(ctx, func() error {
		_, err := b.api.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(b.bucket)})
		return err
	})
	var owned *s3types.BucketAlreadyOwnedByYou
	var exists *s3types.BucketAlreadyExists
	if err != nil && !errors.As(err, &owned) && !errors.As(err, &exists) {
		return fmt.Errorf("create bucket %s: %w", b.bucket, err)
	}
	b.bucketReady = true
	return nil
}

// Put uploads the template as a single object. The upload replaces any
// previous object atomically.
func (b *BlobStore) Put(ctx context.Context, t *models.PageTemplate) error {
	if err := b.ensureBucket(ctx); err != nil {
		return err
	}

	body, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode template %s: %w", t.ID, err)
	}

	key := b.key(t.ID)
	err = b.retry(ctx, func() error {
		_, err := b.api.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(b.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(body),
			ContentLength: aws.Int64(int64(len(body))),
			ContentType:   aws.String(contentTypeJSON),
			Metadata:      objectMetadata(t),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", b.bucket, key, err)
	}
	return nil
}

// Get downloads and decodes one template. A missing object yields nil.
func (b *BlobStore) Get(ctx context.Context, id string) (*models.PageTemplate, error) {
	if err := b.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return b.fetch(ctx, b.key(id))
}

func (b *BlobStore) fetch(ctx context.Context, key string) (*models.PageTemplate, error) {
	var data []byte
	err := b.retry(ctx, func() error {
		out, err := b.api.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		defer out.Body.Close()
		data, err = io.ReadAll(out.Body)
		return err
	})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("s3 get %s/%s: %w", b.bucket, key, err)
	}

	var t models.PageTemplate
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &t, nil
}

// List enumerates the prefix and downloads every template concurrently on
// the fetch pool.
func (b *BlobStore) List(ctx context.Context) ([]*models.PageTemplate, error) {
	keys, err := b.listKeys(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*models.PageTemplate, len(keys))
	errs := make([]error, len(keys))
	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		err := b.pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = b.fetch(ctx, key)
		})
		if err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submit fetch %s: %w", key, err)
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	templates := make([]*models.PageTemplate, 0, len(results))
	for _, t := range results {
		// Deleted between listing and fetching.
		if t != nil {
			templates = append(templates, t)
		}
	}
	store.SortByRecent(templates)
	return templates, nil
}

func (b *BlobStore) listKeys(ctx context.Context) ([]string, error) {
	if err := b.ensureBucket(ctx); err != nil {
		return nil, err
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(b.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.prefix),
	})
	for paginator.HasMorePages() {
		var page *s3.ListObjectsV2Output
		err := b.retry(ctx, func() error {
			var err error
			page, err = paginator.NextPage(ctx)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("s3 list %s/%s: %w", b.bucket, b.prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, ".json") {
				keys = append(keys, key)
			}
		}
	}
	return keys, nil
}

// Delete removes the template's object. It reports false when the object
// did not exist.
func (b *BlobStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := b.ensureBucket(ctx); err != nil {
		return false, err
	}
	key := b.key(id)

	err := b.retry(ctx, func() error {
		_, err := b.api.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(key),
		})
		return err
	})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("s3 head %s/%s: %w", b.bucket, key, err)
	}

	err = b.retry(ctx, func() error {
		_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(key),
		})
		return err
	})
	if err != nil {
		return false, fmt.Errorf("s3 delete %s/%s: %w", b.bucket, key, err)
	}
	return true, nil
}

// objectMetadata exposes a few fields as object metadata so templates can be
// inspected without downloading the body. Values are URL-escaped because S3
// metadata only carries ASCII.
func objectMetadata(t *models.PageTemplate) map[string]string {
	return map[string]string{
		"name":     url.QueryEscape(t.Name),
		"category": url.QueryEscape(t.Category),
		"tags":     url.QueryEscape(strings.Join(t.Tags, ",")),
		"version":  url.QueryEscape(t.Version),
	}
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	// The bucket was removed behind our back; nothing in it exists.
	var noBucket *s3types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}
