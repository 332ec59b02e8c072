package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds construction parameters for the S3 gateway.
type S3Config struct {
	Region          string
	Bucket          string
	Prefix          string // object key prefix, e.g. "library/"
	Endpoint        string // optional; enables a custom endpoint (MinIO)
	AccessKeyID     string // optional (falls back to default credentials chain)
	SecretAccessKey string
	PathStyle       bool
}

// S3Gateway stores each collection as one JSON object in a single bucket.
type S3Gateway struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Gateway creates an S3 gateway from cfg.
func NewS3Gateway(ctx context.Context, cfg S3Config) (*S3Gateway, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3GatewayWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3GatewayWithClient(client *s3.Client, bucket, prefix string) *S3Gateway {
	return &S3Gateway{client: client, bucket: bucket, prefix: prefix}
}

func (g *S3Gateway) objectKey(key string) string {
	return g.prefix + key + ".json"
}

func (g *S3Gateway) Load(ctx context.Context, key string) ([]byte, bool, error) {
	objKey := g.objectKey(key)
	out, err := g.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &g.bucket, Key: &objKey})
	if err != nil {
		if isS3NotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get object %s: %w", objKey, err)
	}
	defer out.Body.Close()
	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read object %s: %w", objKey, err)
	}
	return payload, true, nil
}

// Save overwrites the object for key.
func (g *S3Gateway) Save(ctx context.Context, key string, payload []byte) error {
	objKey := g.objectKey(key)
	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &g.bucket,
		Key:         &objKey,
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", objKey, err)
	}
	return nil
}

// priorObject is the content an object had before a batch overwrote it.
type priorObject struct {
	key     string
	payload []byte
	found   bool
}

// SaveBatch writes entries in order. S3 has no multi-object transaction, so
// when a write fails the objects already written are put back as they were.
func (g *S3Gateway) SaveBatch(ctx context.Context, entries []Entry) error {
	var written []priorObject
	for _, e := range entries {
		prev, found, err := g.Load(ctx, e.Key)
		if err != nil {
			g.restore(ctx, written)
			return err
		}
		if err := g.Save(ctx, e.Key, e.Payload); err != nil {
			g.restore(ctx, written)
			return err
		}
		written = append(written, priorObject{key: e.Key, payload: prev, found: found})
	}
	return nil
}

func (g *S3Gateway) restore(ctx context.Context, written []priorObject) {
	for i := len(written) - 1; i >= 0; i-- {
		p := written[i]
		if p.found {
			_ = g.Save(ctx, p.key, p.payload)
			continue
		}
		objKey := g.objectKey(p.key)
		_, _ = g.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &g.bucket, Key: &objKey})
	}
}

func (g *S3Gateway) Close() error { return nil }

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var status interface{ HTTPStatusCode() int }
	if errors.As(err, &status) && status.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return strings.Contains(err.Error(), "NoSuchKey")
}
