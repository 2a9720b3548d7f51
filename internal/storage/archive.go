// Package storage keeps copies of uploaded spreadsheets in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hshy1839/seongji-erp-server/internal/config"
)

// objectAPI is the part of the S3 client the archive uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Archive stores uploads under <prefix>/<resource>/<dayKey>/<sha256>.<ext>. Re-uploading the
// same bytes on the same day overwrites the same object.
type S3Archive struct {
	client objectAPI
	bucket string
	prefix string
}

func NewS3Archive(ctx context.Context, cfg *config.Config) (*S3Archive, error) {
	a := cfg.Archive
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(a.AccessKey, a.SecretKey, "")),
		awsconfig.WithRegion(a.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure S3 client: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if a.Endpoint != "" {
			o.BaseEndpoint = aws.String(a.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Archive{client: client, bucket: a.Bucket, prefix: a.Prefix}, nil
}

// ObjectKey is where an upload is kept.
func ObjectKey(prefix, resource, dayKey, filename string, data []byte) string {
	sum := sha256.Sum256(data)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		ext = "bin"
	}
	return path.Join(prefix, resource, dayKey, hex.EncodeToString(sum[:])+"."+ext)
}

func contentType(key string) string {
	switch path.Ext(key) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv"
	}
	return "application/octet-stream"
}

func (a *S3Archive) Archive(ctx context.Context, resource, dayKey, filename string, data []byte) (string, error) {
	key := ObjectKey(a.prefix, resource, dayKey, filename, data)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(key)),
		Metadata:    map[string]string{"filename": filepath.Base(filename)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", key, err)
	}
	return key, nil
}

// Object is one archived upload.
type Object struct {
	Key  string
	Size int64
}

// List returns the archived uploads of a resource, optionally narrowed to one day.
func (a *S3Archive) List(ctx context.Context, resource, dayKey string) ([]Object, error) {
	prefix := path.Join(a.prefix, resource, dayKey) + "/"
	var (
		out   []Object
		token *string
	)
	for {
		res, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(a.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		for _, obj := range res.Contents {
			out = append(out, Object{Key: aws.ToString(obj.Key), Size: aws.ToInt64(obj.Size)})
		}
		if !aws.ToBool(res.IsTruncated) {
			return out, nil
		}
		token = res.NextContinuationToken
	}
}
