package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// putObjectAPI is the part of the S3 client used for uploads
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage uploads objects to an S3 (or S3 compatible) bucket
type S3Storage struct {
	client    putObjectAPI
	bucket    string
	publicURL string
	debug     bool
}

// NewS3Storage loads the default AWS configuration and creates a client.
// A custom endpoint switches the client to path-style addressing.
func NewS3Storage(ctx context.Context, region, bucket, endpoint, publicURL string, debug bool) (*S3Storage, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	if publicURL == "" {
		if endpoint != "" {
			publicURL = strings.TrimSuffix(endpoint, "/") + "/" + bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
		}
	}

	log.Printf("Photo storage: s3 bucket=%s, region=%s", bucket, region)
	if debug {
		log.Printf("[DEBUG] S3 endpoint: %q, public URL: %s", endpoint, publicURL)
	}

	return newS3Storage(client, bucket, publicURL, debug), nil
}

func newS3Storage(client putObjectAPI, bucket, publicURL string, debug bool) *S3Storage {
	return &S3Storage{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		debug:     debug,
	}
}

// Put uploads the object and returns its public URL
func (s *S3Storage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	if err := CheckContentType(contentType); err != nil {
		return "", err
	}

	if s.debug {
		log.Printf("[DEBUG] S3 PutObject: bucket=%s, key=%s, size=%d", s.bucket, key, len(data))
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return s.publicURL + "/" + key, nil
}
