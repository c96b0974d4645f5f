package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client is the subset of the S3 API the store uses. *s3.Client
// satisfies it; tests substitute a fake.
type S3Client interface {
	manager.UploadAPIClient

	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store streams uploads into an S3 bucket. The upload manager
// splits the stream into parts as it arrives, so the file is never
// held in memory as a whole.
type S3Store struct {
	client   S3Client
	uploader *manager.Uploader
	bucket   string
	prefix   string // base folder inside the bucket, may be empty
	region   string
	log      *slog.Logger
}

// NewS3Store creates an S3Store writing under prefix in bucket.
func NewS3Store(client S3Client, bucket, prefix, region string, log *slog.Logger) *S3Store {
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
		region:   region,
		log:      log,
	}
}

// Put streams r to the object named by key and returns the object's
// URL as reported by the backend. On failure the manager aborts its
// in-flight multipart upload and Put additionally deletes the key, so
// no partial object survives an aborted stream.
func (s *S3Store) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	objectKey := s.objectKey(key)

	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		// The delete must run even when ctx was the aborted
		// request's context.
		if rmErr := s.Remove(context.WithoutCancel(ctx), key); rmErr != nil {
			s.log.Warn("failed to remove partial object", "key", objectKey, "error", rmErr)
		}
		return "", fmt.Errorf("s3 upload of %q: %w", objectKey, err)
	}

	if out.Location != "" {
		return out.Location, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectKey), nil
}

// Remove deletes the object named by key.
func (s *S3Store) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	return err
}

// RemovePad deletes every object stored under the pad's key prefix.
func (s *S3Store) RemovePad(ctx context.Context, padID string) error {
	prefix := s.objectKey(padID) + "/"

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list pad objects %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				return fmt.Errorf("delete %q: %w", *obj.Key, err)
			}
		}
	}
	return nil
}

func (s *S3Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}
