package assets

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Config holds the settings for an S3-compatible object store.
type S3Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// S3Backend writes objects into a single S3 bucket, using the site bucket
// name as the key prefix.
type S3Backend struct {
	api    s3iface.S3API
	bucket string
}

// NewS3Backend creates a session for cfg and returns a backend over it.
func NewS3Backend(cfg S3Config) (*S3Backend, error) {
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.PathStyle),
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 session: %w", err)
	}
	return NewS3BackendWithAPI(s3.New(sess), cfg.Bucket), nil
}

// NewS3BackendWithAPI wraps an existing S3 client.
func NewS3BackendWithAPI(api s3iface.S3API, bucket string) *S3Backend {
	return &S3Backend{api: api, bucket: bucket}
}

func (b *S3Backend) key(bucket, path string) string {
	return bucket + "/" + path
}

// Put implements Backend.
func (b *S3Backend) Put(ctx context.Context, bucket, path string, data []byte, contentType string, upsert bool) error {
	key := b.key(bucket, path)
	if !upsert {
		exists, err := b.exists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%s: %w", key, ErrObjectExists)
		}
	}
	_, err := b.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(b.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=3600"),
		ACL:          aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (b *S3Backend) exists(ctx context.Context, key string) (bool, error) {
	_, err := b.api.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if reqErr, ok := err.(awserr.RequestFailure); ok && reqErr.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	if aerr, ok := err.(awserr.Error); ok && (aerr.Code() == "NotFound" || aerr.Code() == s3.ErrCodeNoSuchKey) {
		return false, nil
	}
	return false, fmt.Errorf("head object %s: %w", key, err)
}

// Remove implements Backend with a single DeleteObjects call.
func (b *S3Backend) Remove(ctx context.Context, bucket string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	ids := make([]*s3.ObjectIdentifier, 0, len(paths))
	for _, p := range paths {
		ids = append(ids, &s3.ObjectIdentifier{Key: aws.String(b.key(bucket, p))})
	}
	out, err := b.api.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(b.bucket),
		Delete: &s3.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("delete objects: %w", err)
	}
	if len(out.Errors) > 0 {
		e := out.Errors[0]
		return fmt.Errorf("delete %s: %s", aws.StringValue(e.Key), aws.StringValue(e.Message))
	}
	return nil
}
