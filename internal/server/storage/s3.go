package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// S3Config describes an S3-compatible endpoint (AWS or MinIO).
type S3Config struct {
	User         string
	Password     string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// s3API is the part of *s3.Client the store relies on.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps blobs as objects of one bucket, keyed by StoredFile.Key().
type S3Store struct {
	client    s3API
	presigner *s3.PresignClient
	bucket    string
}

// NewS3Store builds a client with static credentials and a custom base
// endpoint.
func NewS3Store(ctx context.Context, c S3Config) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.User,
			c.Password,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, presigner: newS3PresignClient(client), bucket: c.Bucket}, nil
}

// Put uploads the object with If-None-Match: * so an existing key is never
// replaced.
func (s *S3Store) Put(ctx context.Context, file models.StoredFile, r io.Reader, size int64, contentType string) (int64, error) {
	key := file.Key()
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		IfNoneMatch: aws.String("*"),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		if hasErrorCode(err, "PreconditionFailed", "ConditionalRequestConflict") {
			return 0, common.ErrorAlreadyExists
		}
		return 0, fmt.Errorf("put object %s: %w", key, err)
	}
	return size, nil
}

func (s *S3Store) Get(ctx context.Context, file models.StoredFile) (io.ReadCloser, models.ObjectInfo, error) {
	key := file.Key()
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, models.ObjectInfo{}, common.ErrorNotFound
		}
		return nil, models.ObjectInfo{}, fmt.Errorf("get object %s: %w", key, err)
	}

	return out.Body, objectInfo(file, out.ContentLength, out.ContentType, out.LastModified), nil
}

func (s *S3Store) Stat(ctx context.Context, file models.StoredFile) (models.ObjectInfo, error) {
	key := file.Key()
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return models.ObjectInfo{}, common.ErrorNotFound
		}
		return models.ObjectInfo{}, fmt.Errorf("head object %s: %w", key, err)
	}
	return objectInfo(file, out.ContentLength, out.ContentType, out.LastModified), nil
}

// Delete relies on S3 semantics: deleting a missing key succeeds.
func (s *S3Store) Delete(ctx context.Context, file models.StoredFile) error {
	key := file.Key()
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// PresignGet returns a GET URL for the object valid for ttl.
func (s *S3Store) PresignGet(ctx context.Context, file models.StoredFile, ttl time.Duration) (string, error) {
	if s.presigner == nil {
		return "", errors.New("presign client is not configured")
	}
	req, err := presignGetObject(s.presigner, ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(file.Key()),
		ResponseContentDisposition: aws.String("filename=" + file.SaveName),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func objectInfo(file models.StoredFile, size *int64, contentType *string, modTime *time.Time) models.ObjectInfo {
	return models.ObjectInfo{
		File:        file,
		Size:        aws.ToInt64(size),
		ContentType: aws.ToString(contentType),
		ModTime:     aws.ToTime(modTime),
	}
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	return hasErrorCode(err, "NoSuchKey", "NotFound")
}

func hasErrorCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, c := range codes {
		if apiErr.ErrorCode() == c {
			return true
		}
	}
	return false
}
