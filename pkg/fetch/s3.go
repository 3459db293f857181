package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/fanout/pkg/async"
)

// S3Client defines the S3 operations used by the S3 fetcher.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config contains the settings needed to build an S3 client.
type S3Config struct {
	Region         string `env:"FETCH_S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"FETCH_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"FETCH_S3_SECRET_KEY"`
	Endpoint       string `env:"FETCH_S3_ENDPOINT"`         // Optional: for S3-compatible services
	ForcePathStyle bool   `env:"FETCH_S3_FORCE_PATH_STYLE"` // For S3-compatible services like MinIO
	MaxBodyBytes   int64  `env:"FETCH_S3_MAX_BODY_BYTES" envDefault:"10485760"`
}

// NewS3Client builds an *s3.Client from cfg. Static credentials are used when
// both key fields are set; otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	awsOptions := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		awsOptions = append(awsOptions,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretKey,
				"",
			)),
		)
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToLoadConfig, err)
	}

	return s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}), nil
}

// S3 fetches objects from S3 or an S3-compatible store. It is safe for concurrent use.
type S3 struct {
	client       S3Client
	maxBodyBytes int64
}

// NewS3 wraps client. maxBodyBytes <= 0 selects DefaultMaxBodyBytes.
func NewS3(client S3Client, maxBodyBytes int64) *S3 {
	return &S3{client: client, maxBodyBytes: maxBodyBytes}
}

// Object returns an operation that downloads bucket/key.
// A missing object fails with KindNotFound; other API errors with KindStatus.
func (s *S3) Object(bucket, key string) async.Operation[Body] {
	target := "s3://" + bucket + "/" + key

	return func(ctx context.Context) (Body, error) {
		if bucket == "" || key == "" {
			return Body{}, newError(KindInvalidTarget, target, errors.New("bucket and key are required"))
		}

		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return Body{}, classifyS3Error(target, err)
		}
		defer out.Body.Close()

		data, err := readLimited(target, out.Body, s.maxBodyBytes)
		if err != nil {
			return Body{}, err
		}

		return Body{
			Target:      target,
			ContentType: aws.ToString(out.ContentType),
			Data:        data,
		}, nil
	}
}

func classifyS3Error(target string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return newError(KindConnection, target, err)
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return newError(KindNotFound, target, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return newError(KindNotFound, target, err)
		default:
			return newError(KindStatus, target, err)
		}
	}

	return newError(KindConnection, target, err)
}
