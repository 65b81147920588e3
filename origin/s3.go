package origin

import (
	"context"
	"edgeresizer/shared/apperror"
	"errors"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"net/http"
	"net/url"
	"strings"
)

type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func NewS3Client(cfg S3Config) (*s3.S3, error) {
	awsConfig := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.Endpoint != ""),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	awsSession, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}

	return s3.New(awsSession), nil
}

// fetchS3 reads s3://bucket/key sources.
func (f *Fetcher) fetchS3(ctx context.Context, src *url.URL) ([]byte, error) {
	if f.s3 == nil {
		return nil, apperror.InvalidParameter("src", ErrS3Disabled)
	}

	bucket := src.Host
	key := strings.TrimPrefix(src.Path, "/")
	if bucket == "" || key == "" {
		return nil, apperror.InvalidParameter("src", errors.New("s3 source must be s3://bucket/key"))
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	out, err := f.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s3Error(err)
	}
	defer out.Body.Close()

	if f.maxBytes > 0 && out.ContentLength != nil && *out.ContentLength > f.maxBytes {
		return nil, apperror.OriginTooLarge(f.maxBytes)
	}

	return f.readLimited(out.Body)
}

func s3Error(err error) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
			return apperror.OriginFetchFailed(http.StatusNotFound)
		}
	}

	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() != 0 {
		return apperror.OriginFetchFailed(reqErr.StatusCode())
	}

	return apperror.OriginUnreachable(err)
}
