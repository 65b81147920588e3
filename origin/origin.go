package origin

import (
	"context"
	"edgeresizer/shared/apperror"
	"edgeresizer/shared/log"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"go.uber.org/zap"
	"io"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "edgeresizer/1.0"

var ErrS3Disabled = errors.New("s3 sources are not configured")

// Fetcher retrieves origin bytes. Every call goes to the origin; nothing is cached.
type Fetcher struct {
	client   *http.Client
	s3       s3iface.S3API
	timeout  time.Duration
	maxBytes int64
	logger   *zap.Logger
}

// NewFetcher builds a fetcher. s3Client may be nil, in which case s3:// sources are rejected.
func NewFetcher(timeout time.Duration, maxBytes int64, s3Client s3iface.S3API, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		s3:       s3Client,
		timeout:  timeout,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, src *url.URL) ([]byte, error) {
	logger := log.LoggerWithTrace(ctx, f.logger).With(zap.String("src", src.Redacted()))

	var (
		data []byte
		err  error
	)
	switch src.Scheme {
	case "s3":
		data, err = f.fetchS3(ctx, src)
	default:
		data, err = f.fetchHTTP(ctx, src)
	}
	if err != nil {
		// The request deadline, not the origin, cut the transfer short.
		if ctx.Err() != nil && apperror.IsKind(err, apperror.KindOriginUnreachable) {
			err = apperror.Timeout(fmt.Errorf("fetch origin: %w", ctx.Err()))
		}
		logger.Warn("Error fetching origin image", zap.Error(err))
		return nil, err
	}

	logger.Debug("Fetched origin image", zap.Int("bytes", len(data)))
	return data, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, src *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.String(), nil)
	if err != nil {
		return nil, apperror.InvalidParameter("src", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/*")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, apperror.OriginUnreachable(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, apperror.OriginFetchFailed(res.StatusCode)
	}

	if f.maxBytes > 0 && res.ContentLength > f.maxBytes {
		return nil, apperror.OriginTooLarge(f.maxBytes)
	}

	return f.readLimited(res.Body)
}

// readLimited reads at most maxBytes, reporting anything longer as too large.
func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	if f.maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, apperror.OriginUnreachable(fmt.Errorf("read origin body: %w", err))
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, apperror.OriginUnreachable(fmt.Errorf("read origin body: %w", err))
	}
	if int64(len(data)) > f.maxBytes {
		return nil, apperror.OriginTooLarge(f.maxBytes)
	}
	return data, nil
}
