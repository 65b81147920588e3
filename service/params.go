package service

import (
	"edgeresizer/api/model"
	img "edgeresizer/converter/image"
	"edgeresizer/shared/apperror"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultQuality = 80
	MinQuality     = 1
	MaxQuality     = 100
)

var (
	ErrNotAbsolute       = errors.New("must be an absolute URL")
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	ErrNotPositive       = errors.New("must be a positive integer")
)

// ResolveRequest validates a query and Accept header. Out-of-range quality is
// rejected, never clamped. maxWidth <= 0 disables the width cap.
func ResolveRequest(q model.ImageQuery, accept string, maxWidth int) (model.TransformRequest, error) {
	src := strings.TrimSpace(q.Src)
	if src == "" {
		return model.TransformRequest{}, apperror.MissingParameter("src")
	}

	rawWidth := strings.TrimSpace(q.Width)
	if rawWidth == "" {
		return model.TransformRequest{}, apperror.MissingParameter("w")
	}

	width, err := strconv.Atoi(rawWidth)
	if err != nil || width <= 0 {
		return model.TransformRequest{}, apperror.InvalidParameter("w", ErrNotPositive)
	}
	if maxWidth > 0 && width > maxWidth {
		return model.TransformRequest{}, apperror.InvalidParameter("w", fmt.Errorf("must not exceed %d", maxWidth))
	}

	quality := DefaultQuality
	if rawQuality := strings.TrimSpace(q.Quality); rawQuality != "" {
		quality, err = strconv.Atoi(rawQuality)
		if err != nil || quality < MinQuality || quality > MaxQuality {
			return model.TransformRequest{}, apperror.InvalidParameter("q", fmt.Errorf("must be an integer in [%d,%d]", MinQuality, MaxQuality))
		}
	}

	sourceURL, err := parseSource(src)
	if err != nil {
		return model.TransformRequest{}, apperror.InvalidParameter("src", err)
	}

	return model.TransformRequest{
		SourceURL:       sourceURL,
		Width:           width,
		Quality:         quality,
		Accept:          accept,
		AcceptedFormats: img.AcceptedFormats(accept),
	}, nil
}

func parseSource(src string) (*url.URL, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, ErrNotAbsolute
	}

	switch u.Scheme {
	case "http", "https", "s3":
		return u, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
}
