package image

import (
	"edgeresizer/converter/image/format"
	"fmt"
	"github.com/h2non/bimg"
	"go.uber.org/zap"
	"strings"
)

const (
	AvifEncoderVips = "vips"
	AvifEncoderAom  = "aom"
)

// vipsSavesAvif reports whether the linked libvips was built with heif save support.
var vipsSavesAvif = func() bool {
	return bimg.IsTypeSupportedSave(bimg.AVIF)
}

type Strategy struct {
	m map[Format]Encoder
}

// MustStrategy builds the encoder table. avifEncoder selects libvips ("vips") or libaom ("aom");
// a libvips without avif support falls back to libaom. formats restricts the table, JPEG is always
// present. No formats means all of them.
func MustStrategy(avifEncoder string, logger *zap.Logger, formats ...Format) *Strategy {
	enabled := map[Format]bool{JPEG: true}
	if len(formats) == 0 {
		formats = []Format{AVIF, WEBP}
	}
	for _, f := range formats {
		enabled[f] = true
	}

	m := map[Format]Encoder{JPEG: format.MustJpeg(logger)}
	if enabled[WEBP] {
		m[WEBP] = format.MustWebp(logger)
	}
	if enabled[AVIF] {
		m[AVIF] = mustAvifEncoder(avifEncoder, logger)
	}

	return &Strategy{m: m}
}

func mustAvifEncoder(avifEncoder string, logger *zap.Logger) Encoder {
	switch avifEncoder {
	case AvifEncoderVips, "":
		if vipsSavesAvif() {
			return format.MustAvif(logger)
		}
		logger.Warn("libvips cannot save avif, using libaom encoder")
		return format.MustAvifAom(logger)
	case AvifEncoderAom:
		return format.MustAvifAom(logger)
	}

	panic(fmt.Sprintf("unknown avif encoder: %s", avifEncoder))
}

// Apply returns the encoder for f, falling back to JPEG.
func (s *Strategy) Apply(f Format) Encoder {
	if e, ok := s.m[f]; ok {
		return e
	}
	return s.m[JPEG]
}

// Pick returns the first of accepted that has an encoder, or JPEG.
func (s *Strategy) Pick(accepted []Format) Format {
	for _, f := range accepted {
		if _, ok := s.m[f]; ok {
			return f
		}
	}
	return JPEG
}

// ParseFormats reads a comma separated list such as "avif,webp,jpeg".
func ParseFormats(list string) ([]Format, error) {
	var formats []Format
	for _, part := range strings.Split(list, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}

		f, err := MakeFromString(part)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}

	if len(formats) == 0 {
		return nil, fmt.Errorf("no output formats in %q", list)
	}
	return formats, nil
}
