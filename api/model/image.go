package model

import (
	img "edgeresizer/converter/image"
	"io"
	"net/url"
)

// ImageQuery is the raw query string of a transform request.
type ImageQuery struct {
	Src     string `query:"src"`
	Width   string `query:"w"`
	Quality string `query:"q"`
}

// TransformRequest is a validated transform request.
type TransformRequest struct {
	SourceURL *url.URL
	Width     int
	Quality   int

	Accept          string
	AcceptedFormats []img.Format
}

type ImageResponse struct {
	Type          string
	Format        string
	ContentLength int64
	Width         int
	Height        int

	Body io.Reader
}
