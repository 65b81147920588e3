package format

import (
	"bytes"
	"image"
	"image/png"
)

// pngBytes is the lossless hand-off used when a codec only accepts encoded input.
func pngBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer

	enc := png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
