package image

import "fmt"

// Format is an output encoding the proxy can negotiate.
type Format struct {
	s    string
	mime string
}

var (
	JPEG = Format{"jpeg", "image/jpeg"}
	WEBP = Format{"webp", "image/webp"}
	AVIF = Format{"avif", "image/avif"}
)

func (f Format) String() string {
	return f.s
}

func (f Format) MIME() string {
	return f.mime
}

func MakeFromString(s string) (Format, error) {
	switch s {
	case JPEG.s, "jpg":
		return JPEG, nil
	case WEBP.s:
		return WEBP, nil
	case AVIF.s:
		return AVIF, nil
	}

	return Format{}, fmt.Errorf("unknown format: %s", s)
}
