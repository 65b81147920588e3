package image

import "strings"

// preference lists formats from most to least bandwidth efficient. JPEG is the universal fallback.
var preference = []Format{AVIF, WEBP}

// AcceptedFormats returns the formats advertised in an Accept header value in preference
// order, always terminated by JPEG. It is a plain substring match, q-values are ignored.
func AcceptedFormats(accept string) []Format {
	accept = strings.ToLower(accept)

	formats := make([]Format, 0, len(preference)+1)
	for _, f := range preference {
		if strings.Contains(accept, f.mime) {
			formats = append(formats, f)
		}
	}

	return append(formats, JPEG)
}
