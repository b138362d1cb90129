package imageformat

import (
	"bytes"
	"errors"
)

// Format is a supported image encoding.
type Format int

const (
	Unknown Format = iota
	JPEG
	PNG
	GIF
	WEBP
)

// ErrUnsupportedFormat is returned when no known signature matches.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var (
	jpegMagic  = []byte{0xFF, 0xD8}
	pngMagic   = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	gif87Magic = []byte("GIF87a")
	gif89Magic = []byte("GIF89a")
	riffMagic  = []byte("RIFF")
	webpMagic  = []byte("WEBP")
)

// String returns the short encoding name used in provider payloads.
func (f Format) String() string {
	switch f {
	case JPEG:
		return "jpeg"
	case PNG:
		return "png"
	case GIF:
		return "gif"
	case WEBP:
		return "webp"
	default:
		return "unknown"
	}
}

// MIMEType returns the image/* media type for f.
func (f Format) MIMEType() string {
	if f == Unknown {
		return "application/octet-stream"
	}
	return "image/" + f.String()
}

// Detect inspects the leading bytes of b. Signatures are checked in the order
// JPEG, PNG, GIF, WEBP and the first match wins.
func Detect(b []byte) (Format, error) {
	if len(b) < len(jpegMagic) {
		return Unknown, ErrUnsupportedFormat
	}
	switch {
	case bytes.HasPrefix(b, jpegMagic):
		return JPEG, nil
	case bytes.HasPrefix(b, pngMagic):
		return PNG, nil
	case bytes.HasPrefix(b, gif87Magic), bytes.HasPrefix(b, gif89Magic):
		return GIF, nil
	case len(b) >= 12 && bytes.HasPrefix(b, riffMagic) && bytes.Equal(b[8:12], webpMagic):
		return WEBP, nil
	}
	return Unknown, ErrUnsupportedFormat
}
