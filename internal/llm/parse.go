package llm

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"docextract-api/internal/imageformat"
	"docextract-api/internal/shared/apperr"
)

// MaxParseBytes bounds the brace scan over model output.
const MaxParseBytes = 64 << 10

// ParseFields decodes model output into Fields. It tries the whole content
// first, then the span between the first '{' and the last '}'. When both fail
// it returns the empty template if fallback is set and ErrUnparseable
// otherwise. Missing template keys are backfilled with "".
func ParseFields(content string, fallback bool) (Fields, error) {
	content = strings.TrimSpace(content)

	fields, ok := decodeObject(content)
	if !ok && len(content) <= MaxParseBytes {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start >= 0 && end > start {
			fields, ok = decodeObject(content[start : end+1])
		}
	}
	if !ok {
		if !fallback {
			return nil, ErrUnparseable
		}
		fields = Template()
	}
	return Backfill(fields), nil
}

// Backfill sets every missing template key to "".
func Backfill(fields Fields) Fields {
	if fields == nil {
		fields = Fields{}
	}
	for _, k := range TemplateKeys {
		if _, ok := fields[k]; !ok {
			fields[k] = ""
		}
	}
	return fields
}

func decodeObject(s string) (Fields, bool) {
	if s == "" {
		return nil, false
	}
	var out Fields
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

// EncodeImage sniffs the image format and returns the base64 payload.
func EncodeImage(b []byte) (imageformat.Format, string, error) {
	format, err := imageformat.Detect(b)
	if err != nil {
		return imageformat.Unknown, "", apperr.Wrap(apperr.KindInvalidInput, "unsupported image format", err)
	}
	return format, base64.StdEncoding.EncodeToString(b), nil
}
