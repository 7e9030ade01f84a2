package api

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	filenameStarPattern   = regexp.MustCompile(`(?i)filename\*\s*=\s*utf-8''([^;]+)`)
	filenameQuotedPattern = regexp.MustCompile(`(?i)(?:^|;)\s*filename\s*=\s*"([^"]*)"`)
	filenamePlainPattern  = regexp.MustCompile(`(?i)(?:^|;)\s*filename\s*=\s*([^;"]+)`)
)

// FilenameFromDisposition extracts the file name from a Content-Disposition
// header. The RFC 5987 filename* parameter wins over plain filename and
// both are percent-decoded. fallback is returned when neither is present.
func FilenameFromDisposition(header, fallback string) string {
	if header == "" {
		return fallback
	}

	if m := filenameStarPattern.FindStringSubmatch(header); m != nil {
		if name := decodeFilename(m[1]); name != "" {
			return name
		}
	}
	if m := filenameQuotedPattern.FindStringSubmatch(header); m != nil {
		if name := decodeFilename(m[1]); name != "" {
			return name
		}
	}
	if m := filenamePlainPattern.FindStringSubmatch(header); m != nil {
		if name := decodeFilename(m[1]); name != "" {
			return name
		}
	}
	return fallback
}

func decodeFilename(raw string) string {
	raw = strings.TrimSpace(raw)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
