package api

import (
	"mime"
	"path"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
)

const maxFilenameLength = 255

// sanitizeFilename keeps only the base name of a client supplied filename
// and rejects names that cannot be used as the last object key segment.
func sanitizeFilename(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(path.Base(name))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", false
	}
	if len(name) > maxFilenameLength {
		return "", false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "", false
		}
	}
	return name, true
}

// resolveContentType trusts a parseable client header and sniffs the body
// otherwise.
func resolveContentType(header string, body []byte) string {
	if header != "" && header != "application/octet-stream" {
		if mediaType, params, err := mime.ParseMediaType(header); err == nil {
			return mime.FormatMediaType(mediaType, params)
		}
	}
	return mimetype.Detect(body).String()
}
