package filesystem

import (
	"net/url"
	"strings"
)

// ResolvePath converts a file:// URI to a local path. Bare paths pass
// through unchanged; percent-escapes in URIs are decoded.
func ResolvePath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	rest := strings.TrimPrefix(uri, "file://")
	if decoded, err := url.PathUnescape(rest); err == nil {
		return decoded
	}
	return rest
}
