package classify

import "strings"

// DefaultExtension is used when the declared media type is absent or unknown.
const DefaultExtension = "png"

var extensionsByMediaType = map[string]string{
	"image/png": "png",
}

// ExtensionFor maps a declared media type to a file extension. matched is
// false when the default was used, so callers can tell the two apart even
// though both currently yield "png".
func ExtensionFor(mediaType string) (ext string, matched bool) {
	key := strings.ToLower(strings.TrimSpace(mediaType))
	if ext, ok := extensionsByMediaType[key]; ok {
		return ext, true
	}
	return DefaultExtension, false
}
