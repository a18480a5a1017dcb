package validators

import (
	"regexp"
	"strings"
)

var htmlTags = regexp.MustCompile(`<[^>]*>`)

// SanitizeString strips markup and collapses surrounding whitespace. Field
// content is stored verbatim otherwise; escaping is the renderer's job.
func SanitizeString(value string) string {
	value = htmlTags.ReplaceAllString(value, "")
	return strings.TrimSpace(value)
}
