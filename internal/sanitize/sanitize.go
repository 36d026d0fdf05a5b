// Package sanitize strips unsafe markup from user supplied rich text.
package sanitize

import "github.com/microcosm-cc/bluemonday"

// policy is safe for concurrent use once built.
var policy = bluemonday.UGCPolicy()

// Ingredients returns html with scripts, styles, event handlers and unsafe
// URLs removed. Formatting and structural markup is preserved.
func Ingredients(html string) string {
	return policy.Sanitize(html)
}
