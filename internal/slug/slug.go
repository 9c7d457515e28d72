// Package slug validates the path segments that address a union homepage.
package slug

import "regexp"

const (
	MinLength = 2
	MaxLength = 50
)

var (
	reSlug      = regexp.MustCompile(`^[A-Za-z0-9_-]{2,50}$`)
	reLowercase = regexp.MustCompile(`^[a-z0-9-]{2,}$`)
)

// Rule is a slug predicate. Handlers are built with the rule they enforce.
type Rule func(candidate string) bool

// Valid is the gateway rule: letters of either case, digits, hyphen and
// underscore, between MinLength and MaxLength characters.
func Valid(candidate string) bool {
	return reSlug.MatchString(candidate)
}

// ValidLowercase is the older board-route rule: lowercase letters, digits and
// hyphen, at least two characters and no upper bound.
func ValidLowercase(candidate string) bool {
	return reLowercase.MatchString(candidate)
}
