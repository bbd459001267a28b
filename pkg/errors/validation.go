package errors

import (
	"net/url"
	"regexp"
	"unicode"
)

// blockTypeRegex matches block type keys such as "heading" or "acme/pricing-table".
var blockTypeRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*(/[a-z][a-z0-9-]*)?$`)

// ValidateBlockType validates a block type key.
//
// Type keys are lowercase, may contain digits and dashes, and may carry a
// single namespace prefix separated by a slash. They end up in HTML
// attributes and hook names, so the rules are intentionally conservative.
func ValidateBlockType(typ string) error {
	if typ == "" {
		return New(ErrCodeInvalidDefinition, "block type cannot be empty")
	}
	if len(typ) > 128 {
		return New(ErrCodeInvalidDefinition, "block type too long (max 128 characters)")
	}
	if !blockTypeRegex.MatchString(typ) {
		return New(ErrCodeInvalidDefinition, "invalid block type: %q", typ)
	}
	return nil
}

// ValidateBlockID validates a block instance identifier.
//
// Validation rules:
//   - ID cannot be empty
//   - Maximum length of 128 characters
//   - No control characters or whitespace
func ValidateBlockID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidBlock, "block id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidBlock, "block id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidBlock, "block id contains invalid characters: %q", id)
		}
	}
	return nil
}

// ValidateURL checks that rawURL is an absolute http or https URL with a
// host, such as the CDN base that asset URLs are rewritten to.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme: %q", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL has no host: %q", rawURL)
	}
	return nil
}
