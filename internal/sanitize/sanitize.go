// Package sanitize normalizes and validates network names. A name ends up in
// file names, MCP resource URIs, DOT graph labels and HTML page titles, so
// only a conservative character set is accepted.
package sanitize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxNameLength is the maximum allowed length for a network name.
const MaxNameLength = 64

// ErrInvalidName is returned by ValidateNetworkName.
var ErrInvalidName = errors.New("invalid network name")

var (
	reRepeatedHyphens     = regexp.MustCompile(`-{2,}`)
	reRepeatedUnderscores = regexp.MustCompile(`_{2,}`)
	reRepeatedDots        = regexp.MustCompile(`\.{2,}`)
)

// NetworkName turns arbitrary input into a usable network name. Whitespace
// becomes '-', characters outside [a-zA-Z0-9._-] are dropped, runs of '-',
// '_' and '.' collapse to one, leading dots are removed and the result is
// truncated to MaxNameLength. It may return "".
func NetworkName(input string) string {
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range stripControlChars(strings.TrimSpace(input)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteRune('-')
		}
	}
	s := b.String()

	s = reRepeatedHyphens.ReplaceAllString(s, "-")
	s = reRepeatedUnderscores.ReplaceAllString(s, "_")
	s = reRepeatedDots.ReplaceAllString(s, ".")
	s = strings.TrimLeft(s, ".")

	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}
	return s
}

// ValidateNetworkName reports whether name is already in normalized form.
// Errors wrap ErrInvalidName and suggest the normalized spelling when one
// exists.
func ValidateNetworkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: %d characters exceeds the limit of %d", ErrInvalidName, len(name), MaxNameLength)
	}
	clean := NetworkName(name)
	if clean == name {
		return nil
	}
	if clean == "" {
		return fmt.Errorf("%w: %q has no usable characters", ErrInvalidName, name)
	}
	return fmt.Errorf("%w: %q (try %q)", ErrInvalidName, name, clean)
}

// stripControlChars removes ASCII control characters other than tab.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r < 0x20 && r != '\t') || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
