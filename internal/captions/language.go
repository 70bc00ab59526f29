package captions

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"cutroom/internal/services"
)

// NormalizeLanguage canonicalizes a BCP 47 language tag, so "EN-us" becomes
// "en-US". Unparseable tags are rejected.
func NormalizeLanguage(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "captions", "normalize language", "language tag is empty", nil)
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "captions", "normalize language",
			fmt.Sprintf("unrecognized language tag %q", trimmed), err)
	}
	return tag.String(), nil
}

// LanguageName returns the English display name for a normalized tag, or
// the tag itself when no name is known.
func LanguageName(value string) string {
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return value
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return value
}
