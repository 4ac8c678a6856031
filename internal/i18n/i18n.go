// Package i18n holds the translation tables for user-facing text:
// report headings, CLI chrome and email bodies. Parser diagnostics are
// not translated; their wording is part of the processing contract.
package i18n

import "fmt"

// DefaultLang is used when a request names no language.
const DefaultLang = "en"

var translations = map[string]map[string]string{
	"en": englishTranslations,
	"es": spanishTranslations,
	"fa": persianTranslations,
}

var languageNames = map[string]string{
	"en": "English",
	"es": "Español",
	"fa": "فارسی",
}

// Supported returns the bundled language codes in stable order.
func Supported() []string {
	return []string{"en", "es", "fa"}
}

// Known reports whether code names a bundled language.
func Known(code string) bool {
	_, ok := translations[code]
	return ok
}

// Name returns the display name of a language code.
func Name(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// T returns the translation for key in lang, falling back to English
// and finally to the key itself.
func T(lang, key string) string {
	if table, ok := translations[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := englishTranslations[key]; ok {
		return msg
	}
	return key
}

// Tf is T with fmt.Sprintf applied to the result.
func Tf(lang, key string, args ...any) string {
	return fmt.Sprintf(T(lang, key), args...)
}
