package project

import (
	"path"
	"strings"
)

type SourceLanguage string

const (
	LanguageRust    SourceLanguage = "rust"
	LanguagePython  SourceLanguage = "python"
	LanguageText    SourceLanguage = "text"
	LanguageUnknown SourceLanguage = "unknown"
)

// DetectLanguage classifies a file by extension. C sources are reported as text
// but still take part in the concatenated project source.
func DetectLanguage(name string) SourceLanguage {
	switch Extension(name) {
	case "rs":
		return LanguageRust
	case "py":
		return LanguagePython
	case "txt", "c":
		return LanguageText
	default:
		return LanguageUnknown
	}
}

// IsConcatenated reports whether a file contributes to the concatenated project source.
func IsConcatenated(name string, lang SourceLanguage) bool {
	switch lang {
	case LanguageRust, LanguagePython:
		return true
	case LanguageText:
		return Extension(name) == "c"
	}
	return false
}

// Extension returns the extension of a slash-separated name without its dot, or "" when there is none.
func Extension(name string) string {
	return strings.TrimPrefix(path.Ext(name), ".")
}
