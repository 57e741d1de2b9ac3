package langquery

import (
	"path/filepath"

	enry "github.com/src-d/enry/v2"
)

// enryToConfigName maps enry's canonical language names to this registry's
// config language keys, which follow go-sitter-forest's lowercase naming.
var enryToConfigName = map[string]string{
	"Go":         "go",
	"Python":     "python",
	"JavaScript": "javascript",
	"TypeScript": "typescript",
}

// DetectLanguage resolves a file's language, first by extension against the
// registry, then by content sniffing via enry for extension-less scripts or
// ambiguous/ shebang-driven files, matching the fallback chain spec.md
// describes for the Parser & Query Manager.
func (r *Registry) DetectLanguage(path string, content []byte) (string, bool) {
	ext := filepath.Ext(path)

	if lang, ok := r.ForExtension(ext); ok {
		return lang, true
	}

	guess := enry.GetLanguage(filepath.Base(path), content)
	if guess == "" {
		return "", false
	}

	if lang, ok := enryToConfigName[guess]; ok {
		if _, registered := r.byLanguage[lang]; registered {
			return lang, true
		}
	}

	return "", false
}

// IsProbablyBinary reports whether content looks like a non-text file,
// short-circuiting language detection and parsing entirely — mirrors the
// heuristic enry itself applies before classifying a file.
func IsProbablyBinary(content []byte) bool {
	return enry.IsBinary(content)
}
