package langquery

import "errors"

var (
	// ErrUnsupportedLanguage is returned when a config names a language
	// this build has no go-sitter-forest grammar for.
	ErrUnsupportedLanguage = errors.New("langquery: unsupported language")
	// ErrUnregisteredLanguage is returned when a language was never
	// registered via Registry.Register.
	ErrUnregisteredLanguage = errors.New("langquery: language not registered")
	// ErrParseFailed marks a non-fatal per-file parse failure: the caller
	// should demote the affected chunk's signature to nil rather than abort
	// the pipeline, per the ParseError contract.
	ErrParseFailed = errors.New("langquery: parse failed")
)
