// Package langquery turns source files into parsed syntax trees and, via a
// JSON-configured set of tree-sitter queries, into the scope and token
// positions pkg/scopemap and pkg/symbolmap build on. Unlike a bespoke AST
// abstraction, the query patterns here are literal tree-sitter query
// expressions, so adding a language means writing queries, not a parser.
package langquery

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xeipuuv/gojsonschema"
)

// TokenFilter names a post-match filter applied to a token capture before
// it is recorded as a defined/extern symbol occurrence.
type TokenFilter string

const (
	// FilterExcludeKeywords drops captures whose text is a language keyword.
	FilterExcludeKeywords TokenFilter = "exclude_keywords"
	// FilterExcludeStringLiterals drops captures whose text begins with a
	// quote character, i.e. string/char literal tokens.
	FilterExcludeStringLiterals TokenFilter = "exclude_string_literals"
)

// ScopeQuery names a tree-sitter query whose matches delimit a named,
// nestable lexical scope (function, class, block, ...).
type ScopeQuery struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
}

// TokenQuery names a tree-sitter query whose matches are symbol
// definitions or references within whatever scope contains them.
type TokenQuery struct {
	Name    string        `json:"name"`
	Pattern string        `json:"pattern"`
	Filters []TokenFilter `json:"filters,omitempty"`
	// Defines, when true, marks matches as symbol definitions; otherwise
	// they are treated as external references (uses).
	Defines bool `json:"defines"`
}

// LanguageConfig is the JSON-configured query set for one language.
type LanguageConfig struct {
	Language                string       `json:"language"`
	Extensions              []string     `json:"extensions"`
	ShareTokensBetweenFiles bool         `json:"share_tokens_between_files"`
	ScopeQueries            []ScopeQuery `json:"scope_queries"`
	TokenQueries            []TokenQuery `json:"token_queries"`
}

// configSchema is the JSON Schema new LanguageConfig documents are
// validated against before being trusted by the query engine.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["language", "extensions", "scope_queries", "token_queries"],
  "properties": {
    "language": {"type": "string", "minLength": 1},
    "extensions": {"type": "array", "items": {"type": "string"}, "minItems": 1},
    "share_tokens_between_files": {"type": "boolean"},
    "scope_queries": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "pattern"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "pattern": {"type": "string", "minLength": 1}
        }
      }
    },
    "token_queries": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "pattern"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "pattern": {"type": "string", "minLength": 1},
          "defines": {"type": "boolean"},
          "filters": {
            "type": "array",
            "items": {"type": "string", "enum": ["exclude_keywords", "exclude_string_literals"]}
          }
        }
      }
    }
  }
}`

var compiledSchema *gojsonschema.Schema

func schema() (*gojsonschema.Schema, error) {
	if compiledSchema != nil {
		return compiledSchema, nil
	}

	loader := gojsonschema.NewStringLoader(configSchema)

	s, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("compile language-config schema: %w", err)
	}

	compiledSchema = s

	return compiledSchema, nil
}

// LoadConfig reads and validates a single language's JSON query
// configuration.
func LoadConfig(r io.Reader) (*LanguageConfig, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read language config: %w", err)
	}

	s, err := schema()
	if err != nil {
		return nil, err
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validate language config: %w", err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("invalid language config: %v", result.Errors())
	}

	var cfg LanguageConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode language config: %w", err)
	}

	return &cfg, nil
}
