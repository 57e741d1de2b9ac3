package langquery

import (
	"context"
	"fmt"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// ScopeMatch is one match of a scope_queries pattern: a named, nestable
// lexical region.
type ScopeMatch struct {
	Name      string
	StartByte uint32
	EndByte   uint32
	StartLine int // 1-indexed
	EndLine   int // 1-indexed
}

// TokenMatch is one match of a token_queries pattern: a symbol definition
// or reference at a specific line.
type TokenMatch struct {
	Name    string
	Text    string
	Line    int // 1-indexed
	Defines bool
}

// ParsedFile is the output of parsing one file's content against its
// language's registered queries.
type ParsedFile struct {
	Path     string
	Language string
	Source   []byte
	Scopes   []ScopeMatch
	Tokens   []TokenMatch
}

var keywordSets = map[string]map[string]bool{
	"go": setOf("break", "case", "chan", "const", "continue", "default", "defer",
		"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
		"interface", "map", "package", "range", "return", "select", "struct",
		"switch", "type", "var"),
	"python": setOf("False", "None", "True", "and", "as", "assert", "async",
		"await", "break", "class", "continue", "def", "del", "elif", "else",
		"except", "finally", "for", "from", "global", "if", "import", "in",
		"is", "lambda", "nonlocal", "not", "or", "pass", "raise", "return",
		"try", "while", "with", "yield"),
	"javascript": setOf("break", "case", "catch", "class", "const", "continue",
		"debugger", "default", "delete", "do", "else", "export", "extends",
		"finally", "for", "function", "if", "import", "in", "instanceof",
		"new", "return", "super", "switch", "this", "throw", "try",
		"typeof", "var", "void", "while", "with", "let", "yield"),
}

func init() {
	keywordSets["typescript"] = keywordSets["javascript"]
}

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Parse parses content as language and evaluates every registered scope and
// token query against the resulting tree.
func (r *Registry) Parse(ctx context.Context, language, path string, content []byte) (*ParsedFile, error) {
	entry, err := r.entry(language)
	if err != nil {
		return nil, err
	}

	tsParser, ok := entry.parserPool.Get().(*sitter.Parser)
	if !ok {
		return nil, fmt.Errorf("langquery: parser pool returned wrong type for %s", language)
	}
	defer entry.parserPool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParseFailed, path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, fmt.Errorf("%w: %s: empty tree", ErrParseFailed, path)
	}

	pf := &ParsedFile{Path: path, Language: language, Source: content}

	for _, sq := range entry.scopeQueries {
		matches := runScopeQuery(sq, root, content)
		pf.Scopes = append(pf.Scopes, matches...)
	}

	keywords := keywordSets[language]

	for _, tq := range entry.tokenQueries {
		matches := runTokenQuery(tq, root, content, keywords)
		pf.Tokens = append(pf.Tokens, matches...)
	}

	return pf, nil
}

func runScopeQuery(cq compiledQuery, root sitter.Node, source []byte) []ScopeMatch {
	cursor := sitter.NewQueryCursor()
	iter := cursor.Matches(cq.query, root, source)

	var out []ScopeMatch

	for {
		match := iter.Next()
		if match == nil {
			break
		}

		for _, cap := range match.Captures {
			node := cap.Node
			if node.IsNull() {
				continue
			}

			start, end := node.StartPoint(), node.EndPoint()
			out = append(out, ScopeMatch{
				Name:      cq.name,
				StartByte: node.StartByte(),
				EndByte:   node.EndByte(),
				StartLine: int(start.Row) + 1,
				EndLine:   int(end.Row) + 1,
			})
		}
	}

	return out
}

func runTokenQuery(cq compiledQuery, root sitter.Node, source []byte, keywords map[string]bool) []TokenMatch {
	cursor := sitter.NewQueryCursor()
	iter := cursor.Matches(cq.query, root, source)

	var out []TokenMatch

	for {
		match := iter.Next()
		if match == nil {
			break
		}

		for _, cap := range match.Captures {
			node := cap.Node
			if node.IsNull() {
				continue
			}

			text := node.Content(source)

			if applyFilters(cq.filters, text, keywords) {
				continue
			}

			start := node.StartPoint()
			out = append(out, TokenMatch{
				Name: cq.name, Text: text, Line: int(start.Row) + 1, Defines: cq.defines,
			})
		}
	}

	return out
}

// applyFilters reports whether a candidate token should be dropped.
func applyFilters(filters []TokenFilter, text string, keywords map[string]bool) bool {
	for _, f := range filters {
		switch f {
		case FilterExcludeKeywords:
			if keywords != nil && keywords[text] {
				return true
			}
		case FilterExcludeStringLiterals:
			if len(text) >= 2 && (text[0] == '"' || text[0] == '\'' || text[0] == '`') {
				return true
			}
		}
	}

	return false
}
