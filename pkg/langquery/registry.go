package langquery

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	golang "github.com/alexaandru/go-sitter-forest/go"
	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/python"
	"github.com/alexaandru/go-sitter-forest/typescript"
)

// languageFuncs maps a config's "language" name to the grammar constructor
// shipped by go-sitter-forest. Mirrors the teacher's per-language import
// table, narrowed to the languages this module ships queries for; adding a
// language means adding one import and one map entry, the same as upstream.
var languageFuncs = map[string]func() unsafe.Pointer{
	"go":         golang.GetLanguage,
	"python":     python.GetLanguage,
	"javascript": javascript.GetLanguage,
	"typescript": typescript.GetLanguage,
}

var (
	languageCache sync.Map // string -> *sitter.Language
)

// getGrammar returns the tree-sitter Language for name, initializing and
// caching it on first use so a run that only touches one language never
// pays the init cost for the others.
func getGrammar(name string) (*sitter.Language, error) {
	if cached, ok := languageCache.Load(name); ok {
		lang, _ := cached.(*sitter.Language)
		return lang, nil
	}

	fn, ok := languageFuncs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, name)
	}

	lang := sitter.NewLanguage(fn())
	languageCache.Store(name, lang)

	return lang, nil
}

// compiledQuery is a query pattern already parsed against a language.
type compiledQuery struct {
	name    string
	defines bool
	filters []TokenFilter
	query   *sitter.Query
}

// langEntry is a fully-loaded language: its grammar plus its compiled scope
// and token queries, registered lazily and cached for reuse across files.
type langEntry struct {
	cfg          LanguageConfig
	grammar      *sitter.Language
	scopeQueries []compiledQuery
	tokenQueries []compiledQuery

	parserPool sync.Pool
}

// Registry holds every LanguageConfig the caller registered, lazily
// compiling tree-sitter queries the first time a language is actually
// needed to parse a file.
type Registry struct {
	mu         sync.Mutex
	byLanguage map[string]*langEntry
	byExt      map[string]*langEntry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byLanguage: make(map[string]*langEntry),
		byExt:      make(map[string]*langEntry),
	}
}

// Register adds a validated LanguageConfig. Grammar and query compilation
// are deferred to first use (see lazy init note on pkg/uast/loader.go's
// loadFromEmbeddedMappingsLazy, which this mirrors).
func (r *Registry) Register(cfg *LanguageConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &langEntry{cfg: *cfg}
	r.byLanguage[cfg.Language] = entry

	for _, ext := range cfg.Extensions {
		r.byExt[strings.ToLower(ext)] = entry
	}
}

// ForExtension returns the registered language for a file extension
// (including the leading dot), or false if none is configured.
func (r *Registry) ForExtension(ext string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.byExt[strings.ToLower(ext)]
	if !ok {
		return "", false
	}

	return entry.cfg.Language, true
}

// Languages returns every registered language name.
func (r *Registry) Languages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.byLanguage))
	for name := range r.byLanguage {
		names = append(names, name)
	}

	return names
}

func (r *Registry) entry(language string) (*langEntry, error) {
	r.mu.Lock()
	entry, ok := r.byLanguage[language]
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnregisteredLanguage, language)
	}

	if err := r.ensureCompiled(entry); err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *Registry) ensureCompiled(entry *langEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.grammar != nil {
		return nil
	}

	grammar, err := getGrammar(entry.cfg.Language)
	if err != nil {
		return err
	}

	entry.grammar = grammar

	for _, sq := range entry.cfg.ScopeQueries {
		q, err := sitter.NewQuery(grammar, []byte(sq.Pattern))
		if err != nil {
			return fmt.Errorf("compile scope query %s/%s: %w", entry.cfg.Language, sq.Name, err)
		}
		entry.scopeQueries = append(entry.scopeQueries, compiledQuery{name: sq.Name, query: q})
	}

	for _, tq := range entry.cfg.TokenQueries {
		q, err := sitter.NewQuery(grammar, []byte(tq.Pattern))
		if err != nil {
			return fmt.Errorf("compile token query %s/%s: %w", entry.cfg.Language, tq.Name, err)
		}
		entry.tokenQueries = append(entry.tokenQueries, compiledQuery{
			name: tq.Name, defines: tq.Defines, filters: tq.Filters, query: q,
		})
	}

	entry.parserPool = sync.Pool{
		New: func() any {
			p := sitter.NewParser()
			p.SetLanguage(grammar)
			return p
		},
	}

	return nil
}
