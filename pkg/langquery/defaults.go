package langquery

// DefaultConfigs returns a baseline LanguageConfig per built-in grammar,
// covering the common scope/token shapes (functions, classes/types,
// identifiers) well enough to exercise the pipeline without a
// caller-supplied query file. Production callers are expected to supply
// their own, richer configs via LoadConfig; these exist so the module is
// useful out of the box and so tests don't need fixture files on disk.
func DefaultConfigs() []*LanguageConfig {
	return []*LanguageConfig{
		{
			Language:   "go",
			Extensions: []string{".go"},
			ScopeQueries: []ScopeQuery{
				{Name: "function", Pattern: "(function_declaration) @scope"},
				{Name: "method", Pattern: "(method_declaration) @scope"},
				{Name: "type", Pattern: "(type_declaration) @scope"},
			},
			TokenQueries: []TokenQuery{
				{Name: "func_name", Pattern: "(function_declaration name: (identifier) @token)", Defines: true},
				{Name: "type_name", Pattern: "(type_spec name: (type_identifier) @token)", Defines: true},
				{Name: "identifier", Pattern: "(identifier) @token", Filters: []TokenFilter{FilterExcludeKeywords}},
			},
		},
		{
			Language:   "python",
			Extensions: []string{".py"},
			ScopeQueries: []ScopeQuery{
				{Name: "function", Pattern: "(function_definition) @scope"},
				{Name: "class", Pattern: "(class_definition) @scope"},
			},
			TokenQueries: []TokenQuery{
				{Name: "func_name", Pattern: "(function_definition name: (identifier) @token)", Defines: true},
				{Name: "class_name", Pattern: "(class_definition name: (identifier) @token)", Defines: true},
				{Name: "identifier", Pattern: "(identifier) @token", Filters: []TokenFilter{FilterExcludeKeywords}},
			},
		},
		{
			Language:   "javascript",
			Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
			ScopeQueries: []ScopeQuery{
				{Name: "function", Pattern: "(function_declaration) @scope"},
				{Name: "class", Pattern: "(class_declaration) @scope"},
				{Name: "method", Pattern: "(method_definition) @scope"},
			},
			TokenQueries: []TokenQuery{
				{Name: "func_name", Pattern: "(function_declaration name: (identifier) @token)", Defines: true},
				{Name: "class_name", Pattern: "(class_declaration name: (identifier) @token)", Defines: true},
				{Name: "identifier", Pattern: "(identifier) @token", Filters: []TokenFilter{FilterExcludeKeywords}},
			},
		},
		{
			Language:   "typescript",
			Extensions: []string{".ts", ".tsx"},
			ScopeQueries: []ScopeQuery{
				{Name: "function", Pattern: "(function_declaration) @scope"},
				{Name: "class", Pattern: "(class_declaration) @scope"},
				{Name: "interface", Pattern: "(interface_declaration) @scope"},
				{Name: "method", Pattern: "(method_definition) @scope"},
			},
			TokenQueries: []TokenQuery{
				{Name: "func_name", Pattern: "(function_declaration name: (identifier) @token)", Defines: true},
				{Name: "class_name", Pattern: "(class_declaration name: (type_identifier) @token)", Defines: true},
				{Name: "identifier", Pattern: "(identifier) @token", Filters: []TokenFilter{FilterExcludeKeywords}},
			},
		},
	}
}

// NewDefaultRegistry returns a Registry with DefaultConfigs already
// registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, cfg := range DefaultConfigs() {
		r.Register(cfg)
	}
	return r
}
