package langquery

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const goSample = `package sample

func Add(a, b int) int {
	return a + b
}

func Sub(a, b int) int {
	return a - b
}
`

func TestParseGoSource(t *testing.T) {
	reg := NewDefaultRegistry()

	pf, err := reg.Parse(context.Background(), "go", "sample.go", []byte(goSample))
	require.NoError(t, err)
	require.NotNil(t, pf)
	require.NotEmpty(t, pf.Scopes)
	require.NotEmpty(t, pf.Tokens)

	var funcNames []string
	for _, tok := range pf.Tokens {
		if tok.Name == "func_name" {
			funcNames = append(funcNames, tok.Text)
		}
	}
	require.ElementsMatch(t, []string{"Add", "Sub"}, funcNames)
}

func TestDetectLanguageByExtension(t *testing.T) {
	reg := NewDefaultRegistry()

	lang, ok := reg.DetectLanguage("foo/bar.py", []byte("def f():\n    pass\n"))
	require.True(t, ok)
	require.Equal(t, "python", lang)
}

func TestLoadConfigValidation(t *testing.T) {
	bad := `{"language": "go"}`
	_, err := LoadConfig(strings.NewReader(bad))
	require.Error(t, err)
}
