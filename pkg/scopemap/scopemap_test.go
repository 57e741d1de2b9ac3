package scopemap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildAndLCA(t *testing.T) {
	inputs := []ScopeInput{
		{Name: "class", Start: 1, End: 20},
		{Name: "method", Start: 3, End: 8},
		{Name: "method", Start: 10, End: 18},
		{Name: "block", Start: 4, End: 6},
	}

	forest := Build(inputs)
	require.Len(t, forest.Nodes, 4)

	id := forest.LCA(5, 5)
	require.Equal(t, "block", forest.Nodes[id].Name)
	require.Equal(t, []string{"class", "method", "block"}, forest.AncestorChain(id))

	id2 := forest.LCA(12, 12)
	require.Equal(t, "method", forest.Nodes[id2].Name)

	idRoot := forest.LCA(25, 25)
	require.Equal(t, RootID, idRoot)
}
