package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/bootsteps/errors"
)

func indexOf(t *testing.T, order []string, node string) int {
	t.Helper()
	for i, n := range order {
		if n == node {
			return i
		}
	}
	t.Fatalf("node %s not in order %v", node, order)
	return -1
}

func TestTopsortDependenciesFirst(t *testing.T) {
	g := New()
	g.Add("pool", "connection")
	g.Add("connection")
	g.Add("consumer", "connection", "pool")

	order, err := g.Topsort()
	require.NoError(t, err)
	require.Len(t, order, 3)

	assert.Less(t, indexOf(t, order, "connection"), indexOf(t, order, "pool"))
	assert.Less(t, indexOf(t, order, "pool"), indexOf(t, order, "consumer"))
}

func TestTopsortInsertionOrderBreaksTies(t *testing.T) {
	g := New()
	g.Add("c")
	g.Add("a")
	g.Add("b")

	order, err := g.Topsort()
	require.NoError(t, err)

	// No edges at all: the order is exactly insertion order.
	assert.Equal(t, []string{"c", "a", "b"}, order)
}

func TestTopsortDeterministic(t *testing.T) {
	build := func() *DependencyGraph {
		g := New()
		g.Add("a")
		g.Add("b", "a")
		g.Add("c", "a")
		g.Add("d", "b", "c")
		g.Add("e")
		return g
	}

	first, err := build().Topsort()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := build().Topsort()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestTopsortCycle(t *testing.T) {
	g := New()
	g.Add("a", "b")
	g.Add("b", "a")

	order, err := g.Topsort()
	require.Error(t, err)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, errors.ErrDependencyCycle)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Contains(t, cycleErr.Path, "a")
	assert.Contains(t, cycleErr.Path, "b")
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")
}

func TestTopsortLongerCycleNamesParticipants(t *testing.T) {
	g := New()
	g.Add("a", "c")
	g.Add("b", "a")
	g.Add("c", "b")
	g.Add("standalone")

	_, err := g.Topsort()
	require.Error(t, err)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.NotContains(t, cycleErr.Path, "standalone")
	assert.Subset(t, cycleErr.Path, []string{"a", "b", "c"})
	// The path closes on its entry node.
	assert.Equal(t, cycleErr.Path[0], cycleErr.Path[len(cycleErr.Path)-1])
}

func TestTopsortUnknownDependency(t *testing.T) {
	g := New()
	g.Add("a", "ghost")

	_, err := g.Topsort()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownDependency)

	var unknownErr *UnknownDependencyError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "a", unknownErr.Node)
	assert.Equal(t, "ghost", unknownErr.Requires)
}

func TestAddEdge(t *testing.T) {
	g := New()
	g.Add("a")
	g.Add("b")

	require.NoError(t, g.AddEdge("b", "a"))
	order, err := g.Topsort()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)

	assert.ErrorIs(t, g.AddEdge("b", "ghost"), errors.ErrUnknownNode)
	assert.ErrorIs(t, g.AddEdge("ghost", "a"), errors.ErrUnknownNode)
}

func TestAddEdgePinsLast(t *testing.T) {
	g := New()
	g.Add("gateway")
	g.Add("a")
	g.Add("b", "a")

	// Force gateway after every other node, regardless of its own
	// insertion position.
	for _, node := range g.Nodes() {
		if node != "gateway" {
			require.NoError(t, g.AddEdge("gateway", node))
		}
	}

	order, err := g.Topsort()
	require.NoError(t, err)
	assert.Equal(t, "gateway", order[len(order)-1])
}

func TestNodes(t *testing.T) {
	g := New()
	g.Add("b")
	g.Add("a")
	g.Add("b", "a") // re-adding appends dependencies, not nodes

	assert.Equal(t, []string{"b", "a"}, g.Nodes())
	assert.Equal(t, 2, g.Len())
}
