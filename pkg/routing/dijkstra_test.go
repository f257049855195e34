package routing

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"street_map/pkg/graph"
)

// milesPerDegreeLat is the length of one degree of latitude for our Earth
// diameter.
const milesPerDegreeLat = 7917.82 * math.Pi / 360

// buildLine creates A --10mi-- B --5mi-- C along one meridian, plus an
// isolated node D.
func buildLine(t testing.TB) *graph.Graph {
	t.Helper()
	g, err := graph.Build(&graph.Input{
		Intersections: []graph.Intersection{
			{Name: "A", Lat: 43.0, Lon: -77.0},
			{Name: "B", Lat: 43.0 + 10/milesPerDegreeLat, Lon: -77.0},
			{Name: "C", Lat: 43.0 + 15/milesPerDegreeLat, Lon: -77.0},
			{Name: "D", Lat: 42.0, Lon: -76.0},
		},
		Roads: []graph.Road{
			{Name: "AB", From: "A", To: "B"},
			{Name: "BC", From: "B", To: "C"},
		},
	})
	require.NoError(t, err)
	return g
}

func mustFind(t testing.TB, g *graph.Graph, name string) *graph.Node {
	t.Helper()
	n, err := g.FindNode(name)
	require.NoError(t, err)
	return n
}

func TestMinHeap(t *testing.T) {
	var h MinHeap

	h.Push(1, 30)
	h.Push(2, 10)
	h.Push(3, 20)
	h.Push(2, 25) // stale duplicate

	if h.PeekDist() != 10 {
		t.Errorf("PeekDist = %f, want 10", h.PeekDist())
	}

	want := []PQItem{{2, 10}, {3, 20}, {2, 25}, {1, 30}}
	for _, w := range want {
		item := h.Pop()
		if item != w {
			t.Errorf("Pop = %+v, want %+v", item, w)
		}
	}

	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
	if !math.IsInf(h.PeekDist(), 1) {
		t.Errorf("PeekDist on empty heap = %f, want +Inf", h.PeekDist())
	}
}

func TestShortestPathsLine(t *testing.T) {
	g := buildLine(t)
	a, b, c, d := mustFind(t, g, "A"), mustFind(t, g, "B"), mustFind(t, g, "C"), mustFind(t, g, "D")

	tree, err := ShortestPaths(context.Background(), g, a)
	require.NoError(t, err)

	wBC, ok := b.Weight(c)
	require.True(t, ok)

	assert.Equal(t, 0.0, tree.Dist(a))
	assert.InDelta(t, 10, tree.Dist(b), 1e-6)
	assert.Equal(t, tree.Dist(b)+wBC, tree.Dist(c))
	assert.InDelta(t, 15, tree.Dist(c), 1e-6)

	assert.True(t, math.IsInf(tree.Dist(d), 1))
	assert.False(t, tree.Reachable(d))
	assert.Nil(t, tree.Parent(d))
	assert.Nil(t, tree.Parent(a))
	assert.Equal(t, b, tree.Parent(c))

	assert.Equal(t, []*graph.Node{a, b, c}, tree.PathTo(c))
	assert.Equal(t, []*graph.Node{a}, tree.PathTo(a))
	assert.Empty(t, tree.PathTo(d))
}

func TestShortestPathsPrefersShorterDetour(t *testing.T) {
	// A→C runs straight through M or detours east through F.
	g, err := graph.Build(&graph.Input{
		Intersections: []graph.Intersection{
			{Name: "A", Lat: 43.00, Lon: -77.00},
			{Name: "M", Lat: 43.05, Lon: -77.00},
			{Name: "C", Lat: 43.10, Lon: -77.00},
			{Name: "F", Lat: 43.05, Lon: -76.50},
		},
		Roads: []graph.Road{
			{Name: "AM", From: "A", To: "M"},
			{Name: "MC", From: "M", To: "C"},
			{Name: "AF", From: "A", To: "F"},
			{Name: "FC", From: "F", To: "C"},
		},
	})
	require.NoError(t, err)
	a, m, c := mustFind(t, g, "A"), mustFind(t, g, "M"), mustFind(t, g, "C")

	tree, err := ShortestPaths(context.Background(), g, a)
	require.NoError(t, err)
	assert.Equal(t, []*graph.Node{a, m, c}, tree.PathTo(c))
}

func TestShortestPathsStopAt(t *testing.T) {
	g := buildLine(t)
	a, b := mustFind(t, g, "A"), mustFind(t, g, "B")

	tree, err := ShortestPaths(context.Background(), g, a, StopAt(b))
	require.NoError(t, err)

	assert.InDelta(t, 10, tree.Dist(b), 1e-6)
	assert.Equal(t, []*graph.Node{a, b}, tree.PathTo(b))
	assert.True(t, tree.State().Visited[b.ID])
	assert.False(t, tree.State().Visited[mustFind(t, g, "C").ID])
}

func TestShortestPathsCanceled(t *testing.T) {
	g := buildLine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ShortestPaths(ctx, g, mustFind(t, g, "A"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShortestPathsForeignSource(t *testing.T) {
	g := buildLine(t)
	other := buildLine(t)

	_, err := ShortestPaths(context.Background(), g, mustFind(t, other, "A"))
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestShortestPathsNilSource(t *testing.T) {
	g := buildLine(t)

	var tree *Tree
	var err error
	require.NotPanics(t, func() {
		tree, err = ShortestPaths(context.Background(), g, nil)
	})
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
	assert.Nil(t, tree)
}

func TestStateReset(t *testing.T) {
	g := buildLine(t)
	s := NewState(g.NumNodes())

	_, err := ShortestPaths(context.Background(), g, mustFind(t, g, "A"), WithState(s))
	require.NoError(t, err)
	require.NotEmpty(t, s.Touched)

	s.Reset()
	for i := range s.Dist {
		assert.True(t, math.IsInf(s.Dist[i], 1))
		assert.Equal(t, noNode, s.Parent[i])
		assert.False(t, s.Visited[i])
	}
	assert.Empty(t, s.Touched)
	assert.Zero(t, s.PQ.Len())
}

func TestShortestPathsIdempotent(t *testing.T) {
	g := randomGraph(rand.New(rand.NewPCG(7, 11)), 12, 0.3)
	s := NewState(g.NumNodes())
	src := g.Node(0)

	first, err := ShortestPaths(context.Background(), g, src, WithState(s))
	require.NoError(t, err)
	dist1 := append([]float64(nil), first.State().Dist...)
	paths1 := make([][]*graph.Node, g.NumNodes())
	for id := range g.NumNodes() {
		paths1[id] = first.PathTo(g.Node(id))
	}

	// Same state reused: Reset must restore defaults.
	second, err := ShortestPaths(context.Background(), g, src, WithState(s))
	require.NoError(t, err)
	assert.Equal(t, dist1, second.State().Dist)
	for id := range g.NumNodes() {
		assert.Equal(t, paths1[id], second.PathTo(g.Node(id)))
	}
}

// randomGraph builds n nodes in a small box with each pair connected with
// probability p.
func randomGraph(r *rand.Rand, n int, p float64) *graph.Graph {
	in := &graph.Input{}
	for i := range n {
		in.Intersections = append(in.Intersections, graph.Intersection{
			Name: fmt.Sprintf("N%02d", i),
			Lat:  43 + r.Float64()*0.2,
			Lon:  -77.7 + r.Float64()*0.2,
		})
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			if r.Float64() < p {
				in.Roads = append(in.Roads, graph.Road{
					Name: fmt.Sprintf("R%d_%d", i, j),
					From: in.Intersections[i].Name,
					To:   in.Intersections[j].Name,
				})
			}
		}
	}
	g, err := graph.Build(in)
	if err != nil {
		panic(err)
	}
	return g
}

// bruteForce returns the minimum total weight over all simple paths from src
// to every node, by exhaustive enumeration.
func bruteForce(g *graph.Graph, src *graph.Node) []float64 {
	best := make([]float64, g.NumNodes())
	for i := range best {
		best[i] = math.Inf(1)
	}
	onPath := make([]bool, g.NumNodes())

	var walk func(n *graph.Node, d float64)
	walk = func(n *graph.Node, d float64) {
		if d < best[n.ID] {
			best[n.ID] = d
		}
		onPath[n.ID] = true
		for _, arc := range n.Neighbors() {
			if !onPath[arc.To.ID] {
				walk(arc.To, d+arc.Weight)
			}
		}
		onPath[n.ID] = false
	}
	walk(src, 0)
	return best
}

func TestShortestPathsMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for trial := range 25 {
		g := randomGraph(r, 7, 0.4)
		for id := range g.NumNodes() {
			src := g.Node(id)
			want := bruteForce(g, src)

			tree, err := ShortestPaths(context.Background(), g, src)
			require.NoError(t, err)

			for v := range g.NumNodes() {
				got := tree.Dist(g.Node(v))
				if math.IsInf(want[v], 1) {
					assert.True(t, math.IsInf(got, 1), "trial %d: %s→%s should be unreachable", trial, src, g.Node(v))
					continue
				}
				assert.InDelta(t, want[v], got, 1e-9, "trial %d: %s→%s", trial, src, g.Node(v))
			}
		}
	}
}

func TestReconstructedPathsAreValid(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for range 10 {
		g := randomGraph(r, 10, 0.3)
		src := g.Node(0)
		tree, err := ShortestPaths(context.Background(), g, src)
		require.NoError(t, err)

		for id := range g.NumNodes() {
			dst := g.Node(id)
			path := tree.PathTo(dst)
			if !tree.Reachable(dst) {
				assert.Empty(t, path)
				continue
			}

			require.NotEmpty(t, path)
			assert.Equal(t, src, path[0])
			assert.Equal(t, dst, path[len(path)-1])

			seen := make(map[*graph.Node]bool)
			sum := 0.0
			for i, n := range path {
				assert.False(t, seen[n], "node %s repeated", n)
				seen[n] = true
				if i > 0 {
					w, ok := path[i-1].Weight(n)
					require.True(t, ok, "%s-%s is not an edge", path[i-1], n)
					sum += w
				}
			}
			assert.InDelta(t, tree.Dist(dst), sum, 1e-9)
		}
	}
}

func TestTriangleInequality(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	g := randomGraph(r, 15, 0.3)
	tree, err := ShortestPaths(context.Background(), g, g.Node(0))
	require.NoError(t, err)

	g.EachEdge(func(b, c *graph.Node, w float64) bool {
		if tree.Reachable(b) {
			assert.LessOrEqual(t, tree.Dist(c), tree.Dist(b)+w+1e-9)
			assert.LessOrEqual(t, tree.Dist(b), tree.Dist(c)+w+1e-9)
		}
		return true
	})
}

func TestPathToBrokenChain(t *testing.T) {
	g := buildLine(t)
	a, b, c := mustFind(t, g, "A"), mustFind(t, g, "B"), mustFind(t, g, "C")

	tree, err := ShortestPaths(context.Background(), g, a)
	require.NoError(t, err)

	// Corrupt the tree into a B <-> C cycle that never reaches A.
	tree.State().Parent[b.ID] = c.ID
	tree.State().Parent[c.ID] = b.ID
	assert.Empty(t, tree.PathTo(c))

	// Dangling chain.
	tree.State().Parent[b.ID] = noNode
	assert.Empty(t, tree.PathTo(c))
}

func TestEngineConcurrentRoutes(t *testing.T) {
	g := randomGraph(rand.New(rand.NewPCG(9, 9)), 30, 0.15)
	eng := NewEngine(g, 0)

	// Reference answers from single-threaded runs.
	want := make(map[[2]uint32]float64)
	for s := range g.NumNodes() {
		tree, err := ShortestPaths(context.Background(), g, g.Node(s))
		require.NoError(t, err)
		for d := range g.NumNodes() {
			want[[2]uint32{s, d}] = tree.Dist(g.Node(d))
		}
	}

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := rand.New(rand.NewPCG(uint64(w), 1))
			for range 200 {
				s, d := r.Uint32N(g.NumNodes()), r.Uint32N(g.NumNodes())
				route, err := eng.RouteNodes(context.Background(), g.Node(s), g.Node(d))
				if !assert.NoError(t, err) {
					return
				}
				exp := want[[2]uint32{s, d}]
				if math.IsInf(exp, 1) {
					assert.False(t, route.Found)
				} else {
					assert.True(t, route.Found)
					assert.InDelta(t, exp, route.DistanceMiles, 1e-9)
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkShortestPaths(b *testing.B) {
	g := randomGraph(rand.New(rand.NewPCG(1, 1)), 500, 0.02)
	s := NewState(g.NumNodes())
	ctx := context.Background()

	b.ResetTimer()
	for b.Loop() {
		_, _ = ShortestPaths(ctx, g, g.Node(0), WithState(s))
	}
}
