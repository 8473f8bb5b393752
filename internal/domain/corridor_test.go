package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSegments = []string{
	"Avenue 52 → Calle Tampico",
	"Calle Tampico → Village Shopping Ctr",
	"Village Shopping Ctr → Avenue 50",
	"Avenue 50 → Sagebrush Ave",
}

func TestSplitSegment(t *testing.T) {
	from, to, ok := SplitSegment("Avenue 52 → Calle Tampico")
	require.True(t, ok)
	assert.Equal(t, "Avenue 52", from)
	assert.Equal(t, "Calle Tampico", to)

	for _, bad := range []string{"Avenue 52", "A → B → C", " → B", "A →  "} {
		_, _, ok := SplitSegment(bad)
		assert.False(t, ok, bad)
	}
}

func TestNormalizeSegmentName(t *testing.T) {
	assert.Equal(t, "Avenue 52 → Calle Tampico", normalizeSegmentName("Avenue 52->Calle Tampico"))
	assert.Equal(t, "Avenue 52 → Calle Tampico", normalizeSegmentName("  Avenue 52  →  Calle Tampico "))
	assert.Equal(t, "Mid-block", normalizeSegmentName(" Mid-block "))
}

func TestCorridorNodes(t *testing.T) {
	t.Run("canonical order restricted to present nodes", func(t *testing.T) {
		shuffled := []string{testSegments[3], testSegments[0], testSegments[2], testSegments[1]}
		got := CorridorNodes(DefaultNodeOrder, shuffled)
		assert.Equal(t, []string{"Avenue 52", "Calle Tampico", "Village Shopping Ctr", "Avenue 50", "Sagebrush Ave"}, got)
	})

	t.Run("falls back to chained discovery", func(t *testing.T) {
		segs := []string{"A → B", "B → C", "X → Y", "C → D", "Y → Z"}
		got := CorridorNodes(DefaultNodeOrder, segs)
		assert.Equal(t, []string{"A", "B", "C", "X", "Y", "Z"}, got)
	})

	t.Run("no segments", func(t *testing.T) {
		assert.Empty(t, CorridorNodes(DefaultNodeOrder, nil))
	})
}

func TestResolveODPath(t *testing.T) {
	nodes := CorridorNodes(DefaultNodeOrder, testSegments)

	t.Run("northbound", func(t *testing.T) {
		path, err := ResolveODPath(nodes, "Avenue 52", "Avenue 50", testSegments)
		require.NoError(t, err)
		assert.Equal(t, DirectionNorth, path.Direction)
		assert.Equal(t, testSegments[:3], path.Segments)
		assert.Equal(t, "Avenue 52 → Avenue 50", path.Label())
	})

	t.Run("southbound keeps northbound segment names", func(t *testing.T) {
		path, err := ResolveODPath(nodes, "Sagebrush Ave", "Calle Tampico", testSegments)
		require.NoError(t, err)
		assert.Equal(t, DirectionSouth, path.Direction)
		assert.Equal(t, testSegments[1:4], path.Segments)
	})

	t.Run("missing segments are skipped", func(t *testing.T) {
		observed := []string{testSegments[0], testSegments[2]}
		path, err := ResolveODPath(nodes, "Avenue 52", "Avenue 50", observed)
		require.NoError(t, err)
		assert.Equal(t, observed, path.Segments)
	})

	t.Run("same node has no path", func(t *testing.T) {
		_, err := ResolveODPath(nodes, "Avenue 50", "Avenue 50", testSegments)
		assert.ErrorIs(t, err, ErrNoPathSegments)
	})

	t.Run("unknown node", func(t *testing.T) {
		_, err := ResolveODPath(nodes, "Hwy 111", "Avenue 50", testSegments)
		assert.ErrorIs(t, err, ErrUnknownNode)
	})
}

func TestCanonicalOrder(t *testing.T) {
	segs := []string{"Avenue 50 → Sagebrush Ave", "malformed", "Hwy 111 → Elsewhere"}
	assert.Equal(t, []string{"Avenue 50", "Sagebrush Ave", "Hwy 111"}, CanonicalOrder(DefaultNodeOrder, segs))
	assert.Len(t, NodesPresent(segs), 4)
}
