package tetris

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogShapes(t *testing.T) {
	want := map[Kind]string{
		I: "####",
		O: "##/##",
		T: ".#./###",
		S: ".##/##.",
		Z: "##./.##",
		J: "#../###",
		L: "..#/###",
	}
	require.Len(t, Kinds, 7)
	for _, k := range Kinds {
		assert.Equal(t, want[k], k.Shape().String(), "shape of %s", k)
		assert.NotEqual(t, Empty, k.Color())
	}
}

func TestShapeReturnsCopy(t *testing.T) {
	s := T.Shape()
	s[0][0] = true
	assert.Equal(t, ".#./###", T.Shape().String())
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind("t")
	require.NoError(t, err)
	assert.Equal(t, T, got)

	_, err = ParseKind("X")
	assert.Error(t, err)
}

func TestKindJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Kind{"next": Z})
	require.NoError(t, err)
	assert.JSONEq(t, `{"next":"Z"}`, string(data))

	var decoded struct {
		Next Kind `json:"next"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"next":"L"}`), &decoded))
	assert.Equal(t, L, decoded.Next)
}

func TestRandomKindCoversCatalog(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := map[Kind]int{}
	for i := 0; i < 7000; i++ {
		k := RandomKind(rng)
		require.True(t, k.Valid())
		seen[k]++
	}
	assert.Len(t, seen, 7)
	for k, n := range seen {
		assert.InDelta(t, 1000, n, 200, "kind %s drawn %d times", k, n)
	}
}

func TestSequenceSource(t *testing.T) {
	next := SequenceSource(O, I)
	assert.Equal(t, []Kind{O, I, O, I}, []Kind{next(), next(), next(), next()})
}
