package op_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/kord/internal/coord"
	"github.com/vk/kord/internal/op"
	"github.com/vk/kord/internal/provider"
)

func stackMasterData() coord.Slice {
	return coord.Slice{
		coord.Raw(11, 12, 13, 14),
		coord.Raw(21, 22, 23, 24),
	}
}

func TestStackConstruction(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	// Any number of elements may be pushed, even repeatedly
	_, err := prv.Op("stack push=2,2,1,1,3,3,4,4,4,4,4,4,4")
	assert.NoError(t, err)

	// But a single stack operator takes a single subcommand
	_, err = prv.Op("stack push=2,2,1,1 pop=1,1,2")
	assert.Error(t, err)

	// ...while in two consecutive steps it works as it should
	_, err = prv.Op("stack push=2,2,1,1 | stack pop=1,1,2")
	assert.NoError(t, err)

	// No subcommand at all
	_, err = prv.Op("stack")
	assert.Error(t, err)

	// Index out of the coordinate dimensionality
	_, err = prv.Op("stack push=5")
	assert.ErrorIs(t, err, op.ErrBadParam)

	// roll takes exactly two integer arguments with |n| < m
	_, err = prv.Op("stack roll=3")
	assert.Error(t, err)
	_, err = prv.Op("stack roll=2,3")
	assert.Error(t, err)
}

func TestStackPushPop(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()
	master := stackMasterData()

	// The first step pushes the first and second coordinate, in that
	// order, so the second coordinate becomes top-of-stack. The second
	// step pops the TOS into the first coordinate, and the 2OS into the
	// second, swapping the two dimensions.
	h, err := prv.Op("stack push=1,2|stack pop=1,2")
	require.NoError(t, err)

	data := stackMasterData()
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.Equal(t, 12.0, data[0][0])
	assert.Equal(t, 21.0, data[1][1])

	_, err = prv.Apply(h, op.Inverse, data)
	require.NoError(t, err)
	assert.Equal(t, master[0], data[0])
	assert.Equal(t, master[1], data[1])

	// An exercise in reverse thinking: the inverse call first
	h, err = prv.Op("stack push=2,1 | stack pop=2,1")
	require.NoError(t, err)

	_, err = prv.Apply(h, op.Inverse, data)
	require.NoError(t, err)
	assert.Equal(t, 12.0, data[0][0])
	assert.Equal(t, 21.0, data[1][1])

	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.Equal(t, master[0], data[0])
	assert.Equal(t, master[1], data[1])
}

func TestStackSwap(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()
	master := stackMasterData()

	h, err := prv.Op("stack push=2,1 | stack swap | stack pop=1,2")
	require.NoError(t, err)

	data := stackMasterData()
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.Equal(t, 12.0, data[0][0])
	assert.Equal(t, 21.0, data[1][1])

	_, err = prv.Apply(h, op.Inverse, data)
	require.NoError(t, err)
	assert.Equal(t, master[0], data[0])
	assert.Equal(t, master[1], data[1])
}

func TestStackRoll(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	h, err := prv.Op("stack push=1,1,1,2,1,3,1,4 | stack roll=8,2 | stack pop=1,2")
	require.NoError(t, err)

	data := stackMasterData()
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.Equal(t, 13.0, data[0][0])
	assert.Equal(t, 11.0, data[0][1])

	// The push/pop asymmetry makes the plain inverse underflow
	n, err := prv.Apply(h, op.Inverse, data)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	cases := []struct {
		definition string
		first      float64
		second     float64
	}{
		{"stack push=1,2,3,4,1,2,3,4 | stack roll=8,6 | stack pop=1,2", 12, 11},
		{"stack push=1,2,3,4,1,2,3,4 | stack roll=3,2 | stack pop=1,2", 12, 14},
		{"stack push=1,2,3,4 | stack roll=3,-2 | stack pop=2,1", 12, 13},
		{"stack push=1,2,3,4 | stack roll=3,2 | stack roll=3,1 | stack pop=1,2", 14, 13},
		{"stack push=1,2,3,4 | stack roll=3,2 | stack unroll=3,2 | stack pop=1,2", 14, 13},
	}
	for _, tc := range cases {
		h, err := prv.Op(tc.definition)
		require.NoError(t, err, tc.definition)

		data := stackMasterData()
		_, err = prv.Apply(h, op.Forward, data)
		require.NoError(t, err, tc.definition)
		assert.Equal(t, tc.first, data[0][0], tc.definition)
		assert.Equal(t, tc.second, data[0][1], tc.definition)
	}
}

func TestStackRollPermutations(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	cases := []struct {
		definition string
		want       coord.Coor4D
	}{
		{"stack push=1,2,3,4 | stack roll=3,2 | stack pop=4,3,2,1", coord.Coor4D{1, 3, 4, 2}},
		{"stack push=1,2,3,4 | stack roll=3,-2 | stack pop=4,3,2,1", coord.Coor4D{1, 4, 2, 3}},
		{"stack push=1,2,3,4 | stack unroll=3,2 | stack pop=4,3,2,1", coord.Coor4D{1, 4, 2, 3}},
		{"stack push=1,2,3,4 | stack unroll=3,-2 | stack pop=4,3,2,1", coord.Coor4D{1, 3, 4, 2}},
	}
	for _, tc := range cases {
		h, err := prv.Op(tc.definition)
		require.NoError(t, err, tc.definition)

		data := coord.Slice{coord.Raw(1, 2, 3, 4)}
		_, err = prv.Apply(h, op.Forward, data)
		require.NoError(t, err, tc.definition)
		assert.Equal(t, tc.want, data[0], tc.definition)
	}
}

func TestStackFlip(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	// Push the first coordinate, then exchange it with the second
	h, err := prv.Op("stack push=1 | stack flip=2")
	require.NoError(t, err)

	data := coord.Slice{coord.Raw(1, 2, 3, 4)}
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.Equal(t, coord.Coor4D{1, 1, 3, 4}, data[0])
}

func TestStackUnderflowStomps(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	h, err := prv.Op("stack push=1 | stack pop=1,2")
	require.NoError(t, err)

	data := stackMasterData()
	n, err := prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	for i := range data {
		for j := range data[i] {
			assert.True(t, math.IsNaN(data[i][j]))
		}
	}
}
