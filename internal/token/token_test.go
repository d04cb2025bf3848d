package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "foo bar=baz bonk", Normalize("	 foo bar = baz  bonk "))
	assert.Equal(t, "foo bar=$baz bonk", Normalize("foo bar = $ baz  bonk"))
	assert.Equal(t, "foo|omit_inv bar|omit_fwd baz", Normalize("foo > bar < baz"))
	assert.Equal(t, "helmert x_1=2", Normalize("helmert x₁ = 2"))
	assert.Equal(t, "a=1,2,3 b=4", Normalize("a = 1, 2 , 3   b = 4"))
}

func TestSplitIntoSteps(t *testing.T) {
	steps, doc := SplitIntoSteps(`
		## Example pipeline
		## with a two line docstring
		cart ellps=intl # convert to cartesian
		| helmert x=-87 y=-96 z=-120 # select Helmert constants
		|
		| cart inv ellps=GRS80
	`)
	require.Len(t, steps, 3)
	assert.Equal(t, "cart ellps=intl", steps[0])
	assert.Equal(t, "helmert x=-87 y=-96 z=-120", steps[1])
	assert.Equal(t, "cart inv ellps=GRS80", steps[2])
	assert.Equal(t, "Example pipeline\nwith a two line docstring", doc)

	steps, doc = SplitIntoSteps("addone|addone|addone")
	assert.Len(t, steps, 3)
	assert.Empty(t, doc)

	steps, _ = SplitIntoSteps("")
	assert.Empty(t, steps)
}

func TestSplitIntoParameters(t *testing.T) {
	params, err := SplitIntoParameters("foo bar=baz bonk")
	require.NoError(t, err)
	assert.Equal(t, "foo", params["name"])
	assert.Equal(t, "baz", params["bar"])
	assert.Equal(t, "true", params["bonk"])

	// Modifiers given before the name still leave the name as name
	params, err = SplitIntoParameters("inv omit_fwd helmert x=1")
	require.NoError(t, err)
	assert.Equal(t, "helmert", params["name"])
	assert.Equal(t, "true", params["inv"])
	assert.Equal(t, "true", params["omit_fwd"])
	assert.Equal(t, "1", params["x"])

	// A step consisting of modifiers only must not spin forever
	params, err = SplitIntoParameters("inv inv")
	require.NoError(t, err)
	assert.Equal(t, "inv", params["name"])

	// Dangling '=' is malformed, trailing or mid-step (where gluing
	// welds the orphaned '=' onto the next element)
	_, err = SplitIntoParameters("helmert x= y=2")
	assert.Error(t, err)
	_, err = SplitIntoParameters("helmert x=")
	assert.Error(t, err)

	// Spaced assignment is glued, not rejected
	params, err = SplitIntoParameters("helmert x = 1")
	require.NoError(t, err)
	assert.Equal(t, "1", params["x"])
}

func TestOperatorName(t *testing.T) {
	assert.Equal(t, "helmert", OperatorName("inv helmert x=1", ""))
	assert.Equal(t, "geo:in", OperatorName("geo:in", ""))
	assert.Equal(t, "", OperatorName("cart|helmert", ""))
	assert.True(t, IsResourceName("geo:in"))
	assert.False(t, IsResourceName("helmert"))
	assert.True(t, IsPipeline("cart > helmert"))
	assert.False(t, IsPipeline("helmert x=1"))
}
