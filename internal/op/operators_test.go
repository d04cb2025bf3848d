package op_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/kord/internal/coord"
	"github.com/vk/kord/internal/op"
	"github.com/vk/kord/internal/provider"
)

func TestNoop(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	gda94 := coord.Raw(-4052051.7643, 4212836.2017, -2545106.0245, 0)

	for _, name := range []string{"noop", "longlat", "latlon", "latlong", "lonlat"} {
		h, err := prv.Op(name)
		require.NoError(t, err, name)

		data := coord.Slice{gda94}
		n, err := prv.Apply(h, op.Forward, data)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, gda94, data[0])

		_, err = prv.Apply(h, op.Inverse, data)
		require.NoError(t, err)
		assert.Equal(t, gda94, data[0])
	}
}

func TestHelmertTranslation(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	// EPSG:1134 - 3 parameter, ED50/WGS84
	h, err := prv.Op("helmert x=-87 y=-96 z=-120")
	require.NoError(t, err)

	data := coord.Slice{coord.Origin()}
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.Equal(t, -87.0, data[0][0])
	assert.Equal(t, -96.0, data[0][1])
	assert.Equal(t, -120.0, data[0][2])

	_, err = prv.Apply(h, op.Inverse, data)
	require.NoError(t, err)
	assert.Equal(t, 0.0, data[0][0])
	assert.Equal(t, 0.0, data[0][1])
	assert.Equal(t, 0.0, data[0][2])
}

func TestHelmertConventionRequired(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	// A rotated transformation demands an explicit convention
	_, err := prv.Op("helmert rx=0.1")
	require.ErrorIs(t, err, op.ErrBadParam)

	_, err = prv.Op("helmert rx=0.1 convention=position_vector")
	require.NoError(t, err)

	_, err = prv.Op("helmert rx=0.1 convention=coordinate_frame")
	require.NoError(t, err)

	// A dynamic transformation demands an epoch
	_, err = prv.Op("helmert dx=0.1")
	require.ErrorIs(t, err, op.ErrMissingParam)

	_, err = prv.Op("helmert dx=0.1 t_epoch=2020")
	require.NoError(t, err)
}

// Test case from the Intergovernmental Committee on Surveying and Mapping:
// Geodetic Datum of Australia 2020, Technical Manual v1.0.
// Transformation from GDA94 to GDA2020.
func TestHelmertTranslationRotationAndScale(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	gda94 := coord.Raw(-4052051.7643, 4212836.2017, -2545106.0245, 0)
	gda2020 := coord.Raw(-4052052.7379, 4212835.9897, -2545104.5898, 0)

	h, err := prv.Op(`
        helmert convention = coordinate_frame
        x =  0.06155  rx = -0.0394924
        y = -0.01087  ry = -0.0327221
        z = -0.04019  rz = -0.0328979
        s = -0.009994 exact
    `)
	require.NoError(t, err)

	// The forward transformation should hit closer than 75 um
	data := coord.Slice{gda94}
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.Less(t, gda2020.HypotTo(data[0]), 75e-6)

	// ... and an even better roundtrip
	_, err = prv.Apply(h, op.Inverse, data)
	require.NoError(t, err)
	assert.Less(t, gda94.HypotTo(data[0]), 75e-7)
}

// A time varying example from the same source: ITRF2014@2018 to GDA2020,
// test point ALIC (Alice Springs).
func TestHelmertDynamic(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	itrf2014 := coord.Raw(-4052052.6588, 4212835.9938, -2545104.6946, 2018)
	gda2020 := coord.Raw(-4052052.7373, 4212835.9835, -2545104.5867, 2020)

	h, err := prv.Op(`
        helmert  exact    convention = coordinate_frame
        drx = 0.00150379  dry = 0.00118346  drz = 0.00120716
        t_epoch = 2020.0
    `)
	require.NoError(t, err)

	data := coord.Slice{itrf2014}
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.Less(t, gda2020.HypotTo(data[0]), 40e-6)

	_, err = prv.Apply(h, op.Inverse, data)
	require.NoError(t, err)
	assert.Less(t, itrf2014.HypotTo(data[0]), 40e-8)
}

// Same as above, but with the observation time fixed by t_obs, so the
// fourth coordinate is ignored.
func TestHelmertFixedTime(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	itrf2014 := coord.Raw(-4052052.6588, 4212835.9938, -2545104.6946, 2030)
	gda2020 := coord.Raw(-4052052.7373, 4212835.9835, -2545104.5867, 2020)

	h, err := prv.Op(`
        helmert  exact    convention = coordinate_frame
        drx = 0.00150379  dry = 0.00118346  drz = 0.00120716
        t_epoch = 2020.0  t_obs = 2018
    `)
	require.NoError(t, err)

	data := coord.Slice{itrf2014}
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.Less(t, gda2020.HypotTo(data[0]), 40e-6)

	_, err = prv.Apply(h, op.Inverse, data)
	require.NoError(t, err)
	assert.Less(t, itrf2014.HypotTo(data[0]), 40e-8)
}

func TestCartRoundtrip(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	h, err := prv.Op("cart")
	require.NoError(t, err)

	geo := coord.Slice{
		coord.Geo(85, 0, 100000, 0),
		coord.Geo(55, 12, -100000, 0),
		coord.Geo(1, -12, 0, 0),
		coord.Geo(-52, -180, 100000, 0),
	}
	data := make(coord.Slice, len(geo))
	copy(data, geo)

	n, err := prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.Equal(t, len(geo), n)

	n, err = prv.Apply(h, op.Inverse, data)
	require.NoError(t, err)
	assert.Equal(t, len(geo), n)

	// The single-pass geographic conversion loses a few picoradians at
	// 100 km ellipsoidal height, so the angular check is not exact.
	for i := range geo {
		assert.Less(t, data[i].HypotTo(geo[i]), 1e-6)
		assert.InDelta(t, geo[i][0], data[i][0], 1e-9)
		assert.InDelta(t, geo[i][1], data[i][1], 1e-9)
	}
}

func TestCartEllpsParameter(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	// The ED50 to WGS84 textbook example: intl ellipsoid in, GRS80 out
	h, err := prv.Op("cart ellps=intl | helmert x=-87 y=-96 z=-120 | cart inv ellps=GRS80")
	require.NoError(t, err)

	data := coord.Slice{coord.Geo(55, 12, 100, 0)}
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)

	// Roundtrip restores the input
	_, err = prv.Apply(h, op.Inverse, data)
	require.NoError(t, err)
	assert.Less(t, data[0].HypotTo(coord.Geo(55, 12, 100, 0)), 1e-6)

	_, err = prv.Op("cart ellps=nonexisting")
	require.ErrorIs(t, err, op.ErrNotFound)
}

func TestAdapt(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	// Degrees-latitude-longitude in, internal radians out
	h, err := prv.Op("adapt from=neuf_deg")
	require.NoError(t, err)

	data := coord.Slice{coord.Raw(55, 12, 0, 0)}
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.InDelta(t, coord.Geo(55, 12, 0, 0)[0], data[0][0], 1e-15)
	assert.InDelta(t, coord.Geo(55, 12, 0, 0)[1], data[0][1], 1e-15)

	_, err = prv.Apply(h, op.Inverse, data)
	require.NoError(t, err)
	assert.InDelta(t, 55, data[0][0], 1e-12)
	assert.InDelta(t, 12, data[0][1], 1e-12)

	// `adapt to=X` equals `adapt inv from=X`
	out, err := prv.Op("adapt to=neuf_deg")
	require.NoError(t, err)
	_, err = prv.Apply(out, op.Inverse, data)
	require.NoError(t, err)
	_, err = prv.Apply(out, op.Forward, data)
	require.NoError(t, err)
	assert.InDelta(t, 55, data[0][0], 1e-12)

	// pass and the identity descriptor are noops
	for _, def := range []string{"adapt from=pass", "adapt", "adapt from=enuf_rad"} {
		h, err := prv.Op(def)
		require.NoError(t, err, def)
		data := coord.Slice{coord.Raw(1, 2, 3, 4)}
		_, err = prv.Apply(h, op.Forward, data)
		require.NoError(t, err)
		assert.Equal(t, coord.Coor4D{1, 2, 3, 4}, data[0], def)
	}

	// Bad descriptors
	for _, def := range []string{"adapt from=neuf_foo", "adapt from=nnuf", "adapt from=xyzt"} {
		_, err := prv.Op(def)
		assert.ErrorIs(t, err, op.ErrBadParam, def)
	}
}

func TestBuiltinAdaptorMacros(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	h, err := prv.Op("geo:in | geo:out")
	require.NoError(t, err)

	data := coord.Slice{coord.Raw(55, 12, 0, 0)}
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.InDelta(t, 55, data[0][0], 1e-12)
	assert.InDelta(t, 12, data[0][1], 1e-12)

	// gis uses longitude-latitude order
	h, err = prv.Op("gis:in | geo:out")
	require.NoError(t, err)

	data = coord.Slice{coord.Raw(12, 55, 0, 0)}
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.InDelta(t, 55, data[0][0], 1e-12)
	assert.InDelta(t, 12, data[0][1], 1e-12)
}

func TestAxisswap(t *testing.T) {
	t.Parallel()
	prv := provider.NewMinimal()

	h, err := prv.Op("axisswap order=2,1,-3,-4")
	require.NoError(t, err)

	data := coord.Slice{coord.Raw(1, 2, 3, 4)}
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.Equal(t, coord.Coor4D{2, 1, -3, -4}, data[0])

	_, err = prv.Apply(h, op.Inverse, data)
	require.NoError(t, err)
	assert.Equal(t, coord.Coor4D{1, 2, 3, 4}, data[0])

	// Two-dimensional swap leaves the rest alone
	h, err = prv.Op("axisswap order=2,1")
	require.NoError(t, err)

	data = coord.Slice{coord.Raw(1, 2, 3, 4)}
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.Equal(t, coord.Coor4D{2, 1, 3, 4}, data[0])

	// Validation
	for _, def := range []string{
		"axisswap order=1,2,3,4,1",
		"axisswap order=1.5,2",
		"axisswap order=0,1",
		"axisswap order=3,1",
		"axisswap order=1,1",
	} {
		_, err := prv.Op(def)
		assert.ErrorIs(t, err, op.ErrBadParam, def)
	}

	// An orderless axisswap is an expensive noop
	h, err = prv.Op("axisswap")
	require.NoError(t, err)
	data = coord.Slice{coord.Raw(1, 2, 3, 4)}
	_, err = prv.Apply(h, op.Forward, data)
	require.NoError(t, err)
	assert.Equal(t, coord.Coor4D{1, 2, 3, 4}, data[0])
}
