package codec_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/paramshape/codec"
)

func TestIdentity(t *testing.T) {
	id := codec.Identity()
	for _, v := range []any{"asdf", true, json.Number("123.45"), nil} {
		dv, err := id.Decode(v)
		require.NoError(t, err)
		assert.Equal(t, v, dv)
		ev, err := id.Encode(dv)
		require.NoError(t, err)
		assert.Equal(t, v, ev)
	}
}

func TestDate_RoundTrip(t *testing.T) {
	c := codec.Date()
	v, err := c.Decode("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), v)

	s, err := c.Encode(v)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", s)

	_, err = c.Decode("2023-02-29")
	assert.Error(t, err)
}

func TestDecimalString_RoundTrip(t *testing.T) {
	c := codec.DecimalString()
	for _, in := range []any{"19.99", json.Number("19.99"), 19.99} {
		v, err := c.Decode(in)
		require.NoError(t, err, "%v", in)
		assert.True(t, decimal.RequireFromString("19.99").Equal(v.(decimal.Decimal)), "%v", in)
		s, err := c.Encode(v)
		require.NoError(t, err)
		assert.Equal(t, "19.99", s)
	}
	_, err := c.Decode("nineteen")
	assert.Error(t, err)
	_, err = c.Encode(true)
	assert.Error(t, err)
}
