package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountDriverRoundTrip(t *testing.T) {
	v, err := NewCount(7).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	v, err = Count{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var c Count
	require.NoError(t, c.Scan(int64(12)))
	assert.Equal(t, Count{Int: 12, Valid: true}, c)
	require.NoError(t, c.Scan([]byte("3")))
	assert.Equal(t, 3, c.Int)
	require.NoError(t, c.Scan(nil))
	assert.False(t, c.Valid)
}

func TestParseCount(t *testing.T) {
	c, err := ParseCount(" 40 ")
	require.NoError(t, err)
	assert.Equal(t, 40, c.Int)
	assert.Equal(t, 40, *c.Ptr())

	c, err = ParseCount("")
	require.NoError(t, err)
	assert.False(t, c.Valid)
	assert.Nil(t, c.Ptr())
	assert.Equal(t, "", c.String())

	_, err = ParseCount("-1")
	assert.Error(t, err)
	_, err = ParseCount("2.5")
	assert.Error(t, err)
}

func TestCountJSON(t *testing.T) {
	var payload struct {
		A Count `json:"a"`
		B Count `json:"b"`
		C Count `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 5, "b": "6", "c": null}`), &payload))
	assert.Equal(t, 5, payload.A.Int)
	assert.Equal(t, 6, payload.B.Int)
	assert.False(t, payload.C.Valid)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 5, "b": 6, "c": null}`, string(raw))
}
