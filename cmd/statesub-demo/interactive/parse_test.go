package interactive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", 42},
		{"-3", -3},
		{"1.5", 1.5},
		{"true", true},
		{"false", false},
		{"null", nil},
		{"hello", "hello"},
		{`"42"`, "42"},
		{"'true'", "true"},
		{`"`, `"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.in))
		})
	}
}

func TestAddNumber(t *testing.T) {
	v, err := addNumber(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = addNumber(1, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	v, err = addNumber(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = addNumber(int64(10), -4)
	require.NoError(t, err)
	assert.Equal(t, 6, v)

	_, err = addNumber("x", 1)
	assert.ErrorContains(t, err, "current value")

	_, err = addNumber(1, "x")
	assert.ErrorContains(t, err, "delta")
}

func TestNegate(t *testing.T) {
	v, err := negate(3)
	require.NoError(t, err)
	assert.Equal(t, -3, v)

	v, err = negate(0.25)
	require.NoError(t, err)
	assert.Equal(t, -0.25, v)

	_, err = negate(true)
	assert.Error(t, err)
}

func TestParseDelay(t *testing.T) {
	d, err := parseDelay("250ms")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	d, err = parseDelay("2")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)

	d, err = parseDelay("0.5")
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, d)

	_, err = parseDelay("-1s")
	assert.Error(t, err)

	_, err = parseDelay("soon")
	assert.Error(t, err)
}

func TestSplitKeys(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar", "baz"}, splitKeys([]string{"foo,bar", "baz"}))
	assert.Nil(t, splitKeys(nil))
	assert.Nil(t, splitKeys([]string{",", " "}))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, `{"count":0,"foo":10}`, formatValue(map[string]any{"foo": 10, "count": 0}))
	assert.Equal(t, `"x"`, formatValue("x"))
	assert.Equal(t, "[]", formatValue([]any{}))
}
