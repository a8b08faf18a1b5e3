package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"Nil", nil, 0},
		{"Int", 7, 7},
		{"Float", float64(3), 3},
		{"JSONNumber", json.Number("12"), 12},
		{"JSONNumberFloat", json.Number("4.0"), 4},
		{"String", " 5 ", 5},
		{"FloatString", "2.0", 2},
		{"Garbage", "two", 0},
		{"Bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt(tt.in))
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "M", ToString("M"))
	assert.Equal(t, "36", ToString(float64(36)))
	assert.Equal(t, "38", ToString(json.Number("38")))
}

func TestToOptionalString(t *testing.T) {
	assert.Nil(t, ToOptionalString(nil))
	assert.Nil(t, ToOptionalString("  "))
	assert.Nil(t, ToOptionalString("null"))

	got := ToOptionalString(" DC-001 ")
	if assert.NotNil(t, got) {
		assert.Equal(t, "DC-001", *got)
	}
}

func TestToOptionalInt(t *testing.T) {
	assert.Nil(t, ToOptionalInt(nil))
	assert.Nil(t, ToOptionalInt("n/a"))
	assert.Nil(t, ToOptionalInt(false))

	got := ToOptionalInt(json.Number("6"))
	if assert.NotNil(t, got) {
		assert.Equal(t, 6, *got)
	}
}
