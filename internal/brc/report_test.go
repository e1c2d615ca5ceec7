package brc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNum2Str(t *testing.T) {
	tcs := []struct {
		tenths   int64
		expected string
	}{
		{0, "0"},
		{120, "12"},
		{234, "23.4"},
		{-53, "-5.3"},
		{-5, "-0.5"},
		{5, "0.5"},
		{-990, "-99"},
		{9223372036854775807, "922337203685477580.7"},
	}
	for _, tc := range tcs {
		assert.Equal(t, tc.expected, num2str(tc.tenths), "tenths %d", tc.tenths)
	}
}

func TestMean2Str(t *testing.T) {
	tcs := []struct {
		sum, count int64
		expected   string
	}{
		{415, 2, "20.75"},
		{-74, 2, "-3.7"},
		{0, 1, "0"},
		{1, 3, "0.03"},
		{2, 3, "0.07"},
		{1, 4, "0.03"},   // 0.025, half away from zero
		{-1, 4, "-0.03"}, // -0.025
		{-1, 1000, "0"},  // -0.0001 rounds to zero, no sign
		{10, 1, "1"},
		{9223372036854775807, 9223372036854775807, "0.1"},
	}
	for _, tc := range tcs {
		assert.Equal(t, tc.expected, mean2str(tc.sum, tc.count), "%d/%d", tc.sum, tc.count)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "{}", Format(newTestTable(t).All()))
	assert.Equal(t, "{X=0/0/0}", Format(newTestTable(t, "X", 0).All()))
	assert.Equal(t,
		"{Paris=12/12/12, Tokyo=18.1/20.75/23.4}",
		Format(newTestTable(t, "Tokyo", 234, "Tokyo", 181, "Paris", 120).All()),
	)
}
