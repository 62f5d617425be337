package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "0"},
		{950, "950"},
		{1234, "1,234"},
		{1000000, "1,000,000"},
		{12500000, "12,500,000"},
		{1234567.89, "1,234,568"},
		{-123, "-123"},
		{-9876543, "-9,876,543"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(tt.amount), "amount=%v", tt.amount)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	assert.Equal(t, "a very ...", truncate("a very long tenant name", 10))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitAndTrim("a, b , ,c"))
	assert.Nil(t, splitAndTrim(""))
	assert.Nil(t, splitAndTrim(" , "))
}

func TestOpenOutput_Stdout(t *testing.T) {
	w, closeOutput, err := openOutput("")
	require.NoError(t, err)
	defer closeOutput()

	assert.Equal(t, os.Stdout, w)
}

func TestOpenOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	w, closeOutput, err := openOutput(path)
	require.NoError(t, err)

	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	closeOutput()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestOpenOutput_BadPath(t *testing.T) {
	_, _, err := openOutput("/nonexistent-dir/out.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output file")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer

	err := printJSON(&buf, map[string]int{"score": 78})
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 78}`, buf.String())
	assert.Contains(t, buf.String(), "\n", "output should be newline-terminated")
}
