package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestZIP(t *testing.T, files map[string]string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return zipPath
}

func TestExtractZIP_MultiFile(t *testing.T) {
	// Boundary bundles ship one layer as several sidecar files.
	zipPath := createTestZIP(t, map[string]string{
		"tl_2024_place.shp": "shape data",
		"tl_2024_place.dbf": "attribute data",
		"tl_2024_place.prj": "projection",
	})

	destDir := t.TempDir()
	extracted, err := ExtractZIP(zipPath, destDir)
	require.NoError(t, err)
	assert.Len(t, extracted, 3)

	for _, path := range extracted {
		_, err := os.Stat(path)
		require.NoError(t, err)
	}

	data, err := os.ReadFile(filepath.Join(destDir, "tl_2024_place.shp"))
	require.NoError(t, err)
	assert.Equal(t, "shape data", string(data))
}

func TestExtractZIPMatching(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"tl_2024_place.shp": "shape data",
		"tl_2024_place.shx": "index data",
		"tl_2024_place.dbf": "attribute data",
		"tl_2024_place.prj": "projection",
		"readme.txt":        "notes",
	})

	destDir := t.TempDir()
	extracted, err := ExtractZIPMatching(zipPath, destDir, func(name string) bool {
		switch filepath.Ext(name) {
		case ".shp", ".shx", ".dbf":
			return true
		}
		return false
	})
	require.NoError(t, err)
	assert.Len(t, extracted, 3)

	for _, path := range extracted {
		ext := filepath.Ext(path)
		assert.Contains(t, []string{".shp", ".shx", ".dbf"}, ext)
	}
}

func TestExtractZIPMatching_NoMatches(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"readme.txt": "notes",
	})

	extracted, err := ExtractZIPMatching(zipPath, t.TempDir(), func(name string) bool {
		return strings.HasSuffix(name, ".shp")
	})
	require.NoError(t, err)
	assert.Empty(t, extracted)
}

func TestExtractZIP_WithDirectories(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"data/feed.csv":       "metric,value",
		"data/sub/survey.csv": "q3 figures",
	})

	destDir := t.TempDir()
	extracted, err := ExtractZIP(zipPath, destDir)
	require.NoError(t, err)
	assert.Len(t, extracted, 2)

	data, err := os.ReadFile(filepath.Join(destDir, "data", "sub", "survey.csv"))
	require.NoError(t, err)
	assert.Equal(t, "q3 figures", string(data))
}

func TestExtractZIPSingle(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"vacancy_q3.csv": "metric,industry,value\nvacancy_rate,,0.07\n",
	})

	destDir := t.TempDir()
	path, err := ExtractZIPSingle(zipPath, destDir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "vacancy_rate")
}

func TestExtractZIPSingle_MultipleFiles(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"a.csv": "1",
		"b.csv": "2",
	})

	_, err := ExtractZIPSingle(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected exactly 1 file, got 2")
}

func TestExtractZIP_ZipSlip(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"../escape.txt": "malicious",
	})

	_, err := ExtractZIP(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip slip")
}

func TestExtractZIP_OpenError(t *testing.T) {
	_, err := ExtractZIP("/nonexistent/archive.zip", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open archive")
}
