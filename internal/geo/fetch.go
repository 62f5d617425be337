package geo

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/cre-analytics/internal/fetcher"
)

// DefaultShapefileURL is the Census TIGER CBSA boundary bundle.
const DefaultShapefileURL = "https://www2.census.gov/geo/tiger/TIGER2024/CBSA/tl_2024_us_cbsa.zip"

// shapefileSidecar reports whether a bundle member is needed by the
// shapefile reader.
func shapefileSidecar(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".shp", ".shx", ".dbf", ".prj":
		return true
	}
	return false
}

// FetchShapefile downloads a market-area boundary ZIP and extracts the
// shapefile members, returning the .shp path. A non-empty ZIP already in
// destDir is reused instead of re-downloading.
func FetchShapefile(ctx context.Context, f fetcher.Fetcher, url, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrap(err, "geo: create dest dir")
	}

	parts := strings.Split(url, "/")
	zipName := parts[len(parts)-1]
	zipPath := filepath.Join(destDir, zipName)

	if info, err := os.Stat(zipPath); err == nil && info.Size() > 0 {
		zap.L().Debug("geo: boundary zip cached", zap.String("path", zipPath))
	} else {
		zap.L().Info("geo: downloading boundary bundle", zap.String("url", url))
		if _, err := f.DownloadToFile(ctx, url, zipPath); err != nil {
			return "", eris.Wrap(err, "geo: download boundary bundle")
		}
	}

	extractDir := filepath.Join(destDir, strings.TrimSuffix(zipName, ".zip"))
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", eris.Wrap(err, "geo: create extract dir")
	}

	extracted, err := fetcher.ExtractZIPMatching(zipPath, extractDir, shapefileSidecar)
	if err != nil {
		return "", eris.Wrap(err, "geo: extract boundary bundle")
	}

	for _, p := range extracted {
		if strings.EqualFold(filepath.Ext(p), ".shp") {
			return p, nil
		}
	}
	return "", eris.Errorf("geo: no .shp file in %s", zipName)
}
