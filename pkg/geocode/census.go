package geocode

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/cre-analytics/internal/model"
)

const (
	censusOneLineURL = "https://geocoding.geo.census.gov/geocoder/locations/onelineaddress"
	censusBatchURL   = "https://geocoding.geo.census.gov/geocoder/locations/addressbatch"
	censusBenchmark  = "Public_AR_Current"

	sourceCensus = "census"
	sourceGoogle = "google"
)

type censusResponse struct {
	Result struct {
		AddressMatches []struct {
			Coordinates struct {
				X float64 `json:"x"` // longitude
				Y float64 `json:"y"` // latitude
			} `json:"coordinates"`
			MatchedAddress string `json:"matchedAddress"`
		} `json:"addressMatches"`
	} `json:"result"`
}

// censusLookup resolves one address through the one-line endpoint.
func (g *geocoder) censusLookup(ctx context.Context, addr model.Address) (*Result, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: census rate limit")
	}

	params := url.Values{
		"address":   {oneLine(addr)},
		"benchmark": {censusBenchmark},
		"format":    {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.censusURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: census build request")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: census request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: census returned status %d", resp.StatusCode)
	}

	var parsed censusResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, eris.Wrap(err, "geocode: census parse response")
	}

	matches := parsed.Result.AddressMatches
	if len(matches) == 0 {
		return &Result{Source: sourceCensus}, nil
	}
	return &Result{
		Latitude:  matches[0].Coordinates.Y,
		Longitude: matches[0].Coordinates.X,
		Source:    sourceCensus,
		Quality:   "rooftop",
		Matched:   true,
	}, nil
}

// censusBatchLookup resolves addresses through the batch endpoint, which
// takes a CSV upload of id,street,city,state,zip rows and returns one
// CSV row per input. Rows are correlated by the index we assign as id.
func (g *geocoder) censusBatchLookup(ctx context.Context, addrs []model.Address) ([]Result, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: census batch rate limit")
	}

	var upload bytes.Buffer
	w := csv.NewWriter(&upload)
	for i, addr := range addrs {
		if err := w.Write([]string{strconv.Itoa(i), addr.Street, addr.City, addr.State, addr.ZipCode}); err != nil {
			return nil, eris.Wrap(err, "geocode: census batch write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "geocode: census batch flush upload")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("benchmark", censusBenchmark); err != nil {
		return nil, eris.Wrap(err, "geocode: census batch write benchmark")
	}
	part, err := form.CreateFormFile("addressFile", "addresses.csv")
	if err != nil {
		return nil, eris.Wrap(err, "geocode: census batch create form file")
	}
	if _, err := part.Write(upload.Bytes()); err != nil {
		return nil, eris.Wrap(err, "geocode: census batch write upload")
	}
	if err := form.Close(); err != nil {
		return nil, eris.Wrap(err, "geocode: census batch close form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.censusBatchURL, &body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: census batch build request")
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: census batch request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: census batch returned status %d", resp.StatusCode)
	}

	return parseCensusBatch(resp.Body, len(addrs))
}

// parseCensusBatch reads the batch response CSV. Matched rows carry
// id, input address, match flag, exactness, matched address, "lon,lat",
// tiger line id, and side; unmatched rows stop after the match flag.
func parseCensusBatch(r io.Reader, total int) ([]Result, error) {
	results := make([]Result, total)
	for i := range results {
		results[i] = Result{Source: sourceCensus}
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "geocode: census batch parse response")
	}

	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil || idx < 0 || idx >= total {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(row[2]), "Match") || len(row) < 6 {
			continue
		}

		lon, lat, err := splitCoords(row[5])
		if err != nil {
			continue
		}
		results[idx] = Result{
			Latitude:  lat,
			Longitude: lon,
			Source:    sourceCensus,
			Quality:   censusQuality(row[3]),
			Matched:   true,
		}
	}
	return results, nil
}

// censusQuality maps batch match exactness to the quality taxonomy.
func censusQuality(exactness string) string {
	if strings.EqualFold(strings.TrimSpace(exactness), "exact") {
		return "rooftop"
	}
	return "range"
}

// splitCoords parses the "lon,lat" coordinate field.
func splitCoords(coords string) (lon, lat float64, err error) {
	parts := strings.SplitN(coords, ",", 2)
	if len(parts) != 2 {
		return 0, 0, eris.Errorf("geocode: bad coordinate field %q", coords)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, eris.Wrap(err, "geocode: parse longitude")
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, eris.Wrap(err, "geocode: parse latitude")
	}
	return lon, lat, nil
}
