// Package ingest extracts rent rolls from uploaded spreadsheets and converts
// them into scoring inputs. Extraction is lenient: malformed figures become
// validation notes on the result, never hard failures, because brokers send
// rent rolls in every shape imaginable.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/cre-analytics/internal/fetcher"
	"github.com/sells-group/cre-analytics/internal/metrics"
	"github.com/sells-group/cre-analytics/internal/model"
)

// headerIndicators mark a row as the rent roll header when at least
// minHeaderIndicators of them appear in it.
var headerIndicators = []string{"unit", "tenant", "square feet", "sf", "rent", "lease"}

const minHeaderIndicators = 3

// column fields in scan order. Variants are matched as substrings against
// lowercased header cells; the first matching cell claims the field.
type field string

const (
	fieldUnit            field = "unit"
	fieldTenant          field = "tenant"
	fieldSquareFootage   field = "square_footage"
	fieldRent            field = "rent"
	fieldStartDate       field = "start_date"
	fieldEndDate         field = "end_date"
	fieldSecurityDeposit field = "security_deposit"
)

var fieldOrder = []field{
	fieldUnit,
	fieldTenant,
	fieldSquareFootage,
	fieldRent,
	fieldStartDate,
	fieldEndDate,
	fieldSecurityDeposit,
}

var fieldVariants = map[field][]string{
	fieldUnit:            {"unit", "suite", "space"},
	fieldTenant:          {"tenant", "occupant", "customer"},
	fieldSquareFootage:   {"sf", "sqft", "square feet", "size"},
	fieldRent:            {"rent", "rate", "amount"},
	fieldStartDate:       {"start", "commence", "begin"},
	fieldEndDate:         {"end", "expir", "term"},
	fieldSecurityDeposit: {"deposit", "security"},
}

// vacancyTerms in a tenant name mark the unit as unoccupied.
var vacancyTerms = []string{"vacant", "empty", "available"}

// ExtractFile reads a rent roll document by extension: CSV directly, any
// other extension as the first worksheet of an XLSX file. PDFs need an
// OCR pass and are handled by ExtractPDF.
func ExtractFile(path string) (*model.RentRoll, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return extractCSV(path)
	case ".pdf":
		return nil, eris.Errorf("ingest: %s requires OCR, use ExtractPDF", path)
	default:
		rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read rent roll")
		}
		return ExtractRows(rows)
	}
}

func extractCSV(path string) (*model.RentRoll, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open rent roll")
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rent rolls carry ragged rows
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read rent roll csv")
	}
	return ExtractRows(rows)
}

// ExtractRows extracts a rent roll from raw sheet rows. It fails only when no
// header row can be located; everything else degrades to validation notes.
func ExtractRows(rows [][]string) (*model.RentRoll, error) {
	headerIdx := findHeaderRow(rows)
	if headerIdx < 0 {
		return nil, eris.New("ingest: no rent roll header row found")
	}

	columns := mapColumns(rows[headerIdx])

	var units []model.RentRollUnit
	for _, row := range rows[headerIdx+1:] {
		unit, ok := parseUnitRow(row, columns)
		if ok {
			units = append(units, unit)
		}
	}

	roll := &model.RentRoll{
		Units:            units,
		Summary:          summarize(units),
		ConfidenceScores: confidenceScores(units),
		ValidationErrors: validate(units),
	}

	zap.L().Info("ingest: rent roll extracted",
		zap.Int("units", len(units)),
		zap.Float64("occupancy_rate", roll.Summary.OccupancyRate),
		zap.Int("validation_errors", len(roll.ValidationErrors)),
	)

	return roll, nil
}

func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		text := strings.ToLower(strings.Join(row, " "))
		matches := 0
		for _, ind := range headerIndicators {
			if strings.Contains(text, ind) {
				matches++
			}
		}
		if matches >= minHeaderIndicators {
			return i
		}
	}
	return -1
}

func mapColumns(header []string) map[field]int {
	columns := make(map[field]int)
	for _, f := range fieldOrder {
		for _, variant := range fieldVariants[f] {
			idx := -1
			for i, cell := range header {
				if strings.Contains(strings.ToLower(cell), variant) {
					idx = i
					break
				}
			}
			if idx >= 0 {
				columns[f] = idx
				break
			}
		}
	}
	return columns
}

func parseUnitRow(row []string, columns map[field]int) (model.RentRollUnit, bool) {
	cell := func(f field) string {
		idx, ok := columns[f]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	empty := true
	for _, f := range fieldOrder {
		if cell(f) != "" {
			empty = false
			break
		}
	}
	if empty {
		return model.RentRollUnit{}, false
	}

	tenant := cell(fieldTenant)
	unit := model.RentRollUnit{
		Unit:            cell(fieldUnit),
		Tenant:          tenant,
		SquareFootage:   parseNumber(cell(fieldSquareFootage)),
		MonthlyRent:     parseNumber(cell(fieldRent)),
		StartDate:       parseDate(cell(fieldStartDate)),
		EndDate:         parseDate(cell(fieldEndDate)),
		SecurityDeposit: parseNumber(cell(fieldSecurityDeposit)),
		Occupied:        isOccupied(tenant),
	}
	return unit, true
}

func isOccupied(tenant string) bool {
	lower := strings.ToLower(tenant)
	for _, term := range vacancyTerms {
		if strings.Contains(lower, term) {
			return false
		}
	}
	return true
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// parseNumber strips currency symbols, commas, and footnote characters before
// parsing. Unparseable values become 0.
func parseNumber(s string) float64 {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// dateLayouts cover the formats rent rolls show up with.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"01-02-06",
	"Jan 2, 2006",
	"2-Jan-06",
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func summarize(units []model.RentRollUnit) model.RentRollSummary {
	var totalSF, occupiedSF, totalRent float64
	for _, u := range units {
		totalSF += u.SquareFootage
		totalRent += u.MonthlyRent
		if u.Occupied {
			occupiedSF += u.SquareFootage
		}
	}

	return model.RentRollSummary{
		TotalUnits:            len(units),
		TotalSquareFootage:    totalSF,
		OccupiedSquareFootage: occupiedSF,
		OccupancyRate:         metrics.Round2(metrics.RatioOrZero(occupiedSF, totalSF) * 100),
		TotalMonthlyRent:      totalRent,
		AverageRentPerSqFt:    metrics.Round2(metrics.RatioOrZero(totalRent*12, totalSF)),
	}
}

// confidenceScores reports, per required field, the share of units where the
// field was actually extracted.
func confidenceScores(units []model.RentRollUnit) map[string]float64 {
	if len(units) == 0 {
		return map[string]float64{"overall": 0}
	}

	var withUnit, withSF, withRent int
	for _, u := range units {
		if u.Unit != "" {
			withUnit++
		}
		if u.SquareFootage > 0 {
			withSF++
		}
		if u.MonthlyRent > 0 {
			withRent++
		}
	}

	n := float64(len(units))
	scores := map[string]float64{
		"unit":           float64(withUnit) / n,
		"square_footage": float64(withSF) / n,
		"rent":           float64(withRent) / n,
	}
	scores["overall"] = (scores["unit"] + scores["square_footage"] + scores["rent"]) / 3
	return scores
}

func validate(units []model.RentRollUnit) []string {
	var errs []string

	if len(units) == 0 {
		return []string{"no units extracted"}
	}

	summary := summarize(units)
	if summary.OccupancyRate > 100 {
		errs = append(errs, "occupancy rate exceeds 100%")
	}

	for i, u := range units {
		label := u.Unit
		if label == "" {
			label = fmt.Sprintf("row %d", i+1)
			errs = append(errs, fmt.Sprintf("missing unit number for %s", label))
		}
		if u.SquareFootage <= 0 {
			errs = append(errs, fmt.Sprintf("unit %s: non-positive square footage", label))
		}
		if u.MonthlyRent < 0 {
			errs = append(errs, fmt.Sprintf("unit %s: negative rent", label))
		}
	}

	return errs
}
