package model

import "time"

// PropertyType is the canonical property classification set. The analytics
// and persistence layers share this one definition.
type PropertyType string

const (
	PropertyTypeOffice      PropertyType = "Office"
	PropertyTypeRetail      PropertyType = "Retail"
	PropertyTypeIndustrial  PropertyType = "Industrial"
	PropertyTypeMultifamily PropertyType = "Multifamily"
	PropertyTypeMixedUse    PropertyType = "MixedUse"
	PropertyTypeHospitality PropertyType = "Hospitality"
	PropertyTypeOther       PropertyType = "Other"
)

// PropertyTypes returns every property type in canonical order. Distribution
// maps carry all of them, including zero-weight categories.
func PropertyTypes() []PropertyType {
	return []PropertyType{
		PropertyTypeOffice,
		PropertyTypeRetail,
		PropertyTypeIndustrial,
		PropertyTypeMultifamily,
		PropertyTypeMixedUse,
		PropertyTypeHospitality,
		PropertyTypeOther,
	}
}

// PropertyStatus represents a property's lifecycle state in the store.
type PropertyStatus string

const (
	PropertyStatusPending  PropertyStatus = "pending"
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusAnalyzed PropertyStatus = "analyzed"
	PropertyStatusArchived PropertyStatus = "archived"
)

// Address is a property's physical location. Coordinates are optional and
// only required for submarket classification.
type Address struct {
	Street    string   `json:"street"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	ZipCode   string   `json:"zip_code"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Property is a commercial real-estate asset tracked by the platform.
type Property struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	PropertyType  PropertyType   `json:"property_type"`
	PropertyClass string         `json:"property_class,omitempty"`
	YearBuilt     int            `json:"year_built,omitempty"`
	TotalSqFt     float64        `json:"total_sqft"`
	Address       Address        `json:"address"`
	Value         float64        `json:"value"`
	NOI           float64        `json:"noi"`
	OccupancyRate float64        `json:"occupancy_rate"`
	Status        PropertyStatus `json:"status"`
	Submarket     string         `json:"submarket,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// MarketMetrics are market benchmark figures for a property's submarket.
type MarketMetrics struct {
	MarketCapRate    float64 `json:"market_cap_rate"`
	MarketOccupancy  float64 `json:"market_occupancy"`
	MarketRentGrowth float64 `json:"market_rent_growth"`
	Submarket        string  `json:"submarket,omitempty"`
	MarketClass      string  `json:"market_classification,omitempty"`
}

// RentRollUnit is one extracted line of a rent roll document.
type RentRollUnit struct {
	Unit            string     `json:"unit"`
	Tenant          string     `json:"tenant"`
	SquareFootage   float64    `json:"square_footage"`
	MonthlyRent     float64    `json:"monthly_rent"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	SecurityDeposit float64    `json:"security_deposit"`
	Occupied        bool       `json:"occupied"`
}

// RentRollSummary aggregates a rent roll's units. AverageRentPerSqFt is
// annualized (monthly total x 12 over total square footage).
type RentRollSummary struct {
	TotalUnits            int     `json:"total_units"`
	TotalSquareFootage    float64 `json:"total_square_footage"`
	OccupiedSquareFootage float64 `json:"occupied_square_footage"`
	OccupancyRate         float64 `json:"occupancy_rate"`
	TotalMonthlyRent      float64 `json:"total_monthly_rent"`
	AverageRentPerSqFt    float64 `json:"average_rent_psf"`
}

// RentRoll is the full result of extracting a rent roll document.
type RentRoll struct {
	Units            []RentRollUnit     `json:"units"`
	Summary          RentRollSummary    `json:"summary"`
	ConfidenceScores map[string]float64 `json:"confidence_scores,omitempty"`
	ValidationErrors []string           `json:"validation_errors,omitempty"`
}
