package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"insurisk/domain/dataset"
)

// InsuranceGeneratorConfig configures the synthetic policy-transaction generator
type InsuranceGeneratorConfig struct {
	Rows      int       `json:"rows"`
	Seed      int64     `json:"seed"`
	StartDate time.Time `json:"start_date"`
	Months    int       `json:"months"`

	Provinces        []string           `json:"provinces"`
	ProvinceSeverity map[string]float64 `json:"province_severity"` // mean claim amount per province
	PostalCodes      []string           `json:"postal_codes"`
	PostalWeights    []float64          `json:"postal_weights"` // relative frequency, aligned with PostalCodes
	PostalPremium    map[string]float64 `json:"postal_premium"` // mean premium per postal code

	ClaimRate       float64            `json:"claim_rate"`
	GenderClaimRate map[string]float64 `json:"gender_claim_rate"` // overrides ClaimRate per gender
	Genders         []string           `json:"genders"`
	VehicleTypes    []string           `json:"vehicle_types"`

	// Injected defects
	NonPositivePremiumRate float64 `json:"non_positive_premium_rate"`
	FutureRegistrationRate float64 `json:"future_registration_rate"`
	UnparseableDateRate    float64 `json:"unparseable_date_rate"`
	SparseColumnRate       float64 `json:"sparse_column_rate"` // missing share of the CustomValueEstimate column
}

// DefaultInsuranceConfig returns a dataset shaped like a motor-insurance extract
func DefaultInsuranceConfig() InsuranceGeneratorConfig {
	return InsuranceGeneratorConfig{
		Rows:      2000,
		Seed:      42,
		StartDate: time.Date(2014, 2, 1, 0, 0, 0, 0, time.UTC),
		Months:    18,
		Provinces: []string{"Gauteng", "Western Cape", "KwaZulu-Natal", "Eastern Cape"},
		ProvinceSeverity: map[string]float64{
			"Gauteng": 20000, "Western Cape": 20000, "KwaZulu-Natal": 20000, "Eastern Cape": 20000,
		},
		PostalCodes:   []string{"2000", "122", "7784", "299", "7405"},
		PostalWeights: []float64{5, 4, 2, 1, 1},
		ClaimRate:     0.3,
		Genders:       []string{"Male", "Female", "Not specified"},
		VehicleTypes:  []string{"Passenger Vehicle", "Passenger Vehicle", "Passenger Vehicle", "Medium Commercial", "Light Commercial"},

		SparseColumnRate: 0.6,
	}
}

// InsuranceGenerator produces raw (all-text) datasets in the shape a loader returns
type InsuranceGenerator struct {
	config InsuranceGeneratorConfig
	rng    *rand.Rand
}

// NewInsuranceGenerator creates a new generator
func NewInsuranceGenerator(config InsuranceGeneratorConfig) *InsuranceGenerator {
	return &InsuranceGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Header is the column order of generated rows
var Header = []string{
	"PolicyID",
	dataset.ColTransactionMonth,
	dataset.ColProvince,
	dataset.ColPostalCode,
	dataset.ColGender,
	dataset.ColVehicleType,
	dataset.ColRegistrationYear,
	dataset.ColCalculatedPremiumPerTerm,
	dataset.ColTotalPremium,
	dataset.ColTotalClaims,
	"CustomValueEstimate",
}

// GenerateRows returns raw text rows aligned with Header
func (g *InsuranceGenerator) GenerateRows() [][]string {
	rows := make([][]string, g.config.Rows)
	for i := range rows {
		rows[i] = g.generateRow(i)
	}
	return rows
}

// Generate returns a raw dataset: every column is text, empty cells are missing
func (g *InsuranceGenerator) Generate() *dataset.Dataset {
	return RawDataset(Header, g.GenerateRows())
}

func (g *InsuranceGenerator) generateRow(i int) []string {
	cfg := g.config

	month := cfg.StartDate.AddDate(0, g.rng.Intn(maxInt(cfg.Months, 1)), 0)
	monthText := month.Format("2006-01-02 15:04:05")
	if g.rng.Float64() < cfg.UnparseableDateRate {
		monthText = "not-a-date"
	}

	province := pick(g.rng, cfg.Provinces)
	postal := g.pickWeighted(cfg.PostalCodes, cfg.PostalWeights)
	gender := pick(g.rng, cfg.Genders)
	vehicle := pick(g.rng, cfg.VehicleTypes)

	regYear := month.Year() - g.rng.Intn(20)
	if g.rng.Float64() < cfg.FutureRegistrationRate {
		regYear = month.Year() + 1 + g.rng.Intn(5)
	}

	meanPremium := 250.0
	if p, ok := cfg.PostalPremium[postal]; ok {
		meanPremium = p
	}
	premium := math.Max(1, meanPremium*(0.6+0.8*g.rng.Float64()))
	if g.rng.Float64() < cfg.NonPositivePremiumRate {
		premium = -premium
	}

	claimRate := cfg.ClaimRate
	if r, ok := cfg.GenderClaimRate[gender]; ok {
		claimRate = r
	}
	claims := 0.0
	if g.rng.Float64() < claimRate {
		severity := 20000.0
		if s, ok := cfg.ProvinceSeverity[province]; ok {
			severity = s
		}
		claims = severity * math.Exp(0.25*g.rng.NormFloat64())
	}

	estimate := ""
	if g.rng.Float64() >= cfg.SparseColumnRate {
		estimate = strconv.Itoa(50000 + g.rng.Intn(250000))
	}

	return []string{
		fmt.Sprintf("%d", 1000+i),
		monthText,
		province,
		postal,
		gender,
		vehicle,
		strconv.Itoa(regYear),
		strconv.FormatFloat(premium*3.1, 'f', 2, 64),
		strconv.FormatFloat(premium, 'f', 6, 64),
		strconv.FormatFloat(claims, 'f', 2, 64),
		estimate,
	}
}

func (g *InsuranceGenerator) pickWeighted(values []string, weights []float64) string {
	if len(weights) != len(values) {
		return pick(g.rng, values)
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := g.rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return values[i]
		}
	}
	return values[len(values)-1]
}

func pick(rng *rand.Rand, values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[rng.Intn(len(values))]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// RawDataset builds an all-text dataset from a header and rows; empty cells
// and short rows become missing
func RawDataset(header []string, rows [][]string) *dataset.Dataset {
	ds := dataset.New(len(rows))
	for j, name := range header {
		values := make([]dataset.Value, len(rows))
		for i, row := range rows {
			if j < len(row) {
				values[i] = dataset.NewStringValue(row[j])
			}
		}
		_ = ds.AddColumn(&dataset.Column{Name: name, Type: dataset.ValueTypeString, Values: values})
	}
	return ds
}
