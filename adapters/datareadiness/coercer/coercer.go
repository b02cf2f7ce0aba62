package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"insurisk/domain/dataset"
)

// TypeCoercer handles deterministic, non-failing type coercion.
// A cell that cannot be converted becomes missing; coercion never returns an error.
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64  `json:"numeric_threshold"` // share of non-missing cells that must parse as numbers
	MissingTokens    []string `json:"missing_tokens"`    // raw cell texts treated as missing
	TimestampFormats []string `json:"timestamp_formats"`
	TrimStrings      bool     `json:"trim_strings"`
}

// DefaultCoercionConfig mirrors the conventions of delimited insurance extracts:
// a column is numeric only if every present cell is a number.
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 1.0,
		MissingTokens:    []string{"", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "<NA>", "#N/A"},
		TimestampFormats: []string{
			time.RFC3339,
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05",
			"2006-01-02",
			"2006/01/02",
			"01/02/2006",
			"02-Jan-2006",
			"2006-01",
		},
		TrimStrings: true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// NewDefaultCoercer creates a coercer with DefaultCoercionConfig
func NewDefaultCoercer() *TypeCoercer {
	return NewTypeCoercer(DefaultCoercionConfig())
}

// IsMissingToken reports whether raw cell text denotes a missing value
func (c *TypeCoercer) IsMissingToken(raw string) bool {
	s := strings.TrimSpace(raw)
	for _, tok := range c.config.MissingTokens {
		if s == tok {
			return true
		}
	}
	return false
}

// ParseCell turns raw loader text into a string value, or missing
func (c *TypeCoercer) ParseCell(raw string) dataset.Value {
	if c.IsMissingToken(raw) {
		return dataset.NewMissingValue()
	}
	if c.config.TrimStrings {
		raw = strings.TrimSpace(raw)
	}
	return dataset.NewStringValue(raw)
}

// ToNumeric converts a value to a number, or missing if it cannot be read as one
func (c *TypeCoercer) ToNumeric(v dataset.Value) dataset.Value {
	switch v.Type {
	case dataset.ValueTypeNumeric:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return dataset.NewMissingValue()
		}
		return v
	case dataset.ValueTypeBoolean:
		n, _ := v.Float()
		return dataset.NewNumericValue(n)
	case dataset.ValueTypeString:
		if n, ok := c.parseNumeric(v.Str); ok {
			return dataset.NewNumericValue(n)
		}
	}
	return dataset.NewMissingValue()
}

// ToTimestamp converts a value to a timestamp, or missing if no known layout fits
func (c *TypeCoercer) ToTimestamp(v dataset.Value) dataset.Value {
	switch v.Type {
	case dataset.ValueTypeTimestamp:
		return v
	case dataset.ValueTypeString:
		if t, ok := c.parseTimestamp(v.Str); ok {
			return dataset.NewTimestampValue(t)
		}
	}
	return dataset.NewMissingValue()
}

// Coerce converts a value to the target type. String targets pass text through
// and render other present values in canonical text form.
func (c *TypeCoercer) Coerce(v dataset.Value, target dataset.ValueType) dataset.Value {
	if v.IsMissing() {
		return dataset.NewMissingValue()
	}
	switch target {
	case dataset.ValueTypeNumeric:
		return c.ToNumeric(v)
	case dataset.ValueTypeTimestamp:
		return c.ToTimestamp(v)
	case dataset.ValueTypeString:
		if v.IsString() {
			return v
		}
		return dataset.NewStringValue(v.String())
	}
	return v
}

// InferColumnType picks numeric when the share of present cells parsing as
// plain numbers reaches NumericThreshold, string otherwise. An all-missing
// column is string.
func (c *TypeCoercer) InferColumnType(values []dataset.Value) dataset.ValueType {
	present, numeric := 0, 0
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		present++
		if v.IsNumeric() {
			numeric++
			continue
		}
		if v.IsString() {
			if _, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64); err == nil {
				numeric++
			}
		}
	}

	if present == 0 {
		return dataset.ValueTypeString
	}
	if float64(numeric)/float64(present) >= c.config.NumericThreshold {
		return dataset.ValueTypeNumeric
	}
	return dataset.ValueTypeString
}

// parseNumeric parses a number leniently.
// Handles parentheses for negatives, currency symbols and the
// comma-decimal convention used by some regional extracts.
func (c *TypeCoercer) parseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"R", "$", "€", "£", "ZAR", "USD"} {
		cleanVal = strings.TrimPrefix(cleanVal, symbol)
	}
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		commaIdx := strings.LastIndex(cleanVal, ",")
		periodIdx := strings.LastIndex(cleanVal, ".")
		if commaIdx > periodIdx {
			// 1.234,56 or 1 234,56
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			// 1,234.56
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma:
		// 21,92 is a decimal; 1,234,567 groups thousands
		if strings.Count(cleanVal, ",") == 1 {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// parseTimestamp tries each configured layout in order
func (c *TypeCoercer) parseTimestamp(strVal string) (time.Time, bool) {
	s := strings.TrimSpace(strVal)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range c.config.TimestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
