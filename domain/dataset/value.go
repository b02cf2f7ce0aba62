package dataset

import (
	"strconv"
	"time"
)

// ValueType defines the storage type for values and columns
type ValueType string

const (
	ValueTypeString    ValueType = "string"
	ValueTypeNumeric   ValueType = "numeric"
	ValueTypeBoolean   ValueType = "boolean"
	ValueTypeTimestamp ValueType = "timestamp"
	ValueTypeMissing   ValueType = "missing"
)

// Value is a single typed cell. The zero Value is missing.
type Value struct {
	Type      ValueType
	Str       string
	Num       float64
	Bool      bool
	Timestamp time.Time
}

// NewStringValue creates a string value; the empty string is missing
func NewStringValue(s string) Value {
	if s == "" {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeString, Str: s}
}

// NewNumericValue creates a numeric value
func NewNumericValue(n float64) Value {
	return Value{Type: ValueTypeNumeric, Num: n}
}

// NewBooleanValue creates a boolean value
func NewBooleanValue(b bool) Value {
	return Value{Type: ValueTypeBoolean, Bool: b}
}

// NewTimestampValue creates a timestamp value
func NewTimestampValue(t time.Time) Value {
	return Value{Type: ValueTypeTimestamp, Timestamp: t}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing}
}

// IsMissing reports whether the cell holds no value
func (v Value) IsMissing() bool {
	return v.Type == ValueTypeMissing || v.Type == ""
}

func (v Value) IsNumeric() bool   { return v.Type == ValueTypeNumeric }
func (v Value) IsString() bool    { return v.Type == ValueTypeString }
func (v Value) IsBoolean() bool   { return v.Type == ValueTypeBoolean }
func (v Value) IsTimestamp() bool { return v.Type == ValueTypeTimestamp }

// Float returns the value as a number. Booleans map to 1/0.
// ok is false for missing, string and timestamp values.
func (v Value) Float() (float64, bool) {
	switch v.Type {
	case ValueTypeNumeric:
		return v.Num, true
	case ValueTypeBoolean:
		if v.Bool {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// String returns the canonical text form, used for grouping keys and export.
// Missing values render as the empty string.
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		return v.Str
	case ValueTypeNumeric:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueTypeBoolean:
		return strconv.FormatBool(v.Bool)
	case ValueTypeTimestamp:
		return v.Timestamp.Format("2006-01-02 15:04:05")
	}
	return ""
}

// Equal compares two values by type and payload
func (v Value) Equal(o Value) bool {
	if v.IsMissing() || o.IsMissing() {
		return v.IsMissing() && o.IsMissing()
	}
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case ValueTypeString:
		return v.Str == o.Str
	case ValueTypeNumeric:
		return v.Num == o.Num
	case ValueTypeBoolean:
		return v.Bool == o.Bool
	case ValueTypeTimestamp:
		return v.Timestamp.Equal(o.Timestamp)
	}
	return false
}
