package coercer

import (
	"testing"
	"time"

	"insurisk/domain/dataset"
)

func TestToNumeric(t *testing.T) {
	c := NewDefaultCoercer()

	tests := []struct {
		name        string
		input       dataset.Value
		wantMissing bool
		want        float64
	}{
		{"plain number", dataset.NewStringValue("21.929"), false, 21.929},
		{"negative", dataset.NewStringValue("-50"), false, -50},
		{"accounting negative", dataset.NewStringValue("(120.5)"), false, -120.5},
		{"rand prefix", dataset.NewStringValue("R 1 500,00"), false, 1500},
		{"comma decimal", dataset.NewStringValue("21,9298"), false, 21.9298},
		{"thousands and decimal", dataset.NewStringValue("1,234.56"), false, 1234.56},
		{"already numeric", dataset.NewNumericValue(7), false, 7},
		{"boolean", dataset.NewBooleanValue(true), false, 1},
		{"text", dataset.NewStringValue("not-a-number"), true, 0},
		{"missing", dataset.NewMissingValue(), true, 0},
		{"timestamp", dataset.NewTimestampValue(time.Now()), true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ToNumeric(tt.input)
			if got.IsMissing() != tt.wantMissing {
				t.Fatalf("ToNumeric(%v) missing = %v, want %v", tt.input, got.IsMissing(), tt.wantMissing)
			}
			if !tt.wantMissing && got.Num != tt.want {
				t.Errorf("ToNumeric(%v) = %v, want %v", tt.input, got.Num, tt.want)
			}
		})
	}
}

func TestToTimestamp(t *testing.T) {
	c := NewDefaultCoercer()

	tests := []struct {
		input    string
		wantYear int
		ok       bool
	}{
		{"2015-03-01 00:00:00", 2015, true},
		{"2014-11-01", 2014, true},
		{"2023-01-01T00:00:00Z", 2023, true},
		{"2013-10", 2013, true},
		{"yesterday", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got := c.ToTimestamp(dataset.NewStringValue(tt.input))
		if got.IsMissing() == tt.ok {
			t.Errorf("ToTimestamp(%q) missing = %v, want parsed = %v", tt.input, got.IsMissing(), tt.ok)
			continue
		}
		if tt.ok && got.Timestamp.Year() != tt.wantYear {
			t.Errorf("ToTimestamp(%q) year = %d, want %d", tt.input, got.Timestamp.Year(), tt.wantYear)
		}
	}
}

func TestParseCell_MissingTokens(t *testing.T) {
	c := NewDefaultCoercer()
	for _, raw := range []string{"", "  ", "NA", "NaN", "null", "None"} {
		if v := c.ParseCell(raw); !v.IsMissing() {
			t.Errorf("ParseCell(%q) should be missing, got %v", raw, v)
		}
	}
	if v := c.ParseCell("  Gauteng "); v.Str != "Gauteng" {
		t.Errorf("ParseCell should trim, got %q", v.Str)
	}
}

func TestInferColumnType(t *testing.T) {
	c := NewDefaultCoercer()

	tests := []struct {
		name   string
		values []string
		want   dataset.ValueType
	}{
		{"all numeric", []string{"2000", "122", "7441"}, dataset.ValueTypeNumeric},
		{"numeric with gaps", []string{"1.5", "", "2"}, dataset.ValueTypeNumeric},
		{"one text cell", []string{"1", "2", "abc"}, dataset.ValueTypeString},
		{"categorical", []string{"Male", "Female"}, dataset.ValueTypeString},
		{"all missing", []string{"", "NA"}, dataset.ValueTypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := make([]dataset.Value, len(tt.values))
			for i, raw := range tt.values {
				values[i] = c.ParseCell(raw)
			}
			if got := c.InferColumnType(values); got != tt.want {
				t.Errorf("InferColumnType(%v) = %s, want %s", tt.values, got, tt.want)
			}
		})
	}
}

func TestCoerce_StringTarget(t *testing.T) {
	c := NewDefaultCoercer()
	got := c.Coerce(dataset.NewNumericValue(2000), dataset.ValueTypeString)
	if got.Str != "2000" {
		t.Errorf("Expected canonical text 2000, got %q", got.Str)
	}
	if !c.Coerce(dataset.NewMissingValue(), dataset.ValueTypeNumeric).IsMissing() {
		t.Error("Missing must stay missing")
	}
}
