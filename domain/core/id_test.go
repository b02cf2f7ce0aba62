package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

func TestParseRunID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"generated id round-trips", NewRunID().String(), false},
		{"surrounding whitespace is trimmed", "  " + NewRunID().String() + " ", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"not a uuid", "run-42", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseRunID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q, got %q", tt.input, id)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if id.String() == "" {
				t.Error("Parsed run ID should not be empty")
			}
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	err := NewColumnNotFoundError("Province")
	if !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("Expected ErrColumnNotFound, got %v", err)
	}
	if !IsConfigurationError(err) {
		t.Error("Missing column should be a configuration error")
	}
	if IsInsufficientData(err) {
		t.Error("Missing column should not be an insufficient data error")
	}

	err = NewInsufficientDataError("h1_province_risk", "only 1 province")
	if !IsInsufficientData(err) {
		t.Errorf("Expected insufficient data error, got %v", err)
	}
	if IsConfigurationError(err) {
		t.Error("Insufficient data should not be a configuration error")
	}
}
