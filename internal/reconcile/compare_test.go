package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shinji-kodama/release-gate/internal/model"
)

// TestIsCompliant verifies the comparison predicate: equal after trimming
// is compliant, anything else (including an absent value) is not.
func TestIsCompliant(t *testing.T) {
	tests := []struct {
		name    string
		value   model.FieldValue
		release string
		want    bool
	}{
		{name: "release with extra spaces", value: model.FieldValue{Value: " 24.4.1 ", Present: true}, release: "24.4.1", want: true},
		{name: "exact match", value: model.FieldValue{Value: "24.4.1", Present: true}, release: "24.4.1", want: true},
		{name: "different release versions", value: model.FieldValue{Value: "24.5.1", Present: true}, release: "24.4.1", want: false},
		{name: "absent value", value: model.FieldValue{}, release: "24.4.1", want: false},
		{name: "absent value never matches empty release", value: model.FieldValue{}, release: "", want: false},
		{name: "empty value", value: model.FieldValue{Value: "", Present: true}, release: "24.4.1", want: false},
		{name: "comparison is case sensitive", value: model.FieldValue{Value: "R1", Present: true}, release: "r1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCompliant(tt.value, tt.release))
		})
	}
}

func TestFormatViolations(t *testing.T) {
	tests := []struct {
		name       string
		violations []model.Violation
		want       string
	}{
		{name: "none", violations: nil, want: ""},
		{name: "bare id", violations: []model.Violation{{ID: 13}}, want: "13"},
		{name: "parent annotation", violations: []model.Violation{{ID: 13, ParentID: "666"}}, want: "13 (parent 666)"},
		{
			name:       "mixed",
			violations: []model.Violation{{ID: 11}, {ID: 13, ParentID: "666"}, {ID: 10}},
			want:       "11,13 (parent 666),10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatViolations(tt.violations))
		})
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		want   string
		wantOK bool
	}{
		{name: "json number", raw: float64(666), want: "666", wantOK: true},
		{name: "int", raw: 666, want: "666", wantOK: true},
		{name: "string", raw: "666", want: "666", wantOK: true},
		{name: "padded with leading zero", raw: " 0666 ", want: "666", wantOK: true},
		{name: "fractional number", raw: 666.5, wantOK: false},
		{name: "not a number", raw: "abc", wantOK: false},
		{name: "nil", raw: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeID(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
