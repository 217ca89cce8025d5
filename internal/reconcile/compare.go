package reconcile

import (
	"strconv"
	"strings"

	"github.com/shinji-kodama/release-gate/internal/model"
)

// Params are the comparison parameters of a reconciliation.
type Params struct {
	// FieldName is the work item field that must carry the release value.
	FieldName string

	// Release is the expected release value.
	Release string
}

// IsCompliant reports whether a fetched field value matches the expected
// release. Both sides are trimmed. An absent value never matches.
func IsCompliant(value model.FieldValue, release string) bool {
	if !value.Present {
		return false
	}
	return value.Trimmed() == strings.TrimSpace(release)
}

// FormatViolations renders violations as a comma-joined list,
// e.g. "13,14 (parent 666)".
func FormatViolations(violations []model.Violation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, ",")
}

// NormalizeID converts a work item id, in whatever form the service returned
// it, to its canonical decimal string: 666, float64(666), "666" and " 0666 " all
// become "666". Values that are not integers yield false.
func NormalizeID(raw any) (string, bool) {
	s, ok := model.StringValue(raw)
	if !ok {
		return "", false
	}
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return strconv.Itoa(id), true
}
