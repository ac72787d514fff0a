package reference

import "labrag/internal/domain"

// DefaultEntries returns the fixed reference ranges, in display order.
func DefaultEntries() []domain.ReferenceEntry {
	return []domain.ReferenceEntry{
		{Test: "Hemoglobin", Range: "13.5-17.5 g/dL for men, 12.0-15.5 g/dL for women"},
		{Test: "Cholesterol", Range: "Below 200 mg/dL is desirable"},
		{Test: "WBC", Range: "4,500 to 11,000 cells/mcL"},
		{Test: "Platelets", Range: "150,000 to 450,000 platelets/mcL"},
		{Test: "Blood Sugar", Range: "Fasting <100 mg/dL, 2-hr post-meal <140 mg/dL"},
	}
}

// TestNames returns the test names of entries, preserving order.
func TestNames(entries []domain.ReferenceEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Test
	}
	return names
}
