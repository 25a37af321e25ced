package book

import "testing"

func TestNewRulesValidation(t *testing.T) {
	tests := []struct {
		name           string
		minimumAmounts []uint64
		fallback       uint64
		maxDepth       int
		wantErr        bool
	}{
		{"valid", []uint64{3, 5, 15}, 1, 999, false},
		{"empty table", nil, 7, 10, false},
		{"zero minimum amount", []uint64{3, 0, 15}, 1, 999, true},
		{"zero fallback", []uint64{3}, 0, 999, true},
		{"zero max depth", []uint64{3}, 1, 0, true},
		{"negative max depth", []uint64{3}, 1, -4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRules(tt.minimumAmounts, tt.fallback, tt.maxDepth)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRules error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRulesThreshold(t *testing.T) {
	rules, err := NewRules([]uint64{3, 5, 15}, 7, 999)
	if err != nil {
		t.Fatalf("NewRules failed: %v", err)
	}

	for i, want := range []uint64{3, 5, 15, 7, 7} {
		if got := rules.Threshold(i); got != want {
			t.Errorf("Threshold(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestRulesCopiesTable(t *testing.T) {
	table := []uint64{3, 5}
	rules, err := NewRules(table, 1, 10)
	if err != nil {
		t.Fatalf("NewRules failed: %v", err)
	}
	table[0] = 99
	if got := rules.Threshold(0); got != 3 {
		t.Fatalf("Threshold(0) = %d after caller mutation, want 3", got)
	}
}
