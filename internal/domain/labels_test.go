package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDominantLabel(t *testing.T) {
	tests := []struct {
		name     string
		counts   map[string]int
		expected string
	}{
		{"single", map[string]int{"Group A": 3}, "Group A"},
		{"clear winner", map[string]int{"Group A": 1, "Group B": 4, "Group C": 2}, "Group B"},
		{"tie goes to smallest label", map[string]int{"Group C": 3, "Group A": 3, "Group B": 1}, "Group A"},
		{"empty", map[string]int{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DominantLabel(tt.counts))
		})
	}
}
