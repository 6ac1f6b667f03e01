package models

import "testing"

func TestRateFor(t *testing.T) {
	card := CardProfile{
		Name:            "Dining Plus",
		DefaultRate:     1.0,
		PrimaryCategory: CategoryTravel,
		PrimaryRate:     3.0,
		CategoryRates:   map[string]float64{"food": 5.0},
	}

	tests := []struct {
		name     string
		category Category
		want     float64
	}{
		{"explicit category rate wins", CategoryFood, 5.0},
		{"primary category rate", CategoryTravel, 3.0},
		{"default rate otherwise", CategoryFuel, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := card.RateFor(tt.category); got != tt.want {
				t.Errorf("RateFor(%s) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}

	t.Run("zero when card has no rates", func(t *testing.T) {
		empty := CardProfile{Name: "Bare"}
		if got := empty.RateFor(CategoryFood); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})
}
