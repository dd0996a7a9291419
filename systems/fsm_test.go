package systems

import (
	"testing"

	"github.com/pthm-cable/chase/components"
)

func TestNextState(t *testing.T) {
	tests := []struct {
		name     string
		isIt     bool
		distToIT float64
		panic    float64
		want     components.State
	}{
		{"it always hunts", true, 0, 5, components.StateHunt},
		{"it hunts regardless of distance", true, 100, 5, components.StateHunt},
		{"runner inside panic radius flees", false, 4.9, 5, components.StateFlee},
		{"runner at panic radius roams", false, 5.0, 5, components.StateRoam},
		{"runner far away roams", false, 20, 5, components.StateRoam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextState(tt.isIt, tt.distToIT, tt.panic); got != tt.want {
				t.Errorf("NextState(%v, %v, %v) = %v, want %v",
					tt.isIt, tt.distToIT, tt.panic, got, tt.want)
			}
		})
	}
}
