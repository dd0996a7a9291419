package systems

import "github.com/pthm-cable/chase/components"

// NextState recomputes an agent's behavioral state from its current role
// and its distance to the IT agent. Called every tick for every agent
// not in TAUNT; TAUNT is entered only by the tag engine and exits only
// via its own timer, so it never comes out of this function.
func NextState(isIt bool, distToIT, panicDistance float64) components.State {
	if isIt {
		return components.StateHunt
	}
	if distToIT < panicDistance {
		return components.StateFlee
	}
	return components.StateRoam
}
