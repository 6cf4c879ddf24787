package control

import "math"

// SafetyLimitDeg is the recoverable tilt range. At or beyond this
// angle the robot cannot right itself and actuation must cease.
const SafetyLimitDeg = 30.0

// Gate is the actuation safety gate: a pure decision on whether the
// corrector's command may reach the motor. Inside the recoverable
// range (strictly below the limit) the command passes unchanged;
// outside, including exactly at the limit, the decision is an explicit
// stop and the returned command is zero.
func Gate(fusedAngle, command float64) (float64, bool) {
	if math.Abs(fusedAngle) < SafetyLimitDeg {
		return command, true
	}
	return 0, false
}
