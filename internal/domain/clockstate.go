package domain

// ClockState is the user's global clock state. It is a projection over the
// stored sessions and breaks, derived on every action rather than stored,
// so it can never go stale relative to the rows it summarizes.
type ClockState string

const (
	StateIdle      ClockState = "idle"
	StateClockedIn ClockState = "clocked_in"
	StateOnBreak   ClockState = "on_break"
)

// DeriveClockState projects the clock state from the user's open session,
// or nil when no session is open anywhere.
func DeriveClockState(open *WorkSession) ClockState {
	if open == nil {
		return StateIdle
	}
	if open.HasOpenBreak() {
		return StateOnBreak
	}
	return StateClockedIn
}
