package editor

// Decision is the answer to a confirmation the UI asked the user for.
// Destructive operations take one instead of prompting on their own.
type Decision int

const (
	Cancelled Decision = iota
	Confirmed
)

// DecisionOf maps a yes/no answer to a Decision
func DecisionOf(confirmed bool) Decision {
	if confirmed {
		return Confirmed
	}
	return Cancelled
}

func (d Decision) String() string {
	if d == Confirmed {
		return "confirmed"
	}
	return "cancelled"
}
