package slot

type Status string

const (
	StatusAvailable Status = "available"
	StatusHeld      Status = "held"
	StatusBooked    Status = "booked"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusHeld, StatusBooked:
		return true
	default:
		return false
	}
}

// Booked has no outgoing transition; cancellation back to available is not supported.
func (s Status) IsTerminal() bool {
	return s == StatusBooked
}
