package enums

import "fmt"

// RentalStatus tracks the lifecycle of a rental hold.
type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusExpired   RentalStatus = "expired"
	RentalStatusCancelled RentalStatus = "cancelled"
)

var validRentalStatuses = []RentalStatus{
	RentalStatusPending,
	RentalStatusActive,
	RentalStatusCompleted,
	RentalStatusExpired,
	RentalStatusCancelled,
}

// String implements fmt.Stringer.
func (s RentalStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RentalStatus.
func (s RentalStatus) IsValid() bool {
	for _, candidate := range validRentalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s RentalStatus) IsTerminal() bool {
	return s == RentalStatusCompleted || s == RentalStatusExpired || s == RentalStatusCancelled
}

// ParseRentalStatus converts raw input into a RentalStatus.
func ParseRentalStatus(value string) (RentalStatus, error) {
	for _, candidate := range validRentalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rental status %q", value)
}
