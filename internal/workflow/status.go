package workflow

// Status is the closed set of lifecycle states a calling moves through.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusApproved   Status = "APPROVED"
	StatusHCApproved Status = "HC_APPROVED"
	StatusOnHold     Status = "ON_HOLD"
	StatusCalled     Status = "CALLED"
	StatusLCRUpdated Status = "LCR_UPDATED"
)

// AllStatuses lists every member of the closed status set.
var AllStatuses = []Status{
	StatusPending,
	StatusApproved,
	StatusHCApproved,
	StatusOnHold,
	StatusCalled,
	StatusLCRUpdated,
}

// IsValid reports whether s belongs to the closed status set.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusHCApproved, StatusOnHold, StatusCalled, StatusLCRUpdated:
		return true
	}
	return false
}

// Badge is the presentation severity tag for a status.
type Badge string

const (
	BadgeWarning   Badge = "warning"
	BadgeSuccess   Badge = "success"
	BadgePrimary   Badge = "primary"
	BadgeInfo      Badge = "info"
	BadgeSecondary Badge = "secondary"
)

// BadgeFor maps a status to its badge. Unknown or retired status values fall
// back to the neutral badge instead of failing.
func BadgeFor(s Status) Badge {
	switch s {
	case StatusPending, StatusOnHold:
		return BadgeWarning
	case StatusApproved, StatusHCApproved:
		return BadgeSuccess
	case StatusCalled:
		return BadgePrimary
	case StatusLCRUpdated:
		return BadgeInfo
	default:
		return BadgeSecondary
	}
}
