// internal/model/urgency.go
package model

// UrgencyLevel ranks a project's time pressure.
type UrgencyLevel string

const (
	UrgencyEmergency UrgencyLevel = "emergency"
	UrgencyUrgent    UrgencyLevel = "urgent"
	UrgencyWeek      UrgencyLevel = "week"
	UrgencyMonth     UrgencyLevel = "month"
	UrgencyFlexible  UrgencyLevel = "flexible"

	// UrgencyStandard is the strategy calculator's name for month-level pressure.
	UrgencyStandard UrgencyLevel = "standard"
	// UrgencyGroupBidding is an overlay mode, not a rank on the scale.
	UrgencyGroupBidding UrgencyLevel = "group_bidding"
)

// urgencyPriority orders the five ranked levels. Higher wins when combining
// signals. standard shares month's rank; group_bidding is orthogonal.
var urgencyPriority = map[UrgencyLevel]int{
	UrgencyEmergency: 5,
	UrgencyUrgent:    4,
	UrgencyWeek:      3,
	UrgencyMonth:     2,
	UrgencyStandard:  2,
	UrgencyFlexible:  1,
}

// Priority returns the rank of the level, 0 for unknown strings.
func (u UrgencyLevel) Priority() int {
	return urgencyPriority[u]
}

// IsClassifiable reports whether u is one of the five ranked levels a caller
// may pass through as an explicit classification.
func (u UrgencyLevel) IsClassifiable() bool {
	switch u {
	case UrgencyEmergency, UrgencyUrgent, UrgencyWeek, UrgencyMonth, UrgencyFlexible:
		return true
	}
	return false
}

// HigherUrgency returns whichever of a, b carries more time pressure.
func HigherUrgency(a, b UrgencyLevel) UrgencyLevel {
	if b.Priority() > a.Priority() {
		return b
	}
	return a
}
