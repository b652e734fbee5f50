package enums

import "fmt"

// FulfillmentStatus tracks a supplier restock request through admin review.
type FulfillmentStatus string

const (
	FulfillmentStatusPending  FulfillmentStatus = "pending"
	FulfillmentStatusApproved FulfillmentStatus = "approved"
	FulfillmentStatusRejected FulfillmentStatus = "rejected"
)

var validFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusPending,
	FulfillmentStatusApproved,
	FulfillmentStatusRejected,
}

// String implements fmt.Stringer.
func (s FulfillmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known FulfillmentStatus.
func (s FulfillmentStatus) IsValid() bool {
	for _, candidate := range validFulfillmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseFulfillmentStatus converts raw input into a FulfillmentStatus.
func ParseFulfillmentStatus(value string) (FulfillmentStatus, error) {
	for _, candidate := range validFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment status %q", value)
}
