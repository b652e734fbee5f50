package enums

import "fmt"

// OrderAction names the bulk operations admins may request on orders.
// ActionUpdateShipping is metadata-only and never passes through the
// status state machine.
type OrderAction string

const (
	OrderActionConfirm        OrderAction = "confirm"
	OrderActionProcess        OrderAction = "process"
	OrderActionShip           OrderAction = "ship"
	OrderActionDeliver        OrderAction = "deliver"
	OrderActionCancel         OrderAction = "cancel"
	OrderActionReturn         OrderAction = "return"
	OrderActionUpdateShipping OrderAction = "update-shipping"
)

var validOrderActions = []OrderAction{
	OrderActionConfirm,
	OrderActionProcess,
	OrderActionShip,
	OrderActionDeliver,
	OrderActionCancel,
	OrderActionReturn,
	OrderActionUpdateShipping,
}

// String implements fmt.Stringer.
func (a OrderAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known OrderAction.
func (a OrderAction) IsValid() bool {
	for _, candidate := range validOrderActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOrderAction converts raw input into an OrderAction.
func ParseOrderAction(value string) (OrderAction, error) {
	for _, candidate := range validOrderActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order action %q", value)
}
