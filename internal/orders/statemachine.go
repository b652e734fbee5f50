package orders

import "github.com/omarhijazi/souqline-backend/pkg/enums"

// transitionTable is the full lifecycle graph. Terminal states have no entry.
// confirmed -> shipped is deliberately allowed so admins can ship directly
// without walking through processing/ready_for_shipping.
var transitionTable = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {
		enums.OrderStatusConfirmed,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusConfirmed: {
		enums.OrderStatusProcessing,
		enums.OrderStatusReadyForShipping,
		enums.OrderStatusShipped,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusProcessing: {
		enums.OrderStatusReadyForShipping,
		enums.OrderStatusShipped,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusReadyForShipping: {
		enums.OrderStatusShipped,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusOutForDelivery,
		enums.OrderStatusDelivered,
		enums.OrderStatusReturned,
	},
	enums.OrderStatusOutForDelivery: {
		enums.OrderStatusDelivered,
		enums.OrderStatusReturned,
	},
	enums.OrderStatusDelivered: {
		enums.OrderStatusReturned,
	},
}

// IsValidTransition reports whether the lifecycle graph permits moving from
// current to requested. Pure table lookup, no side effects.
func IsValidTransition(current, requested enums.OrderStatus) bool {
	for _, candidate := range transitionTable[current] {
		if candidate == requested {
			return true
		}
	}
	return false
}

// StatusForAction maps a client-requested action to its target status.
// ActionUpdateShipping has no target: it never passes through the state
// machine and ok is false.
func StatusForAction(action enums.OrderAction) (enums.OrderStatus, bool) {
	switch action {
	case enums.OrderActionConfirm:
		return enums.OrderStatusConfirmed, true
	case enums.OrderActionProcess:
		return enums.OrderStatusProcessing, true
	case enums.OrderActionShip:
		return enums.OrderStatusShipped, true
	case enums.OrderActionDeliver:
		return enums.OrderStatusDelivered, true
	case enums.OrderActionCancel:
		return enums.OrderStatusCancelled, true
	case enums.OrderActionReturn:
		return enums.OrderStatusReturned, true
	default:
		return "", false
	}
}
