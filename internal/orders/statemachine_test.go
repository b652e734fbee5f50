package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omarhijazi/souqline-backend/pkg/enums"
)

func TestIsValidTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    enums.OrderStatus
		to      enums.OrderStatus
		allowed bool
	}{
		{"pending to confirmed", enums.OrderStatusPending, enums.OrderStatusConfirmed, true},
		{"pending to cancelled", enums.OrderStatusPending, enums.OrderStatusCancelled, true},
		{"pending to processing", enums.OrderStatusPending, enums.OrderStatusProcessing, false},
		{"pending to shipped", enums.OrderStatusPending, enums.OrderStatusShipped, false},
		{"confirmed to processing", enums.OrderStatusConfirmed, enums.OrderStatusProcessing, true},
		{"confirmed to shipped shortcut", enums.OrderStatusConfirmed, enums.OrderStatusShipped, true},
		{"confirmed to ready", enums.OrderStatusConfirmed, enums.OrderStatusReadyForShipping, true},
		{"confirmed to delivered", enums.OrderStatusConfirmed, enums.OrderStatusDelivered, false},
		{"processing to shipped", enums.OrderStatusProcessing, enums.OrderStatusShipped, true},
		{"processing to confirmed", enums.OrderStatusProcessing, enums.OrderStatusConfirmed, false},
		{"ready to shipped", enums.OrderStatusReadyForShipping, enums.OrderStatusShipped, true},
		{"shipped to out for delivery", enums.OrderStatusShipped, enums.OrderStatusOutForDelivery, true},
		{"shipped to delivered", enums.OrderStatusShipped, enums.OrderStatusDelivered, true},
		{"shipped to returned", enums.OrderStatusShipped, enums.OrderStatusReturned, true},
		{"shipped to cancelled", enums.OrderStatusShipped, enums.OrderStatusCancelled, false},
		{"out for delivery to delivered", enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered, true},
		{"delivered to returned", enums.OrderStatusDelivered, enums.OrderStatusReturned, true},
		{"delivered to cancelled", enums.OrderStatusDelivered, enums.OrderStatusCancelled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, IsValidTransition(tc.from, tc.to))
		})
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	terminal := []enums.OrderStatus{
		enums.OrderStatusCancelled,
		enums.OrderStatusReturned,
		enums.OrderStatusRefunded,
	}
	all := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusConfirmed,
		enums.OrderStatusProcessing,
		enums.OrderStatusReadyForShipping,
		enums.OrderStatusShipped,
		enums.OrderStatusOutForDelivery,
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
		enums.OrderStatusReturned,
		enums.OrderStatusRefunded,
	}

	for _, from := range terminal {
		assert.Empty(t, transitionTable[from], "terminal status %s must have no outgoing edges", from)
		for _, to := range all {
			assert.False(t, IsValidTransition(from, to), "%s -> %s must be rejected", from, to)
		}
	}
}

func TestStatusForAction(t *testing.T) {
	cases := []struct {
		action enums.OrderAction
		status enums.OrderStatus
		ok     bool
	}{
		{enums.OrderActionConfirm, enums.OrderStatusConfirmed, true},
		{enums.OrderActionProcess, enums.OrderStatusProcessing, true},
		{enums.OrderActionShip, enums.OrderStatusShipped, true},
		{enums.OrderActionDeliver, enums.OrderStatusDelivered, true},
		{enums.OrderActionCancel, enums.OrderStatusCancelled, true},
		{enums.OrderActionReturn, enums.OrderStatusReturned, true},
		{enums.OrderActionUpdateShipping, "", false},
	}
	for _, tc := range cases {
		status, ok := StatusForAction(tc.action)
		assert.Equal(t, tc.ok, ok, "action %s", tc.action)
		assert.Equal(t, tc.status, status, "action %s", tc.action)
	}
}
