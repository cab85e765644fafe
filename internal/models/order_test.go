package models_test

import (
	"testing"

	"lapak/internal/models"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []models.OrderStatus{
	models.OrderStatusPending,
	models.OrderStatusProcessing,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
	models.OrderStatusCanceled,
}

func TestOrderStatusTransitionTable(t *testing.T) {
	allowed := map[models.OrderStatus][]models.OrderStatus{
		models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCanceled},
		models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCanceled},
		models.OrderStatusShipped:    {models.OrderStatusDelivered},
		models.OrderStatusDelivered:  {},
		models.OrderStatusCanceled:   {},
	}

	// Every pair of states: allowed exactly when the table says so.
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "transition %s -> %s", from, to)
		}
	}
}

func TestOrderStatusTerminalStates(t *testing.T) {
	assert.Empty(t, models.OrderStatusDelivered.AllowedTransitions())
	assert.Empty(t, models.OrderStatusCanceled.AllowedTransitions())
	assert.False(t, models.OrderStatusDelivered.CanTransitionTo(models.OrderStatusDelivered))
}

func TestParseOrderStatus(t *testing.T) {
	status, err := models.ParseOrderStatus("pending")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, status)

	// Case-insensitive against differently cased persisted rows.
	status, err = models.ParseOrderStatus("Shipped")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, status)

	_, err = models.ParseOrderStatus("teleported")
	assert.Error(t, err)

	_, err = models.ParseOrderStatus("")
	assert.Error(t, err)
}
