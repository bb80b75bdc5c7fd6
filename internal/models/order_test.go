package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{OrderPending, OrderProcessing},
		{OrderPending, OrderCancelled},
		{OrderProcessing, OrderCompleted},
		{OrderProcessing, OrderCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc[0], tc[1]), "%s -> %s should be allowed", tc[0], tc[1])
	}

	denied := [][2]string{
		{OrderPending, OrderCompleted},
		{OrderProcessing, OrderPending},
		{OrderCompleted, OrderProcessing},
		{OrderCompleted, OrderCancelled},
		{OrderCancelled, OrderPending},
		{OrderCancelled, OrderCompleted},
		{OrderPending, OrderPending},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc[0], tc[1]), "%s -> %s should be denied", tc[0], tc[1])
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{OrderPending, OrderProcessing, OrderCompleted, OrderCancelled} {
		assert.True(t, ValidOrderStatus(s))
	}
	assert.False(t, ValidOrderStatus("shipped"))
	assert.False(t, ValidOrderStatus(""))
}
