package model_test

import (
	"testing"

	"stayvista/internal/domains/booking/model"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from model.Status
		to   model.Status
		want bool
	}{
		{model.StatusNone, model.StatusPending, true},
		{model.StatusNone, model.StatusPaid, false},
		{model.StatusPending, model.StatusPaid, true},
		{model.StatusPending, model.StatusCancelled, true},
		{model.StatusPending, model.StatusExpired, true},
		{model.StatusPending, model.StatusFailed, true},
		{model.StatusPaid, model.StatusConfirmed, true},
		{model.StatusPaid, model.StatusRefunded, true},
		{model.StatusConfirmed, model.StatusCancelled, true},
		{model.StatusPending, model.StatusConfirmed, false},
		{model.StatusPaid, model.StatusCancelled, false},
		{model.StatusConfirmed, model.StatusRefunded, false},
		{model.StatusConfirmed, model.StatusPending, false},
		{model.StatusCancelled, model.StatusPending, false},
		{model.StatusExpired, model.StatusPaid, false},
		{model.StatusFailed, model.StatusPending, false},
		{model.StatusRefunded, model.StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, model.CanTransition(tt.from, tt.to))
		})
	}
}

func TestStatus_IsActive(t *testing.T) {
	for _, status := range model.ActiveStatuses() {
		assert.True(t, model.Status(status).IsActive(), status)
	}

	for _, status := range []model.Status{model.StatusCancelled, model.StatusExpired, model.StatusFailed, model.StatusRefunded, model.StatusNone} {
		assert.False(t, status.IsActive(), status)
	}
}
