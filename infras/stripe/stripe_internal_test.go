package stripe

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	stripeGo "github.com/stripe/stripe-go/v76"
)

func TestAlreadyRefunded(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "charge already refunded",
			err:  &stripeGo.Error{Code: stripeGo.ErrorCodeChargeAlreadyRefunded},
			want: true,
		},
		{
			name: "wrapped",
			err:  fmt.Errorf("refund: %w", &stripeGo.Error{Code: stripeGo.ErrorCodeChargeAlreadyRefunded}),
			want: true,
		},
		{
			name: "other stripe error",
			err:  &stripeGo.Error{Code: stripeGo.ErrorCodeResourceMissing},
		},
		{
			name: "network error",
			err:  errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, alreadyRefunded(tt.err))
		})
	}
}
