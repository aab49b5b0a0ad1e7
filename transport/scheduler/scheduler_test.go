package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"stayvista/config"
	"stayvista/infras/otel/mocks"
	bookingMocks "stayvista/internal/domains/booking/mocks"
	"stayvista/shared"
	"stayvista/shared/constant"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestScheduler_Sweep(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(booking *bookingMocks.MockBookingService)
	}{
		{
			name: "sweeps as the system actor",
			setupMock: func(booking *bookingMocks.MockBookingService) {
				booking.EXPECT().ExpireHolds(gomock.Any()).DoAndReturn(func(ctx context.Context) (int, error) {
					assert.Equal(t, constant.ContextSystem, shared.ActorEmail(ctx))

					return 2, nil
				})
				booking.EXPECT().SettleRefunds(gomock.Any()).DoAndReturn(func(ctx context.Context) (int, error) {
					assert.Equal(t, constant.ContextSystem, shared.ActorEmail(ctx))

					return 1, nil
				})
			},
		},
		{
			name: "failed expiry still settles refunds",
			setupMock: func(booking *bookingMocks.MockBookingService) {
				booking.EXPECT().ExpireHolds(gomock.Any()).Return(0, errors.New("connection reset"))
				booking.EXPECT().SettleRefunds(gomock.Any()).Return(0, nil)
			},
		},
		{
			name: "failed settlement is logged and swallowed",
			setupMock: func(booking *bookingMocks.MockBookingService) {
				booking.EXPECT().ExpireHolds(gomock.Any()).Return(0, nil)
				booking.EXPECT().SettleRefunds(gomock.Any()).Return(0, errors.New("connection reset"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			booking := bookingMocks.NewMockBookingService(ctrl)
			tt.setupMock(booking)

			s := New(booking, &config.Config{}, mocks.NewOtel())

			s.Sweep(context.Background())
		})
	}
}

func TestScheduler_StartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	booking := bookingMocks.NewMockBookingService(ctrl)

	swept := make(chan struct{}, 1)

	booking.EXPECT().ExpireHolds(gomock.Any()).DoAndReturn(func(context.Context) (int, error) {
		select {
		case swept <- struct{}{}:
		default:
		}

		return 0, nil
	}).MinTimes(1)
	booking.EXPECT().SettleRefunds(gomock.Any()).Return(0, nil).MinTimes(1)

	s := New(booking, &config.Config{}, mocks.NewOtel())
	s.interval = 5 * time.Millisecond

	s.Start(context.Background())
	s.Start(context.Background())

	select {
	case <-swept:
	case <-time.After(time.Second):
		t.Fatal("scheduler never swept")
	}

	s.Stop()
	s.Stop()
}

func TestScheduler_DefaultInterval(t *testing.T) {
	s := New(nil, &config.Config{}, mocks.NewOtel())
	assert.Equal(t, defaultSweepInterval, s.interval)

	cfg := &config.Config{}
	cfg.Booking.ExpirySweepSeconds = 30

	s = New(nil, cfg, mocks.NewOtel())
	assert.Equal(t, 30*time.Second, s.interval)
}
