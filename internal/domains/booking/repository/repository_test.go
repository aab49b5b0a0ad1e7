package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"stayvista/infras/otel/mocks"
	"stayvista/infras/postgres"
	"stayvista/internal/domains/booking/model"
	"stayvista/internal/domains/booking/repository"
	sharedModel "stayvista/shared/model"
	gRepo "stayvista/shared/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Runs against a migrated database only: TEST_DATABASE_URL=postgres://... go test ./...
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func seedRoom(t *testing.T, db *sqlx.DB) string {
	t.Helper()

	id := uuid.NewString()

	_, err := db.Exec(`INSERT INTO rooms (id, title, location, category, price_cents, available_from, available_to, host_email)
		VALUES ($1, 'Lake cabin', 'Tahoe', 'Lakefront', 12000, '2030-01-01', '2030-12-31', 'host@example.com')`, id)
	require.NoError(t, err)

	t.Cleanup(func() { _, _ = db.Exec(`DELETE FROM rooms WHERE id = $1`, id) })

	return id
}

func pendingBooking(roomID, guest string, checkIn, checkOut time.Time) model.Booking {
	now := time.Now().UTC()
	hold := now.Add(15 * time.Minute)
	nights := int64(checkOut.Sub(checkIn).Hours() / 24)

	return model.Booking{
		ID:            uuid.NewString(),
		RoomID:        roomID,
		GuestEmail:    guest,
		HostEmail:     "host@example.com",
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Nights:        nights,
		PriceCents:    12000,
		TotalCents:    12000 * nights,
		Currency:      "usd",
		Status:        model.StatusPending,
		HoldExpiresAt: &hold,
		Metadata:      sharedModel.Stamp(guest, now),
	}
}

func TestBookingRepository_ConcurrentReserve(t *testing.T) {
	db := openTestDB(t)
	roomID := seedRoom(t, db)
	repo := repository.New(&postgres.Connection{Read: db, Write: db}, mocks.NewOtel())

	checkIn := time.Date(2030, 6, 10, 0, 0, 0, 0, time.UTC)

	const attempts = 8

	var (
		succeeded atomic.Int32
		rejected  atomic.Int32
	)

	group, ctx := errgroup.WithContext(context.Background())

	for i := range attempts {
		group.Go(func() error {
			// every attempt overlaps 2030-06-11
			start := checkIn.AddDate(0, 0, i%2)
			booking := pendingBooking(roomID, fmt.Sprintf("guest%d@example.com", i), start, start.AddDate(0, 0, 2))

			err := repo.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
				return repo.InsertTx(ctx, tx, booking)
			})

			switch {
			case err == nil:
				succeeded.Add(1)
			case gRepo.IsExclusionViolation(err):
				rejected.Add(1)
			default:
				return err
			}

			return nil
		})
	}

	require.NoError(t, group.Wait())
	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(attempts-1), rejected.Load())
}

func TestBookingRepository_ReleasedRangeCanBeRebooked(t *testing.T) {
	db := openTestDB(t)
	roomID := seedRoom(t, db)
	repo := repository.New(&postgres.Connection{Read: db, Write: db}, mocks.NewOtel())
	ctx := context.Background()

	checkIn := time.Date(2030, 8, 1, 0, 0, 0, 0, time.UTC)
	first := pendingBooking(roomID, "first@example.com", checkIn, checkIn.AddDate(0, 0, 3))

	insert := func(b model.Booking) error {
		return repo.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
			return repo.InsertTx(ctx, tx, b)
		})
	}

	require.NoError(t, insert(first))

	// check-out day is free for the next guest
	require.NoError(t, insert(pendingBooking(roomID, "next@example.com", checkIn.AddDate(0, 0, 3), checkIn.AddDate(0, 0, 5))))

	err := insert(pendingBooking(roomID, "second@example.com", checkIn.AddDate(0, 0, 1), checkIn.AddDate(0, 0, 2)))
	require.Error(t, err)
	assert.True(t, gRepo.IsExclusionViolation(err))

	_, err = db.Exec(`UPDATE bookings SET status = 'cancelled' WHERE id = $1`, first.ID)
	require.NoError(t, err)

	assert.NoError(t, insert(pendingBooking(roomID, "second@example.com", checkIn.AddDate(0, 0, 1), checkIn.AddDate(0, 0, 2))))
}
