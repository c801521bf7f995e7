package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/clock"
	catalogModel "library-backend/internal/domains/catalog/model"
	catalogRepo "library-backend/internal/domains/catalog/repository"
	roomModel "library-backend/internal/domains/room/model"
	roomRepo "library-backend/internal/domains/room/repository"
	unitModel "library-backend/internal/domains/unit/model"
	unitRepo "library-backend/internal/domains/unit/repository"
)

type fixture struct {
	clk     *clock.Fake
	catalog *catalogRepo.MemoryRepository
	units   *unitRepo.MemoryRepository
	rooms   *roomRepo.MemoryRepository
	svc     ServiceInterface
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clk:     clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		catalog: catalogRepo.NewMemory(),
		units:   unitRepo.NewMemory(),
		rooms:   roomRepo.NewMemory(),
	}
	f.svc = NewService(f.catalog, f.units, f.rooms, f.clk.Now)
	return f
}

func (f *fixture) seedTitle(t *testing.T) uuid.UUID {
	t.Helper()

	title := &catalogModel.Title{
		ID:     uuid.New(),
		Name:   "Snow Crash",
		Author: "Neal Stephenson",
	}
	require.NoError(t, f.catalog.Create(context.Background(), title))
	return title.ID
}

func (f *fixture) seedUnit(t *testing.T, titleID uuid.UUID, status string) {
	t.Helper()

	require.NoError(t, f.units.Create(context.Background(), &unitModel.Unit{
		ID:        uuid.New(),
		TitleID:   titleID,
		Status:    status,
		Condition: unitModel.ConditionGood,
		Version:   1,
		CreatedAt: f.clk.Now(),
		UpdatedAt: f.clk.Now(),
	}))
}

func TestTitleAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	titleID := f.seedTitle(t)

	f.seedUnit(t, titleID, unitModel.StatusAvailable)
	f.seedUnit(t, titleID, unitModel.StatusAvailable)
	f.seedUnit(t, titleID, unitModel.StatusBorrowed)
	f.seedUnit(t, titleID, unitModel.StatusMaintenance)
	f.seedUnit(t, titleID, unitModel.StatusLost)

	got, err := f.svc.TitleAvailability(ctx, titleID)
	require.NoError(t, err)
	assert.Equal(t, "Snow Crash", got.Name)
	assert.Equal(t, 5, got.Total)
	assert.Equal(t, 2, got.Available)
	assert.Equal(t, 1, got.Counts.Borrowed)
	assert.Equal(t, 1, got.Counts.Maintenance)
	assert.Equal(t, 1, got.Counts.Lost)
}

func TestTitleAvailabilityUnknownTitle(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.TitleAvailability(context.Background(), uuid.New())
	assert.ErrorIs(t, err, catalogModel.ErrTitleNotFound)
}

func seedRoom(t *testing.T, repo *roomRepo.MemoryRepository, status roomModel.RoomStatus) uuid.UUID {
	t.Helper()

	room := &roomModel.Room{
		ID:       uuid.New(),
		Name:     "Quiet Room",
		Capacity: 6,
		Status:   status,
		Version:  1,
	}
	require.NoError(t, repo.CreateRoom(context.Background(), room))
	return room.ID
}

func TestRoomAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("room without bookings is available", func(t *testing.T) {
		f := newFixture(t)
		roomID := seedRoom(t, f.rooms, roomModel.RoomStatusAvailable)

		got, err := f.svc.RoomAvailability(ctx, roomID, f.clk.Now())
		require.NoError(t, err)
		assert.Equal(t, roomModel.RoomStatusAvailable, got.Status)
		assert.Nil(t, got.BusyUntil)
	})

	t.Run("live booking makes the room occupied", func(t *testing.T) {
		f := newFixture(t)
		roomID := seedRoom(t, f.rooms, roomModel.RoomStatusOccupied)
		end := f.clk.Now().Add(2 * time.Hour)

		require.NoError(t, f.rooms.CreateBooking(ctx, &roomModel.Booking{
			ID:        uuid.New(),
			RoomID:    roomID,
			StartTime: f.clk.Now().Add(time.Hour),
			EndTime:   end,
			Status:    roomModel.BookingStatusActive,
		}))

		got, err := f.svc.RoomAvailability(ctx, roomID, f.clk.Now())
		require.NoError(t, err)
		assert.Equal(t, roomModel.RoomStatusOccupied, got.Status)
		require.NotNil(t, got.BusyUntil)
		assert.Equal(t, end, *got.BusyUntil)
	})

	t.Run("expired booking reads available without being mutated", func(t *testing.T) {
		f := newFixture(t)
		roomID := seedRoom(t, f.rooms, roomModel.RoomStatusOccupied)

		booking := &roomModel.Booking{
			ID:        uuid.New(),
			RoomID:    roomID,
			StartTime: f.clk.Now().Add(-2 * time.Hour),
			EndTime:   f.clk.Now().Add(-time.Hour),
			Status:    roomModel.BookingStatusActive,
		}
		require.NoError(t, f.rooms.CreateBooking(ctx, booking))

		got, err := f.svc.RoomAvailability(ctx, roomID, f.clk.Now())
		require.NoError(t, err)
		assert.Equal(t, roomModel.RoomStatusAvailable, got.Status)

		// Projection only: the stored booking is still active and the room
		// row still says occupied until a write path sweeps them.
		live, err := f.rooms.ListLiveBookings(ctx, roomID)
		require.NoError(t, err)
		require.Len(t, live, 1)
		assert.Equal(t, roomModel.BookingStatusActive, live[0].Status)

		room, err := f.rooms.GetRoom(ctx, roomID)
		require.NoError(t, err)
		assert.Equal(t, roomModel.RoomStatusOccupied, room.Status)
	})

	t.Run("maintenance wins over bookings", func(t *testing.T) {
		f := newFixture(t)
		roomID := seedRoom(t, f.rooms, roomModel.RoomStatusMaintenance)

		got, err := f.svc.RoomAvailability(ctx, roomID, f.clk.Now())
		require.NoError(t, err)
		assert.Equal(t, roomModel.RoomStatusMaintenance, got.Status)
	})

	t.Run("zero asOf falls back to the clock", func(t *testing.T) {
		f := newFixture(t)
		roomID := seedRoom(t, f.rooms, roomModel.RoomStatusAvailable)

		got, err := f.svc.RoomAvailability(ctx, roomID, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, f.clk.Now(), got.AsOf)
	})
}
