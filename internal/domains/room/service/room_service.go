package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/config"
	"library-backend/internal/domains/room/model"
	"library-backend/internal/domains/room/repository"
	"library-backend/pkg/database"
	"library-backend/pkg/logger"
)

type roomService struct {
	repo      repository.RepositoryInterface
	txManager database.TxManager
	cfg       config.RoomConfig
	now       func() time.Time
}

// NewService creates a new room booking service
func NewService(
	repo repository.RepositoryInterface,
	txManager database.TxManager,
	cfg config.RoomConfig,
	now func() time.Time,
) ServiceInterface {
	return &roomService{
		repo:      repo,
		txManager: txManager,
		cfg:       cfg,
		now:       now,
	}
}

// AddRoom implements ServiceInterface.AddRoom
func (s *roomService) AddRoom(ctx context.Context, req model.AddRoomRequest) (*model.Room, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	room := &model.Room{
		ID:        uuid.New(),
		Name:      req.Name,
		Capacity:  req.Capacity,
		Features:  req.Features,
		Status:    model.RoomStatusAvailable,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	logger.Info("room created", map[string]interface{}{
		"room_id":  room.ID,
		"name":     room.Name,
		"capacity": room.Capacity,
	})

	return room, nil
}

// GetRoom implements ServiceInterface.GetRoom
func (s *roomService) GetRoom(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	return s.repo.GetRoom(ctx, id)
}

// ListRooms implements ServiceInterface.ListRooms
func (s *roomService) ListRooms(ctx context.Context) ([]model.Room, error) {
	return s.repo.ListRooms(ctx)
}

// Book implements ServiceInterface.Book
func (s *roomService) Book(ctx context.Context, req model.BookRoomRequest) (*model.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()

	// A rejection must not roll back the expiry sweep done on the way in,
	// so business outcomes are carried out of the transaction separately.
	var denied error
	var booking *model.Booking
	err := s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		room, err := s.repo.GetRoomForUpdate(ctx, req.RoomID)
		if err != nil {
			return err
		}

		// A booking whose interval already passed frees the room before
		// the checks below see it.
		room, err = s.finalizeExpired(ctx, room, now)
		if err != nil {
			return err
		}

		switch {
		case room.Status != model.RoomStatusAvailable:
			denied = model.ErrRoomNotAvailable
		case req.StartTime.Before(now) || !req.StartTime.Before(req.EndTime):
			denied = model.ErrInvalidInterval
		case req.StartTime.After(now.Add(s.cfg.MaxAdvanceWindow)):
			denied = model.ErrTooFarAhead
		case req.EndTime.After(s.closingBoundary(req.StartTime)):
			denied = model.ErrPastClosingTime
		case req.PartySize > room.Capacity || req.PartySize < s.cfg.MinPartySize:
			denied = model.ErrCapacityExceeded
		}
		if denied != nil {
			return nil
		}

		// Written generally over every live booking rather than just the
		// current holder, so it stays correct if a room ever admits more
		// than one.
		live, err := s.repo.ListLiveBookings(ctx, room.ID)
		if err != nil {
			return err
		}
		for i := range live {
			if live[i].OverlapsInterval(req.StartTime, req.EndTime) {
				denied = model.ErrBookingOverlap
				return nil
			}
		}

		booking = &model.Booking{
			ID:         uuid.New(),
			RoomID:     room.ID,
			BorrowerID: req.BorrowerID,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			PartySize:  req.PartySize,
			Purpose:    req.Purpose,
			Status:     model.BookingStatusActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.CreateBooking(ctx, booking); err != nil {
			return err
		}

		return s.repo.UpdateRoomStatus(ctx, room.ID, model.RoomStatusOccupied, room.Version)
	})
	if err != nil {
		return nil, err
	}
	if denied != nil {
		return nil, denied
	}

	logger.Info("room booked", map[string]interface{}{
		"booking_id":  booking.ID,
		"room_id":     booking.RoomID,
		"borrower_id": booking.BorrowerID,
		"start_time":  booking.StartTime,
		"end_time":    booking.EndTime,
	})

	return booking, nil
}

// EndEarly implements ServiceInterface.EndEarly
func (s *roomService) EndEarly(ctx context.Context, roomID, borrowerID uuid.UUID) error {
	return s.releaseBooking(ctx, roomID, borrowerID, model.BookingStatusEnded)
}

// Cancel implements ServiceInterface.Cancel
func (s *roomService) Cancel(ctx context.Context, roomID, borrowerID uuid.UUID) error {
	return s.releaseBooking(ctx, roomID, borrowerID, model.BookingStatusCancelled)
}

func (s *roomService) releaseBooking(ctx context.Context, roomID, borrowerID uuid.UUID, terminal model.BookingStatus) error {
	now := s.now()

	// A rejection must not roll back an expiry sweep done on the way in, so
	// business outcomes are carried out of the transaction separately.
	var denied error
	err := s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		room, err := s.repo.GetRoomForUpdate(ctx, roomID)
		if err != nil {
			return err
		}

		room, err = s.finalizeExpired(ctx, room, now)
		if err != nil {
			return err
		}

		booking, err := s.repo.GetActiveBooking(ctx, roomID)
		if err != nil {
			if errors.Is(err, model.ErrNoActiveBooking) {
				denied = err
				return nil
			}
			return err
		}
		if booking.BorrowerID != borrowerID {
			denied = model.ErrNotCurrentHolder
			return nil
		}

		if err := s.repo.FinalizeBooking(ctx, booking.ID, model.BookingStatusActive, terminal); err != nil {
			return err
		}

		if room.Status == model.RoomStatusOccupied {
			return s.repo.UpdateRoomStatus(ctx, roomID, model.RoomStatusAvailable, room.Version)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if denied != nil {
		return denied
	}

	logger.Info("booking released", map[string]interface{}{
		"room_id":     roomID,
		"borrower_id": borrowerID,
		"status":      terminal,
	})

	return nil
}

// CurrentBooking implements ServiceInterface.CurrentBooking
func (s *roomService) CurrentBooking(ctx context.Context, roomID uuid.UUID) (*model.Booking, error) {
	now := s.now()

	var booking *model.Booking
	err := s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		room, err := s.repo.GetRoomForUpdate(ctx, roomID)
		if err != nil {
			return err
		}

		if _, err := s.finalizeExpired(ctx, room, now); err != nil {
			return err
		}

		b, err := s.repo.GetActiveBooking(ctx, roomID)
		if err != nil {
			// Leaving the sweep committed matters here: an expired booking
			// must stay finalized even though there is nothing to return.
			if errors.Is(err, model.ErrNoActiveBooking) {
				return nil
			}
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, model.ErrNoActiveBooking
	}

	return booking, nil
}

// History implements ServiceInterface.History
func (s *roomService) History(ctx context.Context, roomID uuid.UUID) ([]model.Booking, error) {
	if _, err := s.repo.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.repo.ListBookings(ctx, roomID)
}

// finalizeExpired closes live bookings whose interval has passed and frees
// the room. Expiry is detected here, on the read path, not by a scheduler.
// Returns the room with its state as of after the sweep.
func (s *roomService) finalizeExpired(ctx context.Context, room *model.Room, now time.Time) (*model.Room, error) {
	live, err := s.repo.ListLiveBookings(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	expired := 0
	for i := range live {
		if !live[i].Expired(now) {
			continue
		}
		if err := s.repo.FinalizeBooking(ctx, live[i].ID, model.BookingStatusActive, model.BookingStatusCompleted); err != nil {
			return nil, err
		}
		expired++
	}

	if expired == 0 || expired < len(live) || room.Status != model.RoomStatusOccupied {
		return room, nil
	}

	if err := s.repo.UpdateRoomStatus(ctx, room.ID, model.RoomStatusAvailable, room.Version); err != nil {
		return nil, err
	}

	updated := *room
	updated.Status = model.RoomStatusAvailable
	updated.Version++

	logger.Debug("expired booking finalized", map[string]interface{}{
		"room_id": room.ID,
		"count":   expired,
	})

	return &updated, nil
}

// closingBoundary is the instant the building closes on the booking's day.
// A closing hour of 24 rolls over to midnight of the next day.
func (s *roomService) closingBoundary(start time.Time) time.Time {
	y, m, d := start.Date()
	return time.Date(y, m, d, s.cfg.ClosingHour, 0, 0, 0, start.Location())
}
