package service

import (
	"context"
	"time"

	"github.com/iliyamo/meeting-room-reservation/internal/repository"
)

// BookingCounter is the aggregation slice of the booking store used by
// the statistics endpoints.
type BookingCounter interface {
	CountByUser(ctx context.Context, start, end time.Time) ([]repository.UserBookingCount, error)
	CountByRoom(ctx context.Context, start, end time.Time) ([]repository.RoomUsedCount, error)
}

// StatisticService aggregates booking counts over a time range.
type StatisticService struct {
	counter BookingCounter
}

// NewStatisticService constructs a StatisticService.
func NewStatisticService(counter BookingCounter) *StatisticService {
	if counter == nil {
		panic("nil counter passed to NewStatisticService")
	}
	return &StatisticService{counter: counter}
}

// UserBookingCount returns how many bookings each user created with a
// start time inside [start, end].
func (s *StatisticService) UserBookingCount(ctx context.Context, start, end time.Time) ([]repository.UserBookingCount, error) {
	return s.counter.CountByUser(ctx, start, end)
}

// RoomUsedCount returns how many bookings each room received with a
// start time inside [start, end].
func (s *StatisticService) RoomUsedCount(ctx context.Context, start, end time.Time) ([]repository.RoomUsedCount, error) {
	return s.counter.CountByRoom(ctx, start, end)
}
