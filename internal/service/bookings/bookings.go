package bookings

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/staylytics/backend/internal/store/bookings"
)

var (
	ErrNotFound    = errors.New("booking not found")
	ErrBadBookDate = errors.New("book_date must be formatted YYYY-MM-DD")
)

// SearchFilter holds the optional exact-match filters of the search endpoint.
// Nil fields are not applied; the rest are ANDed.
type SearchFilter struct {
	GuestName    *string
	BookDate     *string
	LengthOfStay *int
}

type BookingsService struct {
	log  *zap.Logger
	repo *bookings.BookingsRepository
}

func NewBookingsService(log *zap.Logger, repo *bookings.BookingsRepository) *BookingsService {
	return &BookingsService{log: log, repo: repo}
}

func (s *BookingsService) List(ctx context.Context, skip, limit int) ([]*bookings.Booking, error) {
	return s.repo.List(ctx, skip, limit)
}

func (s *BookingsService) GetByID(ctx context.Context, id int64) (*bookings.Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *BookingsService) Search(ctx context.Context, filter SearchFilter) ([]*bookings.Booking, error) {
	var bookDate *time.Time
	if filter.BookDate != nil {
		t, err := time.Parse("2006-01-02", *filter.BookDate)
		if err != nil {
			return nil, ErrBadBookDate
		}
		bookDate = &t
	}

	results, err := s.repo.Search(ctx, filter.GuestName, bookDate, filter.LengthOfStay)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results, nil
}
