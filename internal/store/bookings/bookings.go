package bookings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/staylytics/backend/internal/store"
)

type Booking struct {
	ID           int64     `json:"id"`
	BookingDate  time.Time `json:"booking_date"`
	LengthOfStay int       `json:"length_of_stay"`
	GuestName    string    `json:"guest_name"`
	DailyRate    float64   `json:"daily_rate"`
}

// MarshalJSON renders booking_date as a plain calendar date.
func (b Booking) MarshalJSON() ([]byte, error) {
	type alias Booking
	return json.Marshal(struct {
		alias
		BookingDate string `json:"booking_date"`
	}{alias(b), b.BookingDate.Format("2006-01-02")})
}

// Stats summarizes the persisted bookings table.
type Stats struct {
	NumberOfBookings    int      `json:"number_of_bookings"`
	AverageLengthOfStay float64  `json:"average_length_of_stay"`
	AverageDailyRate    float64  `json:"average_daily_rate"`
	TenMostCommonGuests []string `json:"ten_most_common_guests"`
	TenMostPopularDates []string `json:"ten_most_popular_dates"`
}

type BookingsRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewBookingsRepository(db *store.DB, log *zap.Logger) *BookingsRepository {
	return &BookingsRepository{db: db, log: log}
}

// ReplaceAll rewrites the bookings table with the given rows in a single
// transaction, so readers see either the previous upload or the new one.
func (r *BookingsRepository) ReplaceAll(ctx context.Context, rows []*Booking) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM bookings`); err != nil {
			return err
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"bookings"},
			[]string{"id", "booking_date", "length_of_stay", "guest_name", "daily_rate"},
			pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
				b := rows[i]
				return []any{b.ID, b.BookingDate, b.LengthOfStay, b.GuestName, b.DailyRate}, nil
			}),
		)
		return err
	})
}

func (r *BookingsRepository) List(ctx context.Context, skip, limit int) ([]*Booking, error) {
	query := `
		SELECT id, booking_date, length_of_stay, guest_name, daily_rate
		FROM bookings
		ORDER BY id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Pool.Query(ctx, query, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *BookingsRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	query := `
		SELECT id, booking_date, length_of_stay, guest_name, daily_rate
		FROM bookings
		WHERE id = $1`

	b := &Booking{}
	err := r.db.Pool.QueryRow(ctx, query, id).
		Scan(&b.ID, &b.BookingDate, &b.LengthOfStay, &b.GuestName, &b.DailyRate)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return b, nil
}

// GetByIDs returns the bookings with the given ids, ordered by id.
func (r *BookingsRepository) GetByIDs(ctx context.Context, ids []int64) ([]*Booking, error) {
	query := `
		SELECT id, booking_date, length_of_stay, guest_name, daily_rate
		FROM bookings
		WHERE id = ANY($1)
		ORDER BY id`

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Search applies the given exact-match filters; nil filters are skipped.
func (r *BookingsRepository) Search(ctx context.Context, guestName *string, bookDate *time.Time, lengthOfStay *int) ([]*Booking, error) {
	query := `
		SELECT id, booking_date, length_of_stay, guest_name, daily_rate
		FROM bookings
		WHERE ($1::text IS NULL OR guest_name = $1)
		  AND ($2::date IS NULL OR booking_date = $2)
		  AND ($3::int  IS NULL OR length_of_stay = $3)
		ORDER BY id`

	rows, err := r.db.Pool.Query(ctx, query, guestName, bookDate, lengthOfStay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *BookingsRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Stats computes the summary statistics surfaced by /bookings/stats.
func (r *BookingsRepository) Stats(ctx context.Context) (*Stats, error) {
	s := &Stats{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(length_of_stay), 0),
		       COALESCE(AVG(daily_rate), 0)
		FROM bookings`).
		Scan(&s.NumberOfBookings, &s.AverageLengthOfStay, &s.AverageDailyRate)
	if err != nil {
		return nil, err
	}

	guests, err := r.topValues(ctx, `
		SELECT guest_name FROM bookings
		GROUP BY guest_name ORDER BY COUNT(*) DESC, guest_name LIMIT 10`)
	if err != nil {
		return nil, err
	}
	s.TenMostCommonGuests = guests

	dates, err := r.topValues(ctx, `
		SELECT to_char(booking_date, 'YYYY-MM-DD') FROM bookings
		GROUP BY booking_date ORDER BY COUNT(*) DESC, booking_date LIMIT 10`)
	if err != nil {
		return nil, err
	}
	s.TenMostPopularDates = dates

	return s, nil
}

func (r *BookingsRepository) topValues(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func scanBookings(rows pgx.Rows) ([]*Booking, error) {
	var bookings []*Booking
	for rows.Next() {
		b := &Booking{}
		err := rows.Scan(&b.ID, &b.BookingDate, &b.LengthOfStay, &b.GuestName, &b.DailyRate)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
