package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/staylytics/backend/internal/dataset"
	"github.com/staylytics/backend/internal/metrics"
	"github.com/staylytics/backend/internal/store/bookings"
)

// BookingWriter persists a fully normalized booking table, replacing any
// previous contents.
type BookingWriter interface {
	ReplaceAll(ctx context.Context, rows []*bookings.Booking) error
}

// Publisher emits ingest events. Best effort; failures are logged, never
// surfaced to the uploader.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// RowError marks a derivation failure on a specific upload row.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

type Result struct {
	Message string `json:"message"`
	Rows    int    `json:"rows"`
	Version string `json:"version"`
}

// IngestService turns uploaded CSV data into the persisted bookings table and
// the cached raw dataset. A single-writer lock keeps the two replacements in
// lockstep, so analytics always sees a table and snapshot from the same upload.
type IngestService struct {
	log      *zap.Logger
	store    *dataset.Store
	bookings BookingWriter
	prod     Publisher

	mu sync.Mutex
}

func NewIngestService(log *zap.Logger, store *dataset.Store, bookings BookingWriter, prod Publisher) *IngestService {
	return &IngestService{log: log, store: store, bookings: bookings, prod: prod}
}

// Ready reports whether an upload has completed since process start. Read
// endpoints refuse to serve until it returns true.
func (s *IngestService) Ready() bool {
	return s.store.Ready()
}

// Run executes the whole pipeline: decode, derive, replace table, swap cache.
func (s *IngestService) Run(ctx context.Context, r io.Reader, filename string) (*Result, error) {
	start := time.Now()

	rows, raw, err := dataset.Decode(r)
	if err != nil {
		metrics.IngestsTotal.WithLabelValues("decode_error").Inc()
		return nil, err
	}

	normalized, err := Normalize(rows)
	if err != nil {
		metrics.IngestsTotal.WithLabelValues("derive_error").Inc()
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.bookings.ReplaceAll(ctx, normalized); err != nil {
		metrics.IngestsTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("replace bookings: %w", err)
	}

	snap, err := s.store.Swap(rows, raw, filename)
	if err != nil {
		metrics.IngestsTotal.WithLabelValues("cache_error").Inc()
		return nil, fmt.Errorf("cache upload: %w", err)
	}

	metrics.IngestsTotal.WithLabelValues("success").Inc()
	metrics.IngestRows.Observe(float64(len(rows)))
	metrics.IngestDuration.Observe(time.Since(start).Seconds())

	if s.prod != nil {
		payload := map[string]any{
			"type":     "dataset.ingested",
			"version":  snap.Version,
			"rows":     len(rows),
			"filename": snap.Filename,
		}
		by, _ := json.Marshal(payload)
		if err := s.prod.Publish(ctx, []byte(snap.Version), by); err != nil {
			s.log.Error("kafka publish error", zap.Error(err))
		}
	}

	s.log.Info("dataset ingested",
		zap.String("version", snap.Version),
		zap.String("filename", snap.Filename),
		zap.Int("rows", len(rows)),
	)

	return &Result{
		Message: "CSV file processed and data saved successfully",
		Rows:    len(rows),
		Version: snap.Version,
	}, nil
}

// Normalize derives the persisted booking record for every raw row. The row
// position becomes the booking id. A single bad row fails the whole upload.
func Normalize(rows []dataset.RawBooking) ([]*bookings.Booking, error) {
	normalized := make([]*bookings.Booking, len(rows))
	for i, row := range rows {
		bookingDate, err := row.BookingDate()
		if err != nil {
			return nil, &RowError{Row: i, Err: err}
		}
		normalized[i] = &bookings.Booking{
			ID:           int64(i),
			BookingDate:  bookingDate,
			LengthOfStay: row.LengthOfStay(),
			GuestName:    row.GuestName,
			DailyRate:    row.DailyRate,
		}
	}
	return normalized, nil
}
