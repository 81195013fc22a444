package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
)

// RawBooking is one row of an uploaded hotel-booking CSV. Columns beyond the
// required set decode as zero values when absent.
type RawBooking struct {
	Hotel           string  `csv:"hotel" json:"hotel"`
	IsCanceled      int     `csv:"is_canceled" json:"is_canceled"`
	LeadTime        int     `csv:"lead_time" json:"lead_time"`
	ArrivalYear     int     `csv:"arrival_date_year" json:"arrival_date_year"`
	ArrivalMonth    string  `csv:"arrival_date_month" json:"arrival_date_month"`
	ArrivalDay      int     `csv:"arrival_date_day_of_month" json:"arrival_date_day_of_month"`
	WeekendNights   int     `csv:"stays_in_weekend_nights" json:"stays_in_weekend_nights"`
	WeekNights      int     `csv:"stays_in_week_nights" json:"stays_in_week_nights"`
	Adults          int     `csv:"adults" json:"adults"`
	Children        float64 `csv:"children" json:"children"`
	Babies          int     `csv:"babies" json:"babies"`
	Meal            string  `csv:"meal" json:"meal"`
	Country         string  `csv:"country" json:"country"`
	IsRepeatedGuest int     `csv:"is_repeated_guest" json:"is_repeated_guest"`
	DailyRate       float64 `csv:"adr" json:"adr"`
	GuestName       string  `csv:"name" json:"name"`
}

// requiredColumns must be present in every upload; the ingestion pipeline
// cannot derive the normalized booking record without them.
var requiredColumns = []string{
	"name", "adr", "stays_in_weekend_nights", "stays_in_week_nights",
	"arrival_date_year", "arrival_date_month", "arrival_date_day_of_month",
	"hotel", "lead_time",
}

// ErrMalformed tags every data-shape failure of an upload, so the HTTP layer
// can answer 422 instead of treating it as an internal error.
var ErrMalformed = errors.New("malformed upload")

// MissingColumnsError reports required CSV columns absent from an upload.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("csv is missing required columns: %v", e.Columns)
}

func (e *MissingColumnsError) Unwrap() error { return ErrMalformed }

// Decode reads the full upload and parses it into raw booking rows. The
// original bytes are returned alongside so they can be cached verbatim.
func Decode(r io.Reader) ([]RawBooking, []byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	if err := checkRequiredColumns(raw); err != nil {
		return nil, nil, err
	}

	var rows []RawBooking
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, nil, fmt.Errorf("csv decode: %v: %w", err, ErrMalformed)
	}

	return rows, raw, nil
}

func checkRequiredColumns(raw []byte) error {
	header, err := csv.NewReader(bytes.NewReader(raw)).Read()
	if err != nil {
		return fmt.Errorf("csv header: %v: %w", err, ErrMalformed)
	}

	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[name] = true
	}

	var missing []string
	for _, name := range requiredColumns {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

// MonthNumber converts an English month name ("July") to its calendar number.
func MonthNumber(name string) (time.Month, error) {
	t, err := time.Parse("January", name)
	if err != nil {
		return 0, fmt.Errorf("unparseable month name %q: %w", name, ErrMalformed)
	}
	return t.Month(), nil
}

// ArrivalDate reconstructs the arrival date from the year/month-name/day parts.
func (r RawBooking) ArrivalDate() (time.Time, error) {
	month, err := MonthNumber(r.ArrivalMonth)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(r.ArrivalYear, month, r.ArrivalDay, 0, 0, 0, 0, time.UTC), nil
}

// BookingDate back-calculates the booking date as arrival minus lead time.
func (r RawBooking) BookingDate() (time.Time, error) {
	arrival, err := r.ArrivalDate()
	if err != nil {
		return time.Time{}, err
	}
	return arrival.AddDate(0, 0, -r.LeadTime), nil
}

// LengthOfStay is the total nights booked.
func (r RawBooking) LengthOfStay() int {
	return r.WeekendNights + r.WeekNights
}

// TotalGuests counts adults, children and babies on the booking.
func (r RawBooking) TotalGuests() int {
	return r.Adults + int(r.Children) + r.Babies
}
