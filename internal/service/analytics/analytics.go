package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/staylytics/backend/internal/dataset"
	"github.com/staylytics/backend/internal/metrics"
	"github.com/staylytics/backend/internal/store/bookings"
)

const (
	resortHotel = "Resort Hotel"
	cityHotel   = "City Hotel"
)

var (
	ErrNoDataset    = errors.New("no dataset uploaded")
	ErrNotFound     = errors.New("no bookings found")
	ErrEmptyDataset = errors.New("dataset is empty")
)

// BookingReader is the slice of the bookings repository the analytics
// queries need.
type BookingReader interface {
	Stats(ctx context.Context) (*bookings.Stats, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*bookings.Booking, error)
}

// Cache memoizes query results keyed by dataset version. Implementations are
// fail-open: a miss and an unavailable cache look the same.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// AnalyticsService recomputes every aggregate from the raw dataset snapshot
// of the most recent successful ingest. Normalized booking fields come from
// the persisted table, keyed by row id; the two always stem from the same
// upload because ingestion swaps them in lockstep.
type AnalyticsService struct {
	log      *zap.Logger
	store    *dataset.Store
	bookings BookingReader
	cache    Cache
}

func NewAnalyticsService(log *zap.Logger, store *dataset.Store, bookings BookingReader, cache Cache) *AnalyticsService {
	return &AnalyticsService{log: log, store: store, bookings: bookings, cache: cache}
}

func (s *AnalyticsService) snapshot() (*dataset.Snapshot, error) {
	snap, ok := s.store.Current()
	if !ok {
		return nil, ErrNoDataset
	}
	return snap, nil
}

// cached runs fn once per dataset version and query name, memoizing the JSON
// encoded result. Errors are never cached.
func cached[T any](ctx context.Context, s *AnalyticsService, version, name string, fn func() (T, error)) (T, error) {
	var zero T
	key := "analytics:" + version + ":" + name

	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var out T
			if err := json.Unmarshal(raw, &out); err == nil {
				metrics.AnalyticsQueriesTotal.WithLabelValues(name, "hit").Inc()
				return out, nil
			}
		}
	}

	out, err := fn()
	if err != nil {
		return zero, err
	}
	metrics.AnalyticsQueriesTotal.WithLabelValues(name, "miss").Inc()

	if s.cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			s.cache.Set(ctx, key, raw)
		}
	}
	return out, nil
}

// ValueCount is one bucket of a frequency breakdown, descending by count.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// valueCounts mirrors a dataframe value_counts call: frequencies in
// descending order, ties broken by value for determinism.
func valueCounts(values []string) []ValueCount {
	counts := map[string]int{}
	for _, v := range values {
		counts[v]++
	}
	out := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Stats summarizes the persisted bookings table.
func (s *AnalyticsService) Stats(ctx context.Context) (*bookings.Stats, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, snap.Version, "stats", func() (*bookings.Stats, error) {
		return s.bookings.Stats(ctx)
	})
}

// Analysis bundles the frequency breakdowns and per-column descriptive
// statistics of the raw dataset.
type Analysis struct {
	BookingTrendsByMonth []ValueCount           `json:"booking_trends_by_month"`
	MealPackagesTrends   []ValueCount           `json:"meal_packages_trends"`
	GuestDemographics    []ValueCount           `json:"guest_demographics"`
	Analysis             map[string]Description `json:"analysis"`
}

func (s *AnalyticsService) Analysis(ctx context.Context) (*Analysis, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, snap.Version, "analysis", func() (*Analysis, error) {
		months := make([]string, len(snap.Rows))
		meals := make([]string, len(snap.Rows))
		countries := make([]string, len(snap.Rows))
		for i, row := range snap.Rows {
			months[i] = row.ArrivalMonth
			meals[i] = row.Meal
			countries[i] = row.Country
		}
		return &Analysis{
			BookingTrendsByMonth: valueCounts(months),
			MealPackagesTrends:   valueCounts(meals),
			GuestDemographics:    valueCounts(countries),
			Analysis:             describeAll(snap.Rows),
		}, nil
	})
}

// FilterByNationality returns the normalized bookings whose raw rows match
// the given country code.
func (s *AnalyticsService) FilterByNationality(ctx context.Context, country string) ([]*bookings.Booking, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	var ids []int64
	for i, row := range snap.Rows {
		if row.Country == country {
			ids = append(ids, int64(i))
		}
	}
	if len(ids) == 0 {
		return nil, ErrNotFound
	}

	return s.bookings.GetByIDs(ctx, ids)
}

// MealPackage is the most frequent meal package and its frequency.
type MealPackage struct {
	TopMeal   string `json:"top_meal"`
	Frequency int    `json:"frequency"`
}

func (s *AnalyticsService) PopularMealPackage(ctx context.Context) (*MealPackage, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, snap.Version, "popular_meal_package", func() (*MealPackage, error) {
		meals := make([]string, len(snap.Rows))
		for i, row := range snap.Rows {
			meals[i] = row.Meal
		}
		counts := valueCounts(meals)
		if len(counts) == 0 {
			return nil, ErrEmptyDataset
		}
		return &MealPackage{TopMeal: counts[0].Value, Frequency: counts[0].Count}, nil
	})
}

// YearHotelStay is the average length of stay for one booking year and hotel.
type YearHotelStay struct {
	BookingYear  int     `json:"booking_date_year"`
	Hotel        string  `json:"hotel"`
	LengthOfStay float64 `json:"length_of_stay"`
}

func (s *AnalyticsService) AvgLengthOfStay(ctx context.Context) ([]YearHotelStay, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, snap.Version, "avg_length_of_stay", func() ([]YearHotelStay, error) {
		type key struct {
			year  int
			hotel string
		}
		sums := map[key]float64{}
		counts := map[key]int{}
		for _, row := range snap.Rows {
			bookingDate, err := row.BookingDate()
			if err != nil {
				return nil, err
			}
			k := key{year: bookingDate.Year(), hotel: row.Hotel}
			sums[k] += float64(row.LengthOfStay())
			counts[k]++
		}

		out := make([]YearHotelStay, 0, len(sums))
		for k, sum := range sums {
			out = append(out, YearHotelStay{
				BookingYear:  k.year,
				Hotel:        k.hotel,
				LengthOfStay: sum / float64(counts[k]),
			})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].BookingYear != out[j].BookingYear {
				return out[i].BookingYear < out[j].BookingYear
			}
			return out[i].Hotel < out[j].Hotel
		})
		return out, nil
	})
}

// MonthHotelRevenue is the summed revenue for one booking month and hotel,
// canceled bookings excluded.
type MonthHotelRevenue struct {
	BookingMonth string  `json:"booking_date_month"`
	Hotel        string  `json:"hotel"`
	Revenue      float64 `json:"revenue"`
}

func (s *AnalyticsService) TotalRevenue(ctx context.Context) ([]MonthHotelRevenue, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, snap.Version, "total_revenue", func() ([]MonthHotelRevenue, error) {
		type key struct {
			month string
			hotel string
		}
		sums := map[key]float64{}
		for _, row := range snap.Rows {
			if row.IsCanceled != 0 {
				continue
			}
			bookingDate, err := row.BookingDate()
			if err != nil {
				return nil, err
			}
			k := key{month: bookingDate.Month().String(), hotel: row.Hotel}
			sums[k] += row.DailyRate * float64(row.LengthOfStay())
		}

		out := make([]MonthHotelRevenue, 0, len(sums))
		for k, sum := range sums {
			out = append(out, MonthHotelRevenue{BookingMonth: k.month, Hotel: k.hotel, Revenue: sum})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].BookingMonth != out[j].BookingMonth {
				return out[i].BookingMonth < out[j].BookingMonth
			}
			return out[i].Hotel < out[j].Hotel
		})
		return out, nil
	})
}

// TopCountries returns the five countries with the most bookings, descending.
func (s *AnalyticsService) TopCountries(ctx context.Context) ([]ValueCount, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, snap.Version, "top_countries", func() ([]ValueCount, error) {
		countries := make([]string, len(snap.Rows))
		for i, row := range snap.Rows {
			countries[i] = row.Country
		}
		counts := valueCounts(countries)
		if len(counts) > 5 {
			counts = counts[:5]
		}
		return counts, nil
	})
}

// RepeatedGuests is the share of bookings flagged as repeated guests.
type RepeatedGuests struct {
	AllBookings    int     `json:"all_bookings"`
	RepeatedGuests int     `json:"repeated_guests"`
	Percentage     float64 `json:"percentage_of_repeated_guests"`
}

func (s *AnalyticsService) RepeatedGuestsPercentage(ctx context.Context) (*RepeatedGuests, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	// Explicit guard: an empty dataset would divide by zero.
	if len(snap.Rows) == 0 {
		return nil, ErrEmptyDataset
	}
	return cached(ctx, s, snap.Version, "repeated_guests_percentage", func() (*RepeatedGuests, error) {
		repeated := 0
		for _, row := range snap.Rows {
			if row.IsRepeatedGuest == 1 {
				repeated++
			}
		}
		return &RepeatedGuests{
			AllBookings:    len(snap.Rows),
			RepeatedGuests: repeated,
			Percentage:     float64(repeated) / float64(len(snap.Rows)) * 100,
		}, nil
	})
}

// YearGuests is the guest total (adults, children, babies) of one booking year.
type YearGuests struct {
	BookingYear int `json:"booking_date_year"`
	TotalGuests int `json:"total_guests"`
}

func (s *AnalyticsService) TotalGuestsByYear(ctx context.Context) ([]YearGuests, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, snap.Version, "total_guests_by_year", func() ([]YearGuests, error) {
		sums := map[int]int{}
		for _, row := range snap.Rows {
			bookingDate, err := row.BookingDate()
			if err != nil {
				return nil, err
			}
			sums[bookingDate.Year()] += row.TotalGuests()
		}

		out := make([]YearGuests, 0, len(sums))
		for year, total := range sums {
			out = append(out, YearGuests{BookingYear: year, TotalGuests: total})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].BookingYear < out[j].BookingYear })
		return out, nil
	})
}

// MonthRate is the average daily rate of one arrival month.
type MonthRate struct {
	Month     string  `json:"month"`
	DailyRate float64 `json:"adr"`
}

// AvgDailyRateResort averages the daily rate of Resort Hotel bookings by
// arrival month.
func (s *AnalyticsService) AvgDailyRateResort(ctx context.Context) ([]MonthRate, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, snap.Version, "avg_daily_rate_resort", func() ([]MonthRate, error) {
		sums := map[string]float64{}
		counts := map[string]int{}
		for _, row := range snap.Rows {
			if row.Hotel != resortHotel {
				continue
			}
			sums[row.ArrivalMonth] += row.DailyRate
			counts[row.ArrivalMonth]++
		}

		out := make([]MonthRate, 0, len(sums))
		for month, sum := range sums {
			out = append(out, MonthRate{Month: month, DailyRate: sum / float64(counts[month])})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
		return out, nil
	})
}

// ArrivalDay is the winning weekday of the arrival-day breakdown.
type ArrivalDay struct {
	MostCommonArrivalDay string `json:"most_common_arrival_day"`
	Count                int    `json:"count"`
}

// MostCommonArrivalDayCity rebuilds the arrival date of every City Hotel
// booking and takes the mode of its weekday name.
func (s *AnalyticsService) MostCommonArrivalDayCity(ctx context.Context) (*ArrivalDay, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, snap.Version, "most_common_arrival_day_city", func() (*ArrivalDay, error) {
		var weekdays []string
		for _, row := range snap.Rows {
			if row.Hotel != cityHotel {
				continue
			}
			arrival, err := row.ArrivalDate()
			if err != nil {
				return nil, err
			}
			weekdays = append(weekdays, arrival.Weekday().String())
		}
		counts := valueCounts(weekdays)
		if len(counts) == 0 {
			return nil, ErrEmptyDataset
		}
		return &ArrivalDay{MostCommonArrivalDay: counts[0].Value, Count: counts[0].Count}, nil
	})
}

// HotelMealCount is the booking count of one hotel and meal combination.
type HotelMealCount struct {
	Hotel string `json:"hotel"`
	Meal  string `json:"meal"`
	Count int    `json:"count"`
}

func (s *AnalyticsService) CountByHotelMeal(ctx context.Context) ([]HotelMealCount, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, snap.Version, "count_by_hotel_meal", func() ([]HotelMealCount, error) {
		type key struct {
			hotel string
			meal  string
		}
		counts := map[key]int{}
		for _, row := range snap.Rows {
			counts[key{hotel: row.Hotel, meal: row.Meal}]++
		}

		out := make([]HotelMealCount, 0, len(counts))
		for k, c := range counts {
			out = append(out, HotelMealCount{Hotel: k.hotel, Meal: k.meal, Count: c})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Count != out[j].Count {
				return out[i].Count > out[j].Count
			}
			if out[i].Hotel != out[j].Hotel {
				return out[i].Hotel < out[j].Hotel
			}
			return out[i].Meal < out[j].Meal
		})
		return out, nil
	})
}

// CountryRevenue is the summed non-canceled revenue of one country.
type CountryRevenue struct {
	Country      string  `json:"country"`
	TotalRevenue float64 `json:"total_revenue"`
}

// TotalRevenueResortByCountry sums Resort Hotel revenue per country,
// canceled bookings excluded, descending by revenue.
func (s *AnalyticsService) TotalRevenueResortByCountry(ctx context.Context) ([]CountryRevenue, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, snap.Version, "total_revenue_resort_by_country", func() ([]CountryRevenue, error) {
		sums := map[string]float64{}
		for _, row := range snap.Rows {
			if row.IsCanceled != 0 || row.Hotel != resortHotel {
				continue
			}
			sums[row.Country] += row.DailyRate * float64(row.LengthOfStay())
		}

		out := make([]CountryRevenue, 0, len(sums))
		for country, sum := range sums {
			out = append(out, CountryRevenue{Country: country, TotalRevenue: sum})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].TotalRevenue != out[j].TotalRevenue {
				return out[i].TotalRevenue > out[j].TotalRevenue
			}
			return out[i].Country < out[j].Country
		})
		return out, nil
	})
}

// HotelRepeatedCount is the guest count of one hotel and repeated-guest status.
type HotelRepeatedCount struct {
	Hotel           string `json:"hotel"`
	IsRepeatedGuest string `json:"is_repeated_guest"`
	Count           int    `json:"count"`
}

func (s *AnalyticsService) CountByHotelRepeatedGuest(ctx context.Context) ([]HotelRepeatedCount, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, snap.Version, "count_by_hotel_repeated_guest", func() ([]HotelRepeatedCount, error) {
		type key struct {
			hotel    string
			repeated bool
		}
		counts := map[key]int{}
		for _, row := range snap.Rows {
			counts[key{hotel: row.Hotel, repeated: row.IsRepeatedGuest == 1}]++
		}

		label := func(repeated bool) string {
			if repeated {
				return "repeated"
			}
			return "not_repeated"
		}

		out := make([]HotelRepeatedCount, 0, len(counts))
		for k, c := range counts {
			out = append(out, HotelRepeatedCount{Hotel: k.hotel, IsRepeatedGuest: label(k.repeated), Count: c})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Hotel != out[j].Hotel {
				return out[i].Hotel < out[j].Hotel
			}
			return out[i].IsRepeatedGuest < out[j].IsRepeatedGuest
		})
		return out, nil
	})
}
