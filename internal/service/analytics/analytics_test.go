package analytics

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/staylytics/backend/internal/dataset"
	"github.com/staylytics/backend/internal/store/bookings"
)

type fakeReader struct {
	stats   *bookings.Stats
	lastIDs []int64
	byIDs   []*bookings.Booking
}

func (f *fakeReader) Stats(ctx context.Context) (*bookings.Stats, error) {
	return f.stats, nil
}

func (f *fakeReader) GetByIDs(ctx context.Context, ids []int64) ([]*bookings.Booking, error) {
	f.lastIDs = ids
	return f.byIDs, nil
}

func newService(t *testing.T, rows []dataset.RawBooking, reader BookingReader) *AnalyticsService {
	t.Helper()
	store, err := dataset.NewStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if rows != nil {
		if _, err := store.Swap(rows, []byte("raw"), "t.csv"); err != nil {
			t.Fatalf("Swap failed: %v", err)
		}
	}
	return NewAnalyticsService(zap.NewNop(), store, reader, nil)
}

func TestQueriesRequireUpload(t *testing.T) {
	svc := newService(t, nil, &fakeReader{})

	if _, err := svc.TopCountries(context.Background()); !errors.Is(err, ErrNoDataset) {
		t.Errorf("Expected ErrNoDataset, got %v", err)
	}
	if _, err := svc.Stats(context.Background()); !errors.Is(err, ErrNoDataset) {
		t.Errorf("Expected ErrNoDataset, got %v", err)
	}
}

func TestValueCountsOrdering(t *testing.T) {
	got := valueCounts([]string{"A", "A", "A", "B", "B", "C"})

	want := []ValueCount{{"A", 3}, {"B", 2}, {"C", 1}}
	if len(got) != len(want) {
		t.Fatalf("Expected %d buckets, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bucket %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestValueCountsTieBreaksByValue(t *testing.T) {
	got := valueCounts([]string{"B", "A", "B", "A"})

	if got[0].Value != "A" || got[1].Value != "B" {
		t.Errorf("Expected ties ordered by value, got %+v", got)
	}
}

func TestTopCountriesLimitsToFive(t *testing.T) {
	rows := []dataset.RawBooking{
		{Country: "PRT"}, {Country: "PRT"}, {Country: "PRT"},
		{Country: "GBR"}, {Country: "GBR"},
		{Country: "FRA"}, {Country: "ESP"}, {Country: "DEU"}, {Country: "ITA"},
	}
	svc := newService(t, rows, &fakeReader{})

	got, err := svc.TopCountries(context.Background())
	if err != nil {
		t.Fatalf("TopCountries failed: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("Expected 5 countries, got %d", len(got))
	}
	if got[0].Value != "PRT" || got[0].Count != 3 {
		t.Errorf("Expected PRT:3 first, got %+v", got[0])
	}
	if got[1].Value != "GBR" || got[1].Count != 2 {
		t.Errorf("Expected GBR:2 second, got %+v", got[1])
	}
}

func TestRepeatedGuestsPercentage(t *testing.T) {
	rows := []dataset.RawBooking{
		{IsRepeatedGuest: 1}, {IsRepeatedGuest: 0}, {IsRepeatedGuest: 1}, {IsRepeatedGuest: 0},
	}
	svc := newService(t, rows, &fakeReader{})

	got, err := svc.RepeatedGuestsPercentage(context.Background())
	if err != nil {
		t.Fatalf("RepeatedGuestsPercentage failed: %v", err)
	}
	if got.AllBookings != 4 || got.RepeatedGuests != 2 {
		t.Errorf("Unexpected counts: %+v", got)
	}
	if got.Percentage != 50 {
		t.Errorf("Expected 50%%, got %v", got.Percentage)
	}
}

func TestRepeatedGuestsPercentageEmptyDataset(t *testing.T) {
	svc := newService(t, []dataset.RawBooking{}, &fakeReader{})

	if _, err := svc.RepeatedGuestsPercentage(context.Background()); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("Expected ErrEmptyDataset, got %v", err)
	}
}

func TestTotalRevenueExcludesCanceled(t *testing.T) {
	rows := []dataset.RawBooking{
		{Hotel: "Resort Hotel", IsCanceled: 0, ArrivalYear: 2024, ArrivalMonth: "July", ArrivalDay: 10, WeekendNights: 1, WeekNights: 1, DailyRate: 100},
		{Hotel: "Resort Hotel", IsCanceled: 1, ArrivalYear: 2024, ArrivalMonth: "July", ArrivalDay: 11, WeekendNights: 1, WeekNights: 1, DailyRate: 500},
	}
	svc := newService(t, rows, &fakeReader{})

	got, err := svc.TotalRevenue(context.Background())
	if err != nil {
		t.Fatalf("TotalRevenue failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(got))
	}
	if got[0].BookingMonth != "July" || got[0].Hotel != "Resort Hotel" {
		t.Errorf("Unexpected group: %+v", got[0])
	}
	if got[0].Revenue != 200 {
		t.Errorf("Expected revenue 200, got %v", got[0].Revenue)
	}
}

func TestAvgLengthOfStayGroupsByBookingYearAndHotel(t *testing.T) {
	rows := []dataset.RawBooking{
		// lead_time 5 pushes the booking date into 2023.
		{Hotel: "City Hotel", LeadTime: 5, ArrivalYear: 2024, ArrivalMonth: "January", ArrivalDay: 2, WeekendNights: 2, WeekNights: 2},
		{Hotel: "City Hotel", LeadTime: 0, ArrivalYear: 2024, ArrivalMonth: "March", ArrivalDay: 1, WeekendNights: 1, WeekNights: 1},
		{Hotel: "City Hotel", LeadTime: 0, ArrivalYear: 2024, ArrivalMonth: "March", ArrivalDay: 2, WeekendNights: 2, WeekNights: 2},
	}
	svc := newService(t, rows, &fakeReader{})

	got, err := svc.AvgLengthOfStay(context.Background())
	if err != nil {
		t.Fatalf("AvgLengthOfStay failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(got))
	}
	if got[0].BookingYear != 2023 || got[0].LengthOfStay != 4 {
		t.Errorf("Unexpected 2023 group: %+v", got[0])
	}
	if got[1].BookingYear != 2024 || got[1].LengthOfStay != 3 {
		t.Errorf("Unexpected 2024 group: %+v", got[1])
	}
}

func TestMostCommonArrivalDayCity(t *testing.T) {
	rows := []dataset.RawBooking{
		// 2024-07-01 and 2024-07-08 are Mondays, 2024-07-02 a Tuesday.
		{Hotel: "City Hotel", ArrivalYear: 2024, ArrivalMonth: "July", ArrivalDay: 1},
		{Hotel: "City Hotel", ArrivalYear: 2024, ArrivalMonth: "July", ArrivalDay: 8},
		{Hotel: "City Hotel", ArrivalYear: 2024, ArrivalMonth: "July", ArrivalDay: 2},
		{Hotel: "Resort Hotel", ArrivalYear: 2024, ArrivalMonth: "July", ArrivalDay: 2},
	}
	svc := newService(t, rows, &fakeReader{})

	got, err := svc.MostCommonArrivalDayCity(context.Background())
	if err != nil {
		t.Fatalf("MostCommonArrivalDayCity failed: %v", err)
	}
	if got.MostCommonArrivalDay != "Monday" || got.Count != 2 {
		t.Errorf("Expected Monday:2, got %+v", got)
	}
}

func TestFilterByNationality(t *testing.T) {
	rows := []dataset.RawBooking{
		{Country: "PRT"}, {Country: "GBR"}, {Country: "PRT"},
	}
	reader := &fakeReader{byIDs: []*bookings.Booking{{ID: 0}, {ID: 2}}}
	svc := newService(t, rows, reader)

	got, err := svc.FilterByNationality(context.Background(), "PRT")
	if err != nil {
		t.Fatalf("FilterByNationality failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 bookings, got %d", len(got))
	}
	if len(reader.lastIDs) != 2 || reader.lastIDs[0] != 0 || reader.lastIDs[1] != 2 {
		t.Errorf("Expected ids [0 2], got %v", reader.lastIDs)
	}
}

func TestFilterByNationalityNotFound(t *testing.T) {
	svc := newService(t, []dataset.RawBooking{{Country: "PRT"}}, &fakeReader{})

	if _, err := svc.FilterByNationality(context.Background(), "XYZ"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCountByHotelRepeatedGuestLabels(t *testing.T) {
	rows := []dataset.RawBooking{
		{Hotel: "City Hotel", IsRepeatedGuest: 1},
		{Hotel: "City Hotel", IsRepeatedGuest: 0},
		{Hotel: "City Hotel", IsRepeatedGuest: 0},
		{Hotel: "Resort Hotel", IsRepeatedGuest: 1},
	}
	svc := newService(t, rows, &fakeReader{})

	got, err := svc.CountByHotelRepeatedGuest(context.Background())
	if err != nil {
		t.Fatalf("CountByHotelRepeatedGuest failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(got))
	}
	want := []HotelRepeatedCount{
		{Hotel: "City Hotel", IsRepeatedGuest: "not_repeated", Count: 2},
		{Hotel: "City Hotel", IsRepeatedGuest: "repeated", Count: 1},
		{Hotel: "Resort Hotel", IsRepeatedGuest: "repeated", Count: 1},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Group %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestAvgDailyRateResortSkipsCityHotel(t *testing.T) {
	rows := []dataset.RawBooking{
		{Hotel: "Resort Hotel", ArrivalMonth: "July", DailyRate: 100},
		{Hotel: "Resort Hotel", ArrivalMonth: "July", DailyRate: 200},
		{Hotel: "City Hotel", ArrivalMonth: "July", DailyRate: 999},
	}
	svc := newService(t, rows, &fakeReader{})

	got, err := svc.AvgDailyRateResort(context.Background())
	if err != nil {
		t.Fatalf("AvgDailyRateResort failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 month, got %d", len(got))
	}
	if got[0].Month != "July" || got[0].DailyRate != 150 {
		t.Errorf("Expected July:150, got %+v", got[0])
	}
}

type countingCache struct {
	data map[string][]byte
	hits int
	sets int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, ok := c.data[key]
	if ok {
		c.hits++
	}
	return raw, ok
}

func (c *countingCache) Set(ctx context.Context, key string, value []byte) {
	c.data[key] = value
	c.sets++
}

func TestCachedMemoizesByVersion(t *testing.T) {
	rows := []dataset.RawBooking{{Country: "PRT"}, {Country: "GBR"}}
	svc := newService(t, rows, &fakeReader{})
	cache := &countingCache{data: map[string][]byte{}}
	svc.cache = cache

	first, err := svc.TopCountries(context.Background())
	if err != nil {
		t.Fatalf("TopCountries failed: %v", err)
	}
	if cache.sets != 1 || cache.hits != 0 {
		t.Errorf("Expected one set and no hit after first call, got sets=%d hits=%d", cache.sets, cache.hits)
	}

	second, err := svc.TopCountries(context.Background())
	if err != nil {
		t.Fatalf("TopCountries failed: %v", err)
	}
	if cache.hits != 1 {
		t.Errorf("Expected a cache hit on second call, got %d", cache.hits)
	}
	if len(first) != len(second) || first[0] != second[0] {
		t.Errorf("Expected identical results, got %v and %v", first, second)
	}
}
