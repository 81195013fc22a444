package analytics

import (
	"math"
	"testing"

	"github.com/staylytics/backend/internal/dataset"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDescribe(t *testing.T) {
	got := describe([]float64{1, 2, 3, 4})

	if got.Count != 4 {
		t.Errorf("Expected count 4, got %d", got.Count)
	}
	if !almostEqual(got.Mean, 2.5) {
		t.Errorf("Expected mean 2.5, got %v", got.Mean)
	}
	// Sample std of 1..4 with Bessel's correction.
	if !almostEqual(got.Std, math.Sqrt(5.0/3.0)) {
		t.Errorf("Expected std %v, got %v", math.Sqrt(5.0/3.0), got.Std)
	}
	if got.Min != 1 || got.Max != 4 {
		t.Errorf("Expected min 1 max 4, got min %v max %v", got.Min, got.Max)
	}
	if !almostEqual(got.Q25, 1.75) {
		t.Errorf("Expected 25%% quantile 1.75, got %v", got.Q25)
	}
	if !almostEqual(got.Q50, 2.5) {
		t.Errorf("Expected median 2.5, got %v", got.Q50)
	}
	if !almostEqual(got.Q75, 3.25) {
		t.Errorf("Expected 75%% quantile 3.25, got %v", got.Q75)
	}
}

func TestDescribeSingleValue(t *testing.T) {
	got := describe([]float64{7})

	if got.Count != 1 || got.Std != 0 {
		t.Errorf("Expected count 1 and zero std, got %+v", got)
	}
	if got.Min != 7 || got.Q25 != 7 || got.Q50 != 7 || got.Q75 != 7 || got.Max != 7 {
		t.Errorf("Expected all quantiles 7, got %+v", got)
	}
}

func TestDescribeEmpty(t *testing.T) {
	if got := describe(nil); got != (Description{}) {
		t.Errorf("Expected zero description for empty input, got %+v", got)
	}
}

func TestQuantileExactRank(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}

	if got := quantile(sorted, 0.5); got != 30 {
		t.Errorf("Expected median 30, got %v", got)
	}
	if got := quantile(sorted, 0.25); got != 20 {
		t.Errorf("Expected 25%% quantile 20, got %v", got)
	}
}

func TestDescribeAllCoversEveryColumn(t *testing.T) {
	rows := []dataset.RawBooking{
		{IsCanceled: 1, LeadTime: 10, ArrivalYear: 2024, ArrivalDay: 5, WeekendNights: 1, WeekNights: 2, Adults: 2, Children: 1, Babies: 0, IsRepeatedGuest: 0, DailyRate: 80},
		{IsCanceled: 0, LeadTime: 20, ArrivalYear: 2024, ArrivalDay: 9, WeekendNights: 0, WeekNights: 3, Adults: 1, Children: 0, Babies: 1, IsRepeatedGuest: 1, DailyRate: 120},
	}

	got := describeAll(rows)

	if len(got) != len(numericColumns) {
		t.Fatalf("Expected %d columns, got %d", len(numericColumns), len(got))
	}
	adr, ok := got["adr"]
	if !ok {
		t.Fatal("Expected adr column in summary")
	}
	if adr.Count != 2 || !almostEqual(adr.Mean, 100) {
		t.Errorf("Unexpected adr summary: %+v", adr)
	}
	if lead := got["lead_time"]; lead.Min != 10 || lead.Max != 20 {
		t.Errorf("Unexpected lead_time summary: %+v", lead)
	}
}
