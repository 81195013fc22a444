package analytics

import (
	"math"
	"sort"

	"github.com/staylytics/backend/internal/dataset"
)

// Description is the dataframe-style descriptive summary of a numeric column.
type Description struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Q25   float64 `json:"25%"`
	Q50   float64 `json:"50%"`
	Q75   float64 `json:"75%"`
	Max   float64 `json:"max"`
}

// numericColumns maps column name to its accessor on a raw row.
var numericColumns = map[string]func(dataset.RawBooking) float64{
	"is_canceled":               func(r dataset.RawBooking) float64 { return float64(r.IsCanceled) },
	"lead_time":                 func(r dataset.RawBooking) float64 { return float64(r.LeadTime) },
	"arrival_date_year":         func(r dataset.RawBooking) float64 { return float64(r.ArrivalYear) },
	"arrival_date_day_of_month": func(r dataset.RawBooking) float64 { return float64(r.ArrivalDay) },
	"stays_in_weekend_nights":   func(r dataset.RawBooking) float64 { return float64(r.WeekendNights) },
	"stays_in_week_nights":      func(r dataset.RawBooking) float64 { return float64(r.WeekNights) },
	"adults":                    func(r dataset.RawBooking) float64 { return float64(r.Adults) },
	"children":                  func(r dataset.RawBooking) float64 { return r.Children },
	"babies":                    func(r dataset.RawBooking) float64 { return float64(r.Babies) },
	"is_repeated_guest":         func(r dataset.RawBooking) float64 { return float64(r.IsRepeatedGuest) },
	"adr":                       func(r dataset.RawBooking) float64 { return r.DailyRate },
}

// describeAll summarizes every numeric column of the dataset.
func describeAll(rows []dataset.RawBooking) map[string]Description {
	out := make(map[string]Description, len(numericColumns))
	for name, get := range numericColumns {
		values := make([]float64, len(rows))
		for i, row := range rows {
			values[i] = get(row)
		}
		out[name] = describe(values)
	}
	return out
}

func describe(values []float64) Description {
	n := len(values)
	if n == 0 {
		return Description{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return Description{
		Count: n,
		Mean:  mean(values),
		Std:   sampleStd(values),
		Min:   sorted[0],
		Q25:   quantile(sorted, 0.25),
		Q50:   quantile(sorted, 0.50),
		Q75:   quantile(sorted, 0.75),
		Max:   sorted[n-1],
	}
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd is the standard deviation with Bessel's correction, matching the
// default of dataframe describe output. A single value has no spread.
func sampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

// quantile interpolates linearly between the two nearest ranks of a sorted
// slice.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
