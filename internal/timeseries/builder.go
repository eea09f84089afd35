// Package timeseries buckets filtered record sets into per-date series and
// dense date×hour heatmap grids for charting.
package timeseries

import (
	"fmt"
	"sort"

	"shitdash/internal/domain"
	"shitdash/internal/window"
)

// Builder accumulates named sums into per-date buckets. Buckets exist only
// for dates that received at least one contribution; the emitted series is
// sorted by the canonical date key, never by map iteration order.
type Builder struct {
	buckets map[string]map[string]float64
	fields  map[string]struct{}
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		buckets: make(map[string]map[string]float64),
		fields:  make(map[string]struct{}),
	}
}

// Add accumulates v into the named field of the date bucket.
func (b *Builder) Add(date, field string, v float64) {
	bucket, ok := b.buckets[date]
	if !ok {
		bucket = make(map[string]float64)
		b.buckets[date] = bucket
	}
	bucket[field] += v
	b.fields[field] = struct{}{}
}

// Series emits the accumulated buckets sorted ascending by date. Every point
// carries every field the builder has seen, missing contributions as 0, so
// multi-series charts share one aligned axis.
func (b *Builder) Series() domain.TimeSeries {
	if len(b.buckets) == 0 {
		return nil
	}

	dates := make([]string, 0, len(b.buckets))
	for d := range b.buckets {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make(domain.TimeSeries, 0, len(dates))
	for _, d := range dates {
		values := make(map[string]float64, len(b.fields))
		for f := range b.fields {
			values[f] = b.buckets[d][f]
		}
		out = append(out, domain.SeriesPoint{Date: d, Values: values})
	}
	return out
}

// Cumulative derives a running-total series from an already-sorted daily
// series by a left-to-right prefix sum over the named field. It is computed
// after bucketing, never interleaved with it, so the result is independent
// of record arrival order.
func Cumulative(ts domain.TimeSeries, field, outField string) domain.TimeSeries {
	if len(ts) == 0 {
		return nil
	}
	out := make(domain.TimeSeries, 0, len(ts))
	total := 0.0
	for _, p := range ts {
		total += p.Values[field]
		out = append(out, domain.SeriesPoint{
			Date:   p.Date,
			Values: map[string]float64{outField: total},
		})
	}
	return out
}

// Align merges series from different source collections onto one date axis.
// A date present in any input appears in the output; fields missing for that
// date contribute 0 rather than dropping the point.
func Align(series ...domain.TimeSeries) domain.TimeSeries {
	dateSet := make(map[string]struct{})
	fieldSet := make(map[string]struct{})
	for _, ts := range series {
		for _, p := range ts {
			dateSet[p.Date] = struct{}{}
			for f := range p.Values {
				fieldSet[f] = struct{}{}
			}
		}
	}
	if len(dateSet) == 0 {
		return nil
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make(domain.TimeSeries, 0, len(dates))
	for _, d := range dates {
		values := make(map[string]float64, len(fieldSet))
		for f := range fieldSet {
			values[f] = 0
		}
		for _, ts := range series {
			for _, p := range ts {
				if p.Date != d {
					continue
				}
				for f, v := range p.Values {
					values[f] += v
				}
			}
		}
		out = append(out, domain.SeriesPoint{Date: d, Values: values})
	}
	return out
}

// Heatmap is a dense date×hour grid pre-initialized to 0 for every cell in
// the selected range, so the output is rectangular regardless of which cells
// receive records.
type Heatmap struct {
	cells map[string]*[24]float64
	dates []string
}

// NewHeatmap pre-allocates every (date, hour) cell across the inclusive
// calendar-date range.
func NewHeatmap(startDate, endDate string) (*Heatmap, error) {
	start, err := window.ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := window.ParseDate(endDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("heatmap range: %w", window.ErrInvalidRange)
	}

	h := &Heatmap{cells: make(map[string]*[24]float64)}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(window.DateLayout)
		h.cells[key] = &[24]float64{}
		h.dates = append(h.dates, key)
	}
	return h, nil
}

// Add accumulates v into the (date, hour) cell. Contributions outside the
// pre-allocated range are ignored.
func (h *Heatmap) Add(date string, hour int, v float64) {
	if hour < 0 || hour > 23 {
		return
	}
	if row, ok := h.cells[date]; ok {
		row[hour] += v
	}
}

// Cells emits the full grid sorted by date then hour.
func (h *Heatmap) Cells() []domain.HeatmapCell {
	out := make([]domain.HeatmapCell, 0, len(h.dates)*24)
	for _, d := range h.dates {
		row := h.cells[d]
		for hour := 0; hour < 24; hour++ {
			out = append(out, domain.HeatmapCell{Date: d, Hour: hour, Value: row[hour]})
		}
	}
	return out
}
