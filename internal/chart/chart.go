// Package chart turns device data into the four energy datasets the
// dashboard draws: per-device bar, weekly line, per-type pie and a total
// usage gauge.
package chart

import "github.com/dukerupert/homedash/internal/model"

// GaugeCeiling is the wattage at which the gauge reads full.
const GaugeCeiling = 300

// Synthetic daily totals fall in [MinDaily, MaxDaily).
const (
	MinDaily = 100
	MaxDaily = 400
)

// OtherType labels devices whose type is not recognised.
const OtherType = "other"

var Days = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Rand supplies the synthetic weekly values.
type Rand interface {
	IntN(n int) int
}

// Dataset is one chart: Kind names the chart type expected by the
// front-end charting library.
type Dataset struct {
	Kind   string   `json:"kind"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

type Charts struct {
	Bar   Dataset `json:"bar"`
	Line  Dataset `json:"line"`
	Pie   Dataset `json:"pie"`
	Gauge Dataset `json:"gauge"`
}

// Build creates fresh datasets. The weekly line is random on every call
// and is not history.
func Build(devices []model.Device, rng Rand) Charts {
	return Charts{
		Bar:   Bar(devices),
		Line:  Line(rng),
		Pie:   Pie(devices),
		Gauge: Gauge(devices),
	}
}

func Bar(devices []model.Device) Dataset {
	ds := Dataset{Kind: "bar", Labels: make([]string, 0, len(devices)), Values: make([]int, 0, len(devices))}
	for _, d := range devices {
		ds.Labels = append(ds.Labels, d.Name)
		ds.Values = append(ds.Values, d.Energy)
	}
	return ds
}

func Line(rng Rand) Dataset {
	ds := Dataset{Kind: "line", Labels: append([]string(nil), Days...), Values: make([]int, len(Days))}
	for i := range ds.Values {
		ds.Values[i] = MinDaily + rng.IntN(MaxDaily-MinDaily)
	}
	return ds
}

// Pie sums energy by device type. The three known types always appear;
// an "other" slice is added only when some device has an unknown type.
func Pie(devices []model.Device) Dataset {
	sums := make(map[model.DeviceType]int, len(model.DeviceTypes))
	other := 0
	hasOther := false
	for _, d := range devices {
		if !d.Type.Valid() {
			other += d.Energy
			hasOther = true
			continue
		}
		sums[d.Type] += d.Energy
	}

	ds := Dataset{Kind: "pie"}
	for _, t := range model.DeviceTypes {
		ds.Labels = append(ds.Labels, string(t))
		ds.Values = append(ds.Values, sums[t])
	}
	if hasOther {
		ds.Labels = append(ds.Labels, OtherType)
		ds.Values = append(ds.Values, other)
	}
	return ds
}

// Gauge reports total draw against GaugeCeiling. The remainder never goes
// below zero.
func Gauge(devices []model.Device) Dataset {
	total := TotalEnergy(devices)
	return Dataset{
		Kind:   "doughnut",
		Labels: []string{"used", "remaining"},
		Values: []int{total, max(GaugeCeiling-total, 0)},
	}
}

func TotalEnergy(devices []model.Device) int {
	total := 0
	for _, d := range devices {
		total += d.Energy
	}
	return total
}
