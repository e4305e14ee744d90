package chartjs

import (
	"math"
)

const (
	ColorOrange = "#ff9800d4"
	ColorBlue   = "#2196f3d4"
)

// NewChart returns a line chart with two datasets over labels, the first on
// the left axis and the second on the right. Only the left axis draws grid
// lines.
func NewChart(title string, labels []string) Chart {
	dataset := func(color, axis string) ChartDataset {
		return ChartDataset{
			Data:        make([]*float64, len(labels)),
			BorderWidth: 2,
			BorderColor: color,
			PointRadius: 2,
			Tension:     0.3,
			Fill:        false,
			YAxisID:     axis,
		}
	}

	chart := Chart{
		Type: "line",
		Data: ChartData{
			Labels:   labels,
			Datasets: []ChartDataset{dataset(ColorOrange, "YAxis1"), dataset(ColorBlue, "YAxis2")},
		},
		Options: ChartOptions{
			Responsive:  true,
			Interaction: ChartInteraction{Mode: "index", Intersect: false},
			Plugins: ChartPlugins{
				Legend: ChartLegend{Display: true, Position: "bottom"},
			},
			Scales: map[string]ChartScale{
				"YAxis1": {
					Type:     "linear",
					Display:  true,
					Position: "left",
					Title:    ChartScaleTitle{Display: true, Color: ColorOrange},
				},
				"YAxis2": {
					Type:     "linear",
					Display:  true,
					Position: "right",
					Title:    ChartScaleTitle{Display: true, Color: ColorBlue},
					Grid:     &ChartScaleGrid{DrawOnChartArea: false},
				},
			},
		},
	}

	if title != "" {
		chart.Options.Plugins.Title = ChartTitle{Display: true, Text: title}
	}
	return chart
}

func (cs ChartScale) WithTitle(title string) ChartScale {
	cs.Title.Text = title
	return cs
}

func (cs ChartScale) WithMinAndMax(min, max float64) ChartScale {
	cs.Min = &min
	cs.Max = &max
	return cs
}

// FixedFloat64 rounds num to precision decimals.
func FixedFloat64(num float64, precision int) *float64 {
	p := math.Pow(10, float64(precision))
	v := math.Round(num*p) / p
	return &v
}
