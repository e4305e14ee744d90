package chartjs

// The types mirror the parts of the Chart.js configuration object that the
// front end uses, see https://www.chartjs.org/docs/latest/configuration/.

type Chart struct {
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// ChartDataset holds one series. Nil points are gaps, e.g. forecast hours
// not rendered yet.
type ChartDataset struct {
	Label       string     `json:"label,omitempty"`
	Data        []*float64 `json:"data,omitempty"`
	BorderWidth int        `json:"borderWidth"`
	BorderColor string     `json:"borderColor"`
	PointRadius int        `json:"pointRadius"`
	Tension     float64    `json:"tension"`
	Fill        any        `json:"fill"`
	SpanGaps    bool       `json:"spanGaps"`
	YAxisID     string     `json:"yAxisID,omitempty"`
}

type ChartOptions struct {
	Responsive          bool                  `json:"responsive"`
	MaintainAspectRatio bool                  `json:"maintainAspectRatio"`
	Interaction         ChartInteraction      `json:"interaction"`
	Plugins             ChartPlugins          `json:"plugins"`
	Scales              map[string]ChartScale `json:"scales"`
}

type ChartInteraction struct {
	Mode      string `json:"mode"`
	Intersect bool   `json:"intersect"`
}

type ChartPlugins struct {
	Legend ChartLegend `json:"legend"`
	Title  ChartTitle  `json:"title"`
}

type ChartLegend struct {
	Display  bool   `json:"display"`
	Position string `json:"position,omitempty"`
}

type ChartTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type ChartScale struct {
	Type     string          `json:"type"`
	Display  bool            `json:"display"`
	Position string          `json:"position"`
	Min      *float64        `json:"min,omitempty"`
	Max      *float64        `json:"max,omitempty"`
	Title    ChartScaleTitle `json:"title,omitempty"`
	Grid     *ChartScaleGrid `json:"grid,omitempty"`
}

type ChartScaleTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
	Color   string `json:"color,omitempty"`
}

type ChartScaleGrid struct {
	DrawOnChartArea bool `json:"drawOnChartArea"`
}
