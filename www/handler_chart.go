package www

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/icodeforyou/rapsounding-go/database"
	"github.com/icodeforyou/rapsounding-go/www/chartjs"
)

// NewChartHandler serves SBCAPE and SBCIN per forecast hour of the latest run.
func NewChartHandler(logger *slog.Logger, latest *database.LatestRun) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		run, soundings, ok := latest.Get()
		hours := 0
		if ok {
			hours = run.ForecastHours + 1
		}

		labels := make([]string, hours)
		for i := range labels {
			labels[i] = fmt.Sprintf("FH %d", i)
		}
		chart := chartjs.NewChart("", labels)
		maxCAPE, minCIN := 0.0, 0.0
		for _, s := range soundings {
			if s.ForecastHour < 0 || s.ForecastHour >= hours {
				continue
			}
			maxCAPE, minCIN = max(maxCAPE, s.SBCAPE), min(minCIN, s.SBCIN)
			chart.Data.Datasets[0].Data[s.ForecastHour] = chartjs.FixedFloat64(s.SBCAPE, 0)
			chart.Data.Datasets[1].Data[s.ForecastHour] = chartjs.FixedFloat64(s.SBCIN, 0)
		}
		chart.Data.Datasets[0].Label = "SBCAPE"
		chart.Data.Datasets[1].Label = "SBCIN"
		chart.Options.Scales["YAxis1"] = chart.Options.Scales["YAxis1"].
			WithTitle("SBCAPE (J/kg)").
			WithMinAndMax(0, math.Ceil(max(maxCAPE, 1)/500)*500)
		chart.Options.Scales["YAxis2"] = chart.Options.Scales["YAxis2"].
			WithTitle("SBCIN (J/kg)").
			WithMinAndMax(math.Floor(min(minCIN, -1)/50)*50, 0)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode([]chartjs.Chart{chart}); err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, "unable to encode data points", http.StatusInternalServerError)
			return
		}
	}
}
