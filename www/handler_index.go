package www

import (
	"log/slog"
	"net/http"

	"github.com/icodeforyou/rapsounding-go/database"
)

// NewIndexHandler renders the latest run on "/" and hands every other path
// to static.
func NewIndexHandler(logger *slog.Logger, latest *database.LatestRun, tm *TemplateManager, fl *flashes, static http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			static.ServeHTTP(w, r)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		run, soundings, ok := latest.Get()
		page := newRunPage(run, soundings, ok)
		page.Flashes = fl.pop(w, r)

		w.Header().Set("Content-Type", "text/html")
		if err := tm.ExecuteToWriter("index.html", page, &w); err != nil {
			logger.Error("handling index request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
