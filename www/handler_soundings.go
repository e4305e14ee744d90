package www

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/icodeforyou/rapsounding-go/database"
)

const runsListed = 48

func NewSoundingsHandler(logger *slog.Logger, db *database.Database, tm *TemplateManager, fl *flashes, task func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			var (
				run database.ModelRunRow
				err error
			)
			if idStr := r.URL.Query().Get("run"); idStr != "" {
				id, convErr := strconv.ParseInt(idStr, 10, 64)
				if convErr != nil {
					http.Error(w, "invalid run id", http.StatusBadRequest)
					return
				}
				run, err = db.GetModelRun(r.Context(), id)
			} else {
				run, err = db.GetLatestModelRun(r.Context())
			}
			found := err == nil
			if err != nil && !errors.Is(err, database.ErrNotFound) {
				logger.Error("handling soundings request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if !found && r.URL.Query().Has("run") {
				http.Error(w, "run not found", http.StatusNotFound)
				return
			}

			var rows []database.SoundingRow
			if found {
				if rows, err = db.GetSoundings(r.Context(), run.Id); err != nil {
					logger.Error("handling soundings request", slog.Any("error", err))
					http.Error(w, err.Error(), http.StatusInternalServerError)
					return
				}
			}

			page := newRunPage(run, rows, found)
			if page.Runs, err = db.GetModelRuns(r.Context(), runsListed); err != nil {
				logger.Error("handling soundings request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "text/html")
			if err := tm.ExecuteToWriter("soundings.html", page, &w); err != nil {
				logger.Error("handling soundings request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}

		case http.MethodPost:
			// A run takes minutes, answer right away.
			go task()
			if strings.Contains(r.Header.Get("Accept"), "text/html") {
				fl.add(w, r, "Sounding run started, cards appear as forecast hours are rendered.")
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			w.WriteHeader(http.StatusAccepted)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
