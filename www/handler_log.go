package www

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/icodeforyou/rapsounding-go/database"
	"github.com/icodeforyou/rapsounding-go/logging"
)

const defaultLogPageSize = 25

var logLevels = []string{"DEBUG", "INFO", "WARN", "ERROR"}

type logPage struct {
	Page     int
	PageSize int
	Level    string
	Contains string
	Levels   []string
	Entries  []database.LogEntryRow
}

// NextURL points at the page after this one with the same filter.
func (p logPage) NextURL() string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page+1))
	q.Set("pageSize", strconv.Itoa(p.PageSize))
	if p.Level != "" {
		q.Set("level", p.Level)
	}
	if p.Contains != "" {
		q.Set("q", p.Contains)
	}
	return "/log?" + q.Encode()
}

// NewLogHandler serves the log viewer. Without a page parameter it returns
// the page shell, with one it returns the table rows of that page.
func NewLogHandler(logger *slog.Logger, db *database.Database, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/html")

		q := r.URL.Query()
		page := logPage{
			Page:     intOrDefault(q, "page", 0),
			PageSize: min(max(intOrDefault(q, "pageSize", defaultLogPageSize), 1), 500),
			Level:    q.Get("level"),
			Contains: q.Get("q"),
			Levels:   logLevels,
		}

		if page.Page < 1 {
			if err := tm.ExecuteToWriter("log.html", page, &w); err != nil {
				logger.Error("handling log request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		minLevel := slog.LevelDebug
		if page.Level != "" {
			l, err := logging.ParseLevel(page.Level)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			minLevel = l
		}

		entries, err := db.GetLogEntries(r.Context(), database.LogFilter{
			MinLevel: minLevel,
			Contains: page.Contains,
			Page:     page.Page,
			PageSize: page.PageSize,
		})
		if err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		page.Entries = entries

		if err := tm.ExecuteToWriter("log_entries.html", page, &w); err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func intOrDefault(q url.Values, key string, defaultValue int) int {
	if v := q.Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}
