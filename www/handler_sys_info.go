package www

import (
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/icodeforyou/rapsounding-go/database"
)

type sysInfoPage struct {
	SysInfo
	GoVersion  string
	Uptime     time.Duration
	LatestRun  database.ModelRunRow
	HasRun     bool
	Backups    int
	LastBackup time.Time
}

func NewSysInfoHandler(logger *slog.Logger, db *database.Database, latest *database.LatestRun, tm *TemplateManager, sysInfo SysInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		page := sysInfoPage{
			SysInfo:   sysInfo,
			GoVersion: runtime.Version(),
			Uptime:    time.Since(sysInfo.Started).Round(time.Second),
		}
		page.LatestRun, _, page.HasRun = latest.Get()

		backups, err := db.Backups()
		if err != nil {
			logger.Warn("listing backups", slog.Any("error", err))
		}
		if n := len(backups); n > 0 {
			page.Backups, page.LastBackup = n, backups[n-1].Created
		}

		w.Header().Set("Content-Type", "text/html")
		if err := tm.ExecuteToWriter("sys_info.html", page, &w); err != nil {
			logger.Error("handling sys_info request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
