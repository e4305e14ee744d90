package www

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/icodeforyou/rapsounding-go/config"
	"github.com/icodeforyou/rapsounding-go/database"
	"github.com/icodeforyou/rapsounding-go/sounding"
	"github.com/icodeforyou/rapsounding-go/task"
)

type Server struct {
	logger *slog.Logger
	config config.AppConfigApi
	mux    *http.ServeMux
	hub    *Hub
	tm     *TemplateManager
}

type SysInfo struct {
	Version      string
	Started      time.Time
	Latitude     float64
	Longitude    float64
	CatalogUrl   string
	RunAt        string
	OutputDir    string
	DatabasePath string
}

//go:embed static
var embeddedStaticDir embed.FS

func StartServer(db *database.Database, latest *database.LatestRun, tasks *task.Tasks, cnfg *config.AppConfig, version string) *Server {
	logger := slog.Default().With("module", "www")
	tm, err := NewTemplateManager(logger, cnfg.Api.WwwDir)
	if err != nil {
		panic(fmt.Sprintf("template manager initialization error: %v", err))
	}

	s := &Server{
		logger: logger,
		config: cnfg.Api,
		mux:    http.NewServeMux(),
		hub:    NewHub(logger),
		tm:     tm,
	}

	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}

	fl := newFlashes(logger, []byte(cnfg.Api.SessionKey))

	s.mux.Handle("/", NewIndexHandler(
		logger.With(slog.String("handler", "index")),
		latest,
		s.tm,
		fl,
		staticFilesHandler(cnfg.Api.WwwDir)))

	s.mux.Handle("/soundings", logReqMW(NewSoundingsHandler(
		logger.With(slog.String("handler", "soundings")),
		db,
		s.tm,
		fl,
		tasks.ForceSoundingTask)))

	s.mux.Handle("/images/", http.StripPrefix("/images/", http.FileServer(http.Dir(cnfg.Output.GetDir()))))

	s.mux.Handle("/chart", logReqMW(NewChartHandler(
		logger.With(slog.String("handler", "chart")),
		latest)))

	s.mux.Handle("/log", logReqMW(NewLogHandler(
		logger.With(slog.String("handler", "log")),
		db,
		s.tm)))

	s.mux.Handle("/sys_info", logReqMW(NewSysInfoHandler(
		logger.With(slog.String("handler", "sys_info")),
		db,
		latest,
		s.tm,
		SysInfo{
			Version:      version,
			Started:      time.Now(),
			Latitude:     cnfg.Target.GetLatitude(),
			Longitude:    cnfg.Target.GetLongitude(),
			CatalogUrl:   cnfg.Model.GetCatalogUrl(),
			RunAt:        cnfg.Model.GetRunAt(),
			OutputDir:    cnfg.Output.GetDir(),
			DatabasePath: db.Path(),
		})))

	s.mux.Handle("/metrics", promhttp.Handler())

	s.mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		client, err := NewClient(s.hub, w, r)
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		s.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return s
}

// BroadcastSounding pushes a freshly rendered forecast hour to connected
// browsers.
func (s *Server) BroadcastSounding(summary sounding.Summary) {
	buf, err := s.tm.Execute("sounding_card.html", newSoundingCard(summary))
	if err != nil {
		s.logger.Error("template execution failed", slog.Any("error", err))
		return
	}
	s.hub.Publish(buf.Bytes(), summary.ForecastHour == 0)
}

func (s *Server) Run(ctx context.Context) {
	go s.hub.Run(ctx)

	s.logger.Info("starting server...", "port", s.config.Port)
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", slog.Any("error", err))
		}

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", slog.Any("error", err))
		}
	}
}

func staticFilesHandler(extDir *string) http.Handler {
	if extDir != nil && *extDir != "" {
		staticDir := path.Join(*extDir, "static")
		if _, err := os.Stat(staticDir); err == nil {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	fsys, err := fs.Sub(embeddedStaticDir, "static")
	if err != nil {
		log.Panic(err)
	}
	return http.FileServer(http.FS(fsys))
}
