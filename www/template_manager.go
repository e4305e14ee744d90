package www

import (
	"bytes"
	"database/sql"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/icodeforyou/rapsounding-go/hours"
	"github.com/icodeforyou/rapsounding-go/types/maybe"
)

//go:embed templates
var templatesDirEmbed embed.FS

var funcMap = template.FuncMap{
	"NullFloat64": func(n sql.NullFloat64) string {
		if n.Valid {
			return fmt.Sprintf("%.2f", n.Float64)
		}
		return "-"
	},
	"Pressure": func(m maybe.Maybe[float64]) string {
		if v, ok := m.Get(); ok {
			return fmt.Sprintf("%.0f hPa", v)
		}
		return "-"
	},
	"NoDecimals":  func(n float64) string { return fmt.Sprintf("%.0f", n) },
	"OneDecimal":  func(n float64) string { return fmt.Sprintf("%.1f", n) },
	"TwoDecimals": func(n float64) string { return fmt.Sprintf("%.2f", n) },
	"LocalTime":   hours.FormatTimeInGuiTimezone,
}

// TemplateManager holds the parsed page templates. Templates loaded from an
// external directory are reparsed when a file in it changes.
type TemplateManager struct {
	mutex     sync.RWMutex
	templates *template.Template
	logger    *slog.Logger
}

func NewTemplateManager(logger *slog.Logger, extDir *string) (*TemplateManager, error) {
	tm := &TemplateManager{logger: logger}

	if extDir == nil || *extDir == "" {
		sub, err := fs.Sub(templatesDirEmbed, "templates")
		if err != nil {
			return nil, err
		}
		logger.Debug("loading embedded templates")
		return tm, tm.load(sub)
	}

	dir := filepath.Join(*extDir, "templates")
	logger.Debug("loading external templates", slog.String("dir", dir))
	if err := tm.load(os.DirFS(dir)); err != nil {
		return nil, err
	}
	if err := tm.watch(dir); err != nil {
		return nil, err
	}
	return tm, nil
}

func (tm *TemplateManager) load(fsys fs.FS) error {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(fsys, "*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	tm.mutex.Lock()
	tm.templates = tmpl
	tm.mutex.Unlock()
	return nil
}

// watch reloads the templates on writes to dir. A failed reload keeps the
// previous templates.
func (tm *TemplateManager) watch(dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create template watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch templates: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := tm.load(os.DirFS(dir)); err != nil {
					tm.logger.Error("error reloading templates", slog.Any("error", err))
				} else {
					tm.logger.Debug("templates reloaded", slog.String("file", event.Name))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				tm.logger.Debug("error watching templates", slog.Any("error", err))
			}
		}
	}()
	return nil
}

func (tm *TemplateManager) execute(w io.Writer, name string, data any) error {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()
	if err := tm.templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return nil
}

// Execute renders into a buffer, for fragments sent over the websocket.
func (tm *TemplateManager) Execute(name string, data any) (bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := tm.execute(&buf, name, data); err != nil {
		return bytes.Buffer{}, err
	}
	return buf, nil
}

func (tm *TemplateManager) ExecuteToWriter(name string, data any, wr *http.ResponseWriter) error {
	return tm.execute(*wr, name, data)
}
