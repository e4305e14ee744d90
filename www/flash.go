package www

import (
	"crypto/rand"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

const flashSessionName = "rapsounding_flash"

// flashes carries one-shot messages across a redirect in a signed cookie,
// e.g. the notice after the "Run now" form is posted without javascript.
type flashes struct {
	store  sessions.Store
	logger *slog.Logger
}

// newFlashes signs cookies with key, or with a random key when key is empty.
// A random key only invalidates pending messages on restart.
func newFlashes(logger *slog.Logger, key []byte) *flashes {
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(err)
		}
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &flashes{store: store, logger: logger}
}

func (f *flashes) add(w http.ResponseWriter, r *http.Request, msg string) {
	s, err := f.store.Get(r, flashSessionName)
	if err != nil {
		f.logger.Debug("discarding invalid flash cookie", slog.Any("error", err))
	}
	s.AddFlash(msg)
	if err := s.Save(r, w); err != nil {
		f.logger.Warn("saving flash message failed", slog.Any("error", err))
	}
}

// pop returns the pending messages and clears them. It must run before the
// response body is written.
func (f *flashes) pop(w http.ResponseWriter, r *http.Request) []string {
	s, err := f.store.Get(r, flashSessionName)
	if err != nil {
		return nil
	}
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := s.Save(r, w); err != nil {
		f.logger.Warn("clearing flash messages failed", slog.Any("error", err))
	}
	msgs := make([]string, 0, len(raw))
	for _, m := range raw {
		if msg, ok := m.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
