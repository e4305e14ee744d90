package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// ParseLevel accepts the slog level names, with an optional offset such as
// "WARN+2", and "WARNING" as an alias.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// LevelFromString is ParseLevel for optional config values. Missing and
// unknown levels are INFO.
func LevelFromString(str *string) slog.Level {
	if str == nil {
		return slog.LevelInfo
	}
	l, err := ParseLevel(*str)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}
