package logging

import (
	"log/slog"
)

type LogCode string

const (
	// SYSTEM EVENTS (SYSTEM*)
	SYSTEM LogCode = "SYSTEM"

	// PROJECT OPERATIONS (PROJECT*)
	PROJECT_CREATE LogCode = "PROJECT_CREATE"
	PROJECT_UPDATE LogCode = "PROJECT_UPDATE"
	PROJECT_DELETE LogCode = "PROJECT_DELETE"

	// GENERATION PIPELINE (GEN*)
	GEN_SCRIPT       LogCode = "GEN_SCRIPT"
	GEN_VOICE        LogCode = "GEN_VOICE"
	GEN_INSTRUMENTAL LogCode = "GEN_INSTRUMENTAL"
	GEN_VIDEO        LogCode = "GEN_VIDEO"

	// SECURITY EVENTS (SEC*)
	SEC_LOG       LogCode = "SEC_LOG"
	SEC_LEAK_SCAN LogCode = "SEC_LEAK_SCAN"
)

// VictoriaLogs has fixed field name for time (_time) and message(_msg). This function maps fields msg -> _msg and time -> _time.
func convertKeysToVictoriaLogs(keys []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{Key: "_time", Value: slog.StringValue(a.Value.Time().Format("2006-01-02 15:04:05"))}
	}
	if a.Key == slog.MessageKey {
		return slog.Attr{Key: "_msg", Value: a.Value}
	}
	return a
}

func GetVictoriaLogsOptions(addSource bool) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: convertKeysToVictoriaLogs,
		AddSource:   addSource,
	}
}
