// Package logfields holds canonical slog attribute keys so log lines from the
// library, the server and the CLI share one schema.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDocument   = "document"
	KeyIndex      = "index"
	KeyURL        = "url"
	KeyPath       = "path"
	KeyOutput     = "output"
	KeyCount      = "count"
	KeyPages      = "pages"
	KeyTitle      = "title"
	KeyAddr       = "addr"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr   { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr { return slog.String(KeyStage, name) }
func Document(p string) slog.Attr { return slog.String(KeyDocument, p) }
func Index(i int) slog.Attr       { return slog.Int(KeyIndex, i) }
func URL(u string) slog.Attr      { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr     { return slog.String(KeyPath, p) }
func Output(p string) slog.Attr   { return slog.String(KeyOutput, p) }
func Count(n int) slog.Attr       { return slog.Int(KeyCount, n) }
func Pages(n int) slog.Attr       { return slog.Int(KeyPages, n) }
func Title(t string) slog.Attr    { return slog.String(KeyTitle, t) }
func Addr(a string) slog.Attr     { return slog.String(KeyAddr, a) }
func Method(m string) slog.Attr   { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr   { return slog.Int(KeyStatus, code) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Discard returns a logger that drops every record.
// Library types default to it so embedding programs stay quiet unless they opt in.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
