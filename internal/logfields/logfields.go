package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyScheme     = "scheme"
	KeyProject    = "project"
	KeyKind       = "project_kind"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyTool       = "tool"
	KeyTarget     = "target"
	KeyBranch     = "branch"
	KeyDurationMS = "duration_ms"
	KeyTrigger    = "trigger"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Scheme(s string) slog.Attr       { return slog.String(KeyScheme, s) }
func Project(p string) slog.Attr      { return slog.String(KeyProject, p) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Tool(t string) slog.Attr         { return slog.String(KeyTool, t) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Trigger(t string) slog.Attr      { return slog.String(KeyTrigger, t) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
