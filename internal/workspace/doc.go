// Package workspace manages scratch directories for documentation builds,
// supporting both ephemeral (timestamped) and persistent (fixed-path) modes.
//
// Ephemeral mode creates timestamped directories (e.g., doccpub-20260823-101500)
// suitable for one-shot publishes, cleaning up completely after use.
//
// Persistent mode uses a fixed directory path that persists across runs,
// keeping derived data warm for faster rebuilds in daemon mode.
package workspace
