package unxlsx

import (
	"io"
	"log/slog"
)

type config struct {
	workbook           bool
	sheets             bool
	sheetNames         []string
	vba                bool
	allowSignatureLoss bool
	logger             *slog.Logger
}

// Option configures a pipeline run.
type Option func(*config)

func defaultConfig() config {
	return config{
		workbook: true,
		sheets:   true,
		vba:      true,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithWorkbookProtection controls whether workbook structure protection is
// removed. Default true.
func WithWorkbookProtection(v bool) Option {
	return func(c *config) { c.workbook = v }
}

// WithSheetProtection controls whether per-sheet protection is removed.
// Default true (all sheets); use WithSheets to restrict to a subset.
func WithSheetProtection(v bool) Option {
	return func(c *config) { c.sheets = v }
}

// WithSheets restricts sheet protection removal to the sheets with the
// given display names. Implies WithSheetProtection(true). Names that do not
// exist in the workbook make the run fail before any edit.
func WithSheets(names ...string) Option {
	return func(c *config) {
		c.sheets = true
		c.sheetNames = names
	}
}

// WithVBARemoval controls whether an embedded VBA project is excised.
// Default true.
func WithVBARemoval(v bool) Option {
	return func(c *config) { c.vba = v }
}

// WithAllowSignatureLoss permits editing a digitally signed package. The
// signature parts are left in place but will no longer validate; a warning
// is logged. Without this option a signed package fails with
// ErrSignatureInvalidated.
func WithAllowSignatureLoss(v bool) Option {
	return func(c *config) { c.allowSignatureLoss = v }
}

// WithLogger sets the logger that receives structured per-stage events
// (skip/modify). By default events are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
