package sheets

import (
	"context"
	"errors"
)

// Default tab names of the mirrored spreadsheet.
const (
	TabTours    = "Turlar"
	TabExpenses = "Giderler"
	TabAgencies = "Ajanslar"
)

var ErrUnknownTab = errors.New("unknown sheet tab")

// Ports for outbound adapters.
type (
	// TableWriter replaces the whole content of a tab with header and rows.
	TableWriter interface {
		WriteTable(ctx context.Context, tab string, header []string, rows [][]string) error
	}

	// TableReader returns a tab as written, header first.
	TableReader interface {
		ReadTable(ctx context.Context, tab string) ([][]string, error)
	}
)
