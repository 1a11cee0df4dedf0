package services

import (
	"context"
	"fmt"

	"guidetrack/internal/export"
	"guidetrack/internal/log"
)

// ExportBackup returns the JSON backup of everything in storage.
func (s *GuideService) ExportBackup(ctx context.Context) ([]byte, error) {
	data, err := s.repo.ExportAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export backup: %w", err)
	}
	return data, nil
}

// ImportBackup writes the collections present in data straight to storage
// and reloads the state from there. It returns the imported storage keys.
func (s *GuideService) ImportBackup(ctx context.Context, data []byte) ([]string, error) {
	imported, err := s.repo.Import(ctx, data)
	if err != nil {
		return imported, err
	}
	if err := s.Load(ctx); err != nil {
		return imported, err
	}
	s.logger.InfoContext(ctx, "Backup restored",
		log.FieldOperation, log.OpImport,
		log.FieldCount, len(imported))
	return imported, nil
}

// ClearAll deletes every stored key and reloads, which leaves the defaults.
func (s *GuideService) ClearAll(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	s.logger.WarnContext(ctx, "All data cleared", log.FieldOperation, log.OpDelete)
	return s.Load(ctx)
}

// CSV documents for download, named with today's date.
type CSVFile struct {
	Name    string
	Content string
}

func (s *GuideService) ToursCSV() CSVFile {
	st := s.store.State()
	return CSVFile{Name: export.ToursFilename(s.now()), Content: export.ToursCSV(st.Tours, st.Agencies)}
}

func (s *GuideService) ExpensesCSV() CSVFile {
	return CSVFile{Name: export.ExpensesFilename(s.now()), Content: export.ExpensesCSV(s.store.State().Expenses)}
}

func (s *GuideService) AllCSV() CSVFile {
	st := s.store.State()
	return CSVFile{Name: export.AllFilename(s.now()), Content: export.AllCSV(st.Tours, st.Expenses, st.Agencies)}
}
