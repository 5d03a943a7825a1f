package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"rosteretl/pkg/records"
)

// Sheets fetches a tab from a Google spreadsheet using a service account.
type Sheets struct {
	SpreadsheetID string
	SheetName     string
	SkipRows      int

	svc *sheets.Service
}

// NewSheets authenticates against the Sheets API with the service-account
// credentials file and returns a ready source.
func NewSheets(ctx context.Context, credentialsPath, spreadsheetID, sheetName string, skipRows int) (*Sheets, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets auth: %w", err)
	}
	return &Sheets{
		SpreadsheetID: spreadsheetID,
		SheetName:     sheetName,
		SkipRows:      skipRows,
		svc:           svc,
	}, nil
}

// Fetch reads all values of the configured tab. A missing spreadsheet or tab
// maps to ErrNotFound; rejected credentials map to ErrAuth.
func (s *Sheets) Fetch(ctx context.Context) (*Snapshot, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.SpreadsheetID, s.SheetName).Context(ctx).Do()
	if err != nil {
		return nil, classifyAPIError(err, s.SheetName)
	}

	values := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = records.AsString(v)
		}
		values = append(values, cells)
	}
	return newSnapshot(values, s.SkipRows), nil
}

func classifyAPIError(err error, sheetName string) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, sheetName)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrAuth, gerr.Message)
		}
		// The API reports an unknown tab as a 400 on the range.
		if gerr.Code == http.StatusBadRequest {
			return fmt.Errorf("%w: tab %q: %s", ErrNotFound, sheetName, gerr.Message)
		}
	}
	return fmt.Errorf("sheets fetch: %w", err)
}
