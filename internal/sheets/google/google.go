package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bikeshare/internal/core"
	"bikeshare/internal/dataset"
	"bikeshare/internal/log"
	"bikeshare/internal/sheets"
)

// Options selects the spreadsheet range and the service account credentials.
// CredentialsJSON wins over CredentialsFile.
type Options struct {
	SpreadsheetID   string
	Range           string
	CredentialsJSON string
	CredentialsFile string
}

// Client reads the usage table from a Google Sheets range.
type Client struct {
	values        sheets.ValuesReader
	spreadsheetID string
	rng           string
}

var _ dataset.Source = (*Client)(nil)

// New creates a Sheets-backed dataset source authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(opts.Range) == "" {
		return nil, errors.New("missing sheet range")
	}

	creds, err := credentials(opts)
	if err != nil {
		return nil, err
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithReader(serviceReader{svc: svc}, opts.SpreadsheetID, opts.Range), nil
}

// NewWithReader builds a client over any ValuesReader.
func NewWithReader(values sheets.ValuesReader, spreadsheetID, rng string) *Client {
	return &Client{values: values, spreadsheetID: spreadsheetID, rng: rng}
}

func credentials(opts Options) ([]byte, error) {
	if js := strings.TrimSpace(opts.CredentialsJSON); js != "" {
		return []byte(js), nil
	}
	if path := strings.TrimSpace(opts.CredentialsFile); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

func newSheetsService(ctx context.Context, credentialsJSON []byte) (*gsheet.Service, error) {
	log.ForComponent(log.ComponentSheets).InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsReadonlyScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Name identifies the spreadsheet range.
func (c *Client) Name() string {
	return "sheets:" + c.spreadsheetID + "/" + c.rng
}

// Load reads the range and parses it as a usage table with a header row.
func (c *Client) Load(ctx context.Context) ([]core.UsageRecord, error) {
	if c.values == nil {
		return nil, errors.New("sheets service not initialized")
	}
	values, err := c.values.ReadRange(ctx, c.spreadsheetID, c.rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.rng, err)
	}

	records, err := dataset.ParseTable(toTable(values))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.rng, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse %s: %w", c.rng, dataset.ErrEmptyDataset)
	}

	log.ForComponent(log.ComponentSheets).InfoContext(ctx, "Dataset read from Google Sheets",
		"spreadsheet_id", c.spreadsheetID,
		"range", c.rng,
		"records", len(records))
	return records, nil
}

// serviceReader adapts the Sheets API service to ValuesReader.
type serviceReader struct {
	svc *gsheet.Service
}

func (r serviceReader) ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}
