// Package sheets writes the tracker export to a Google spreadsheet, one
// tab per record kind.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "subtrack/internal/log"
)

// Tabs names the sheet tabs the export writes to. The tabs must already
// exist in the spreadsheet.
type Tabs struct {
	Subscriptions string
	Expenses      string
	Budgets       string
}

func DefaultTabs() Tabs {
	return Tabs{Subscriptions: "Subscriptions", Expenses: "Expenses", Budgets: "Budgets"}
}

type Config struct {
	SpreadsheetID string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
	Tabs            Tabs
}

// valuesAPI is the slice of the Sheets values API the exporter uses.
type valuesAPI interface {
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, rows [][]interface{}) error
}

type Client struct {
	values        valuesAPI
	spreadsheetID string
	tabs          Tabs
	logger        *applog.Logger
}

// NewClient creates a Sheets client authenticated with a service account.
func NewClient(ctx context.Context, cfg Config, logger *applog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	logger = logger.OrDefault(applog.ComponentExport)

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(googleValues{svc: svc}, cfg, logger), nil
}

func newClient(values valuesAPI, cfg Config, logger *applog.Logger) *Client {
	tabs := cfg.Tabs
	d := DefaultTabs()
	if tabs.Subscriptions == "" {
		tabs.Subscriptions = d.Subscriptions
	}
	if tabs.Expenses == "" {
		tabs.Expenses = d.Expenses
	}
	if tabs.Budgets == "" {
		tabs.Budgets = d.Budgets
	}
	return &Client{
		values:        values,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		tabs:          tabs,
		logger:        logger.OrDefault(applog.ComponentExport),
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, cfg Config, logger *applog.Logger) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(cfg.CredentialsFile)

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		logger.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		logger.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// googleValues adapts the generated Sheets client to valuesAPI.
type googleValues struct {
	svc *gsheet.Service
}

func (g googleValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := g.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// Update writes rows RAW so user text is never evaluated as a formula.
func (g googleValues) Update(ctx context.Context, spreadsheetID, rng string, rows [][]interface{}) error {
	vr := &gsheet.ValueRange{Values: rows}
	_, err := g.svc.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
