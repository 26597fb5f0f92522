package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"moneytracker/internal/core"
	ports "moneytracker/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and its two tabs. Credentials are a
// service account key, inline or from a file.
type Config struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
	TransactionsSheet  string
	CategoriesSheet    string
}

// Client stores the ledger in a spreadsheet: one tab for transactions and
// one for categories, each with a header in row 1.
type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	categoriesSheet   string
}

// Ensure interface conformance
var (
	_ ports.SnapshotLoader = (*Client)(nil)
	_ ports.SnapshotSaver  = (*Client)(nil)
)

// NewClient creates a Sheets client authenticated with the configured
// service account.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(svc, cfg), nil
}

// New wraps an existing service. Empty sheet names fall back to
// "Transactions" and "Categories".
func New(svc *gsheet.Service, cfg Config) *Client {
	c := &Client{
		svc:               svc,
		spreadsheetID:     strings.TrimSpace(cfg.SpreadsheetID),
		transactionsSheet: strings.TrimSpace(cfg.TransactionsSheet),
		categoriesSheet:   strings.TrimSpace(cfg.CategoriesSheet),
	}
	if c.transactionsSheet == "" {
		c.transactionsSheet = "Transactions"
	}
	if c.categoriesSheet == "" {
		c.categoriesSheet = "Categories"
	}
	return c
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when neither is configured.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Load reads both tabs in one request.
func (c *Client) Load(ctx context.Context) (core.Snapshot, error) {
	if c.svc == nil {
		return core.Snapshot{}, errors.New("sheets service not initialized")
	}
	txRange := a1(c.transactionsSheet, "A2:E")
	catRange := a1(c.categoriesSheet, "A2:B")

	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.spreadsheetID).
		Ranges(txRange, catRange).
		Context(ctx).Do()
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("read %s and %s: %w", txRange, catRange, err)
	}
	if len(resp.ValueRanges) != 2 {
		return core.Snapshot{}, fmt.Errorf("read ledger: expected 2 ranges, got %d", len(resp.ValueRanges))
	}

	transactions, err := parseTransactionRows(resp.ValueRanges[0].Values)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("sheet %s: %w", c.transactionsSheet, err)
	}
	categories, err := parseCategoryRows(resp.ValueRanges[1].Values)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("sheet %s: %w", c.categoriesSheet, err)
	}

	slog.DebugContext(ctx, "Ledger loaded from Google Sheets",
		"spreadsheet", c.spreadsheetID,
		"categories", len(categories),
		"transactions", len(transactions))
	return core.Snapshot{Transactions: transactions, Categories: categories}, nil
}

// Save clears and rewrites both tabs concurrently. Values are written RAW
// so amounts and dates stay text.
//
// The Sheets API has no transaction spanning a clear and a write, so Save is
// not atomic: when one tab fails the other may already hold the new snapshot,
// and the failing tab may be left cleared. The error names the failing tab.
// The in-memory ledger is untouched, so the next successful Save rewrites
// both tabs in full.
func (c *Client) Save(ctx context.Context, s core.Snapshot) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.replaceSheet(gctx, c.transactionsSheet, "A:E", transactionRows(s.Transactions))
	})
	g.Go(func() error {
		return c.replaceSheet(gctx, c.categoriesSheet, "A:B", categoryRows(s.Categories))
	})
	if err := g.Wait(); err != nil {
		slog.WarnContext(ctx, "Google Sheets save incomplete, tabs may be out of sync until the next save",
			"spreadsheet", c.spreadsheetID,
			"error", err)
		return err
	}

	slog.DebugContext(ctx, "Ledger saved to Google Sheets",
		"spreadsheet", c.spreadsheetID,
		"categories", len(s.Categories),
		"transactions", len(s.Transactions))
	return nil
}

func (c *Client) replaceSheet(ctx context.Context, sheet, cols string, rows [][]any) error {
	clearRange := a1(sheet, cols)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	writeRange := a1(sheet, "A1")
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", writeRange, err)
	}
	return nil
}

// a1 builds a quoted A1 range so sheet names with spaces work.
func a1(sheet, rng string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + rng
}
