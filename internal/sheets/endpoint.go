package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/household-ledger/internal/cloudsync"
)

// Endpoint stores the budget snapshot in a spreadsheet, one tab per
// collection. It implements cloudsync.Endpoint.
type Endpoint struct {
	service       *sheets.Service
	logger        *slog.Logger
	config        Config
	spreadsheetID string
	mu            sync.Mutex
}

var _ cloudsync.Endpoint = (*Endpoint)(nil)

// NewEndpoint creates an endpoint authenticated from config.
func NewEndpoint(ctx context.Context, config Config, logger *slog.Logger) (*Endpoint, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewEndpointWithService(service, config, logger), nil
}

// NewEndpointWithService wraps an existing Sheets client.
func NewEndpointWithService(service *sheets.Service, config Config, logger *slog.Logger) *Endpoint {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Endpoint{
		service:       service,
		logger:        logger,
		config:        config,
		spreadsheetID: config.SpreadsheetID,
	}
}

// SpreadsheetID returns the spreadsheet in use. It is empty until one is
// configured or created by the first Send.
func (e *Endpoint) SpreadsheetID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spreadsheetID
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// Fetch reads every managed tab that exists in the spreadsheet.
func (e *Endpoint) Fetch(ctx context.Context) (*cloudsync.Document, error) {
	id := e.SpreadsheetID()
	if id == "" {
		return nil, ErrNoSpreadsheet
	}

	present, err := e.existingTabs(ctx, id)
	if err != nil {
		return nil, err
	}

	ranges := make([]string, 0, len(Tabs))
	tabs := make([]string, 0, len(Tabs))
	for _, tab := range Tabs {
		if _, ok := present[tab]; ok {
			ranges = append(ranges, tab)
			tabs = append(tabs, tab)
		}
	}

	grids := make(map[string][][]any, len(tabs))
	if len(ranges) > 0 {
		resp, err := e.service.Spreadsheets.Values.BatchGet(id).
			Ranges(ranges...).
			ValueRenderOption("UNFORMATTED_VALUE").
			MajorDimension("ROWS").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("unable to read spreadsheet %s: %w", id, err)
		}
		if len(resp.ValueRanges) != len(tabs) {
			return nil, fmt.Errorf("unexpected response: asked for %d ranges, got %d", len(tabs), len(resp.ValueRanges))
		}
		for i, vr := range resp.ValueRanges {
			grids[tabs[i]] = vr.Values
		}
	}

	doc := valuesToDocument(grids)
	e.logger.Debug("read spreadsheet",
		"spreadsheet_id", id,
		"tabs", tabs,
		"skipped", doc.Skipped)
	return doc, nil
}

// Send replaces the contents of every managed tab with doc.
func (e *Endpoint) Send(ctx context.Context, doc *cloudsync.Document) error {
	id, err := e.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return err
	}

	if err := e.ensureTabs(ctx, id); err != nil {
		return err
	}

	_, err = e.service.Spreadsheets.Values.BatchClear(id, &sheets.BatchClearValuesRequest{
		Ranges: Tabs,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear tabs: %w", err)
	}

	grids := documentToValues(doc)
	var data []*sheets.ValueRange
	rows := 0
	for _, tab := range Tabs {
		grid := grids[tab]
		rows += len(grid)
		for start := 0; start < len(grid); start += e.config.BatchSize {
			end := min(start+e.config.BatchSize, len(grid))
			data = append(data, &sheets.ValueRange{
				Range:          fmt.Sprintf("%s!A%d", tab, start+1),
				MajorDimension: "ROWS",
				Values:         grid[start:end],
			})
		}
	}

	_, err = e.service.Spreadsheets.Values.BatchUpdate(id, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	e.logger.Info("wrote snapshot to spreadsheet",
		"spreadsheet_id", id,
		"rows_written", rows)
	return nil
}

// existingTabs returns the titles of the spreadsheet's tabs.
func (e *Endpoint) existingTabs(ctx context.Context, id string) (map[string]struct{}, error) {
	ss, err := e.service.Spreadsheets.Get(id).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to access spreadsheet %s: %w", id, err)
	}

	present := make(map[string]struct{}, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			present[sh.Properties.Title] = struct{}{}
		}
	}
	return present, nil
}

// ensureTabs adds any managed tab the spreadsheet lacks.
func (e *Endpoint) ensureTabs(ctx context.Context, id string) error {
	present, err := e.existingTabs(ctx, id)
	if err != nil {
		return err
	}

	var requests []*sheets.Request
	var added []string
	for _, tab := range Tabs {
		if _, ok := present[tab]; ok {
			continue
		}
		requests = append(requests, &sheets.Request{AddSheet: &sheets.AddSheetRequest{
			Properties: tabProperties(tab),
		}})
		added = append(added, tab)
	}
	if len(requests) == 0 {
		return nil
	}

	_, err = e.service.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to add tabs %s: %w", strings.Join(added, ", "), err)
	}

	e.logger.Debug("added tabs", "spreadsheet_id", id, "tabs", added)
	return nil
}

// getOrCreateSpreadsheet returns the configured spreadsheet or creates one
// with every managed tab.
func (e *Endpoint) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.spreadsheetID != "" {
		return e.spreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    e.config.SpreadsheetName,
			TimeZone: e.config.TimeZone,
		},
	}
	for _, tab := range Tabs {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{Properties: tabProperties(tab)})
	}

	created, err := e.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	e.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	e.spreadsheetID = created.SpreadsheetId
	return e.spreadsheetID, nil
}

func tabProperties(tab string) *sheets.SheetProperties {
	return &sheets.SheetProperties{
		Title:          tab,
		GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
	}
}
