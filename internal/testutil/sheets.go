package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// FakeSheets is an in-memory stand-in for the Sheets REST API covering the
// calls the sheets endpoint makes. A spreadsheet created through it gets the
// ID "created-N".
type FakeSheets struct {
	tabs    map[string][][]any
	id      string
	creates int
	mu      sync.Mutex
}

// NewFakeSheets returns a fake holding one spreadsheet with the given tabs.
// An empty id means no spreadsheet exists yet.
func NewFakeSheets(id string, tabs ...string) *FakeSheets {
	f := &FakeSheets{id: id, tabs: map[string][][]any{}}
	for _, tab := range tabs {
		f.tabs[tab] = nil
	}
	return f
}

// Service starts an httptest server for the fake and returns a Sheets client
// pointed at it.
func (f *FakeSheets) Service(t *testing.T) *sheets.Service {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("failed to create sheets client: %v", err)
	}
	return svc
}

// Grid returns the rows stored in tab and whether the tab exists.
func (f *FakeSheets) Grid(tab string) ([][]any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.tabs[tab]
	return g, ok
}

// SetGrid replaces the rows of tab, creating it if needed.
func (f *FakeSheets) SetGrid(tab string, rows [][]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tabs[tab] = rows
}

// Creates counts the spreadsheets created through the fake.
func (f *FakeSheets) Creates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

func (f *FakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets")
	base := "/" + f.id

	switch {
	case r.Method == http.MethodPost && path == "":
		var req sheets.Spreadsheet
		if !decodeBody(w, r, &req) {
			return
		}
		f.creates++
		f.id = "created-" + strconv.Itoa(f.creates)
		for _, sh := range req.Sheets {
			f.tabs[sh.Properties.Title] = nil
		}
		writeJSON(w, &sheets.Spreadsheet{SpreadsheetId: f.id, SpreadsheetUrl: "https://example.test/" + f.id})

	case f.id == "" || !strings.HasPrefix(path, base):
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)

	case r.Method == http.MethodGet && path == base:
		resp := &sheets.Spreadsheet{SpreadsheetId: f.id}
		for title := range f.tabs {
			resp.Sheets = append(resp.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: title}})
		}
		writeJSON(w, resp)

	case r.Method == http.MethodPost && path == base+":batchUpdate":
		var req sheets.BatchUpdateSpreadsheetRequest
		if !decodeBody(w, r, &req) {
			return
		}
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.tabs[rq.AddSheet.Properties.Title] = nil
			}
		}
		writeJSON(w, &sheets.BatchUpdateSpreadsheetResponse{SpreadsheetId: f.id})

	case r.Method == http.MethodGet && path == base+"/values:batchGet":
		resp := &sheets.BatchGetValuesResponse{SpreadsheetId: f.id}
		for _, rng := range r.URL.Query()["ranges"] {
			tab, _ := splitRange(rng)
			resp.ValueRanges = append(resp.ValueRanges, &sheets.ValueRange{Range: rng, Values: f.tabs[tab]})
		}
		writeJSON(w, resp)

	case r.Method == http.MethodPost && path == base+"/values:batchClear":
		var req sheets.BatchClearValuesRequest
		if !decodeBody(w, r, &req) {
			return
		}
		for _, rng := range req.Ranges {
			tab, _ := splitRange(rng)
			f.tabs[tab] = nil
		}
		writeJSON(w, &sheets.BatchClearValuesResponse{SpreadsheetId: f.id})

	case r.Method == http.MethodPost && path == base+"/values:batchUpdate":
		var req sheets.BatchUpdateValuesRequest
		if !decodeBody(w, r, &req) {
			return
		}
		for _, vr := range req.Data {
			tab, row := splitRange(vr.Range)
			grid := f.tabs[tab]
			for len(grid) < row-1+len(vr.Values) {
				grid = append(grid, nil)
			}
			copy(grid[row-1:], vr.Values)
			f.tabs[tab] = grid
		}
		writeJSON(w, &sheets.BatchUpdateValuesResponse{SpreadsheetId: f.id})

	default:
		http.Error(w, `{"error":{"code":400,"message":"unsupported"}}`, http.StatusBadRequest)
	}
}

// splitRange parses "Tab!A12" into ("Tab", 12). A bare tab name starts at row 1.
func splitRange(rng string) (string, int) {
	tab, cellRef, found := strings.Cut(rng, "!")
	if !found {
		return tab, 1
	}
	row, err := strconv.Atoi(strings.TrimLeft(strings.SplitN(cellRef, ":", 2)[0], "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	if err != nil || row < 1 {
		return tab, 1
	}
	return tab, row
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
