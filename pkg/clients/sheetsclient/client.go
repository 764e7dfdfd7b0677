package sheetsclient

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/iyaskobsp/shift-booking-bot/internal/config"
)

// Client wraps the Google Sheets API client and exposes the row/cell
// primitives the booking protocol is built on. All coordination between
// concurrent bookers happens through this store; there is no other shared
// state.
type Client struct {
	service       *sheets.Service
	spreadsheetID string
	requestsSheet string
	managersSheet string
	timeout       time.Duration

	conditionalWrites bool
	casMu             sync.Mutex
}

// NewClient creates a new Sheets client authenticated with a service
// account. The credential is taken from the config as either a key file
// path or the key JSON itself.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	keyJSON, err := credentialJSON(cfg.ServiceAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to load service account credential: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, keyJSON,
		sheets.SpreadsheetsScope, sheets.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credential: %w", err)
	}

	service, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service:           service,
		spreadsheetID:     cfg.SpreadsheetID,
		requestsSheet:     cfg.RequestsSheet,
		managersSheet:     cfg.ManagersSheet,
		timeout:           time.Duration(cfg.StoreTimeoutSeconds) * time.Second,
		conditionalWrites: cfg.ConditionalWrites,
	}, nil
}

// Probe reads the spreadsheet metadata to verify connectivity and access.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	if _, err := c.service.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do(); err != nil {
		return transient(err, "failed to probe spreadsheet %s", c.spreadsheetID)
	}
	return nil
}

// credentialJSON accepts either a path to a service account key file or
// the key JSON itself, detected by a leading "{".
func credentialJSON(serviceAccount string) ([]byte, error) {
	if strings.HasPrefix(strings.TrimSpace(serviceAccount), "{") {
		return []byte(serviceAccount), nil
	}

	data, err := os.ReadFile(serviceAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return data, nil
}

// opCtx bounds a single store call so a stalled Sheets API call surfaces
// as a transient failure instead of blocking a booking indefinitely.
func (c *Client) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}
