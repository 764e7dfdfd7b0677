package sheetsclient

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"

	"github.com/iyaskobsp/shift-booking-bot/pkg/core/model"
)

// ReadAllRows reads every data row of the Requests worksheet, header row
// excluded. Row 0 of the result is worksheet row 2.
func (c *Client) ReadAllRows(ctx context.Context) ([][]string, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, c.requestsSheet).
		Context(ctx).Do()
	if err != nil {
		return nil, transient(err, "failed to read rows from %s", c.requestsSheet)
	}

	if len(resp.Values) < 2 {
		return nil, nil
	}

	rows := make([][]string, 0, len(resp.Values)-1)
	for _, raw := range resp.Values[1:] {
		rows = append(rows, stringRow(raw))
	}
	return rows, nil
}

// ReadRow reads one worksheet row by its 1-based index.
func (c *Client) ReadRow(ctx context.Context, rowIndex int) ([]string, error) {
	if rowIndex < 1 {
		return nil, fmt.Errorf("row index must be 1-based, got %d", rowIndex)
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	readRange := fmt.Sprintf("%s!A%d:%s%d",
		c.requestsSheet, rowIndex, columnLetter(model.ColNote), rowIndex)
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, readRange).
		Context(ctx).Do()
	if err != nil {
		return nil, transient(err, "failed to read row %d", rowIndex)
	}

	if len(resp.Values) == 0 {
		return nil, nil
	}
	return stringRow(resp.Values[0]), nil
}

// ReadCell reads a single cell by 1-based row index and column position.
func (c *Client) ReadCell(ctx context.Context, rowIndex, col int) (string, error) {
	if rowIndex < 1 || col < 1 {
		return "", fmt.Errorf("cell address must be 1-based, got row %d col %d", rowIndex, col)
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	readRange := fmt.Sprintf("%s!%s%d", c.requestsSheet, columnLetter(col), rowIndex)
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, readRange).
		Context(ctx).Do()
	if err != nil {
		return "", transient(err, "failed to read cell %s%d", columnLetter(col), rowIndex)
	}

	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}
	return cellString(resp.Values[0][0]), nil
}

// WriteCell writes a single cell. A failure means the mutation was not
// applied; single-cell updates are never partially applied.
func (c *Client) WriteCell(ctx context.Context, rowIndex, col int, value string) error {
	if rowIndex < 1 || col < 1 {
		return fmt.Errorf("cell address must be 1-based, got row %d col %d", rowIndex, col)
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	writeRange := fmt.Sprintf("%s!%s%d", c.requestsSheet, columnLetter(col), rowIndex)
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{{value}},
	}

	_, err := c.service.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, valueRange).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return transient(err, "failed to write cell %s%d", columnLetter(col), rowIndex)
	}
	return nil
}

// SupportsConditionalWrite reports whether CompareAndSwapCell may be used
// in place of the double-check write sequence.
func (c *Client) SupportsConditionalWrite() bool {
	return c.conditionalWrites
}

// CompareAndSwapCell writes value only if the cell currently holds old.
// The Sheets API has no server-side conditional update, so the swap is
// serialized behind a process-local mutex: attempts from this process
// cannot interleave, but writers in other processes still race the same
// way the double-check path does.
func (c *Client) CompareAndSwapCell(ctx context.Context, rowIndex, col int, old, value string) (bool, error) {
	c.casMu.Lock()
	defer c.casMu.Unlock()

	current, err := c.ReadCell(ctx, rowIndex, col)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(current) != strings.TrimSpace(old) {
		return false, nil
	}

	if err := c.WriteCell(ctx, rowIndex, col, value); err != nil {
		return false, err
	}
	return true, nil
}

// transient wraps a Sheets API failure so callers can match it with
// errors.Is(err, model.ErrTransientStore).
func transient(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %v: %w", fmt.Sprintf(format, args...), err, model.ErrTransientStore)
}

// columnLetter converts a 1-based column position to its A1 letter. The
// worksheet has ten columns, so a single letter always suffices.
func columnLetter(col int) string {
	return string(rune('A' + col - 1))
}

func stringRow(raw []interface{}) []string {
	row := make([]string, len(raw))
	for i, v := range raw {
		row[i] = cellString(v)
	}
	return row
}

func cellString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
