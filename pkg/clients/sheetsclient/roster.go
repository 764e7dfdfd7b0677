package sheetsclient

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"
)

// ReadRoster reads the Managers worksheet into a location -> approver chat
// id map. The worksheet has two columns, location and chat id, with a
// header row. A spreadsheet without a Managers worksheet yields an empty
// roster, not an error; approver resolution then falls back to the
// per-shift approverRef column alone.
func (c *Client) ReadRoster(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	readRange := c.managersSheet + "!A:B"
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, readRange).
		Context(ctx).Do()
	if err != nil {
		if isMissingSheet(err) {
			return map[string]int64{}, nil
		}
		return nil, transient(err, "failed to read roster from %s", c.managersSheet)
	}

	roster := make(map[string]int64)
	for i, raw := range resp.Values {
		if i == 0 {
			continue // header
		}
		row := stringRow(raw)
		if len(row) < 2 {
			continue
		}

		location := strings.TrimSpace(row[0])
		if location == "" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
		if err != nil {
			continue
		}
		roster[location] = id
	}
	return roster, nil
}

// isMissingSheet detects the "unable to parse range" error the API returns
// when the named worksheet does not exist.
func isMissingSheet(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 400 && strings.Contains(apiErr.Message, "Unable to parse range")
}
