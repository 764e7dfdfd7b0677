// Package registry translates raw worksheet rows into typed shift records
// and resolves the approver responsible for a shift.
package registry

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/iyaskobsp/shift-booking-bot/pkg/core/model"
)

// rosterTTL bounds how stale a cached roster snapshot may get. The roster
// changes rarely; misses fall through to a full worksheet read.
const rosterTTL = 60 * time.Second

const rosterCacheKey = "roster"

// RowLister reads all data rows of the shift worksheet.
type RowLister interface {
	ReadAllRows(ctx context.Context) ([][]string, error)
}

// RosterReader reads the location -> approver chat id roster.
type RosterReader interface {
	ReadRoster(ctx context.Context) (map[string]int64, error)
}

// Registry is the derived view over the raw store.
type Registry struct {
	rows   RowLister
	roster RosterReader
	cache  *cache.Cache
	logger *zap.Logger
}

// New creates a registry over the given row and roster sources.
func New(rows RowLister, roster RosterReader, logger *zap.Logger) *Registry {
	return &Registry{
		rows:   rows,
		roster: roster,
		cache:  cache.New(rosterTTL, 2*rosterTTL),
		logger: logger,
	}
}

// ListOpenShifts returns the shifts currently open for booking: status
// open, no reservation, and dated within [now, now+horizonDays] inclusive.
// A date that matches none of the accepted layouts passes the filter; bad
// input must not hide a shift.
func (r *Registry) ListOpenShifts(ctx context.Context, now time.Time, horizonDays int) ([]model.Shift, error) {
	rows, err := r.rows.ReadAllRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	today := dateOnly(now)
	cutoff := today.AddDate(0, 0, horizonDays)

	open := make([]model.Shift, 0)
	for i, row := range rows {
		// Data rows start at worksheet row 2; row 1 is the header
		shift := model.ShiftFromRow(i+2, row)

		if shift.Empty() || shift.State() != model.StateOpenUnreserved {
			continue
		}
		// A hand-edited status such as "Cancelled" is neither open nor
		// confirmed; those shifts are not offered.
		if !shift.Bookable() {
			continue
		}
		if date, ok := model.ParseShiftDate(shift.Date); ok {
			day := dateOnly(date)
			if day.Before(today) || day.After(cutoff) {
				continue
			}
		}

		open = append(open, shift)
	}

	r.logger.Debug("Listed open shifts",
		zap.Int("total_rows", len(rows)),
		zap.Int("open", len(open)))

	return open, nil
}

// ResolveApprover returns the chat id of the approver responsible for the
// shift. A numeric approverRef on the shift wins outright; otherwise the
// roster is consulted by exact trimmed location match. A failed roster
// read resolves to nothing rather than failing the caller.
func (r *Registry) ResolveApprover(ctx context.Context, shift model.Shift) (int64, bool) {
	if ref := strings.TrimSpace(shift.ApproverRef); ref != "" {
		if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
			return id, true
		}
		r.logger.Debug("Non-numeric approver ref, falling back to roster",
			zap.Int("row", shift.RowIndex),
			zap.String("approver_ref", shift.ApproverRef))
	}

	location := strings.TrimSpace(shift.Location)
	if location == "" {
		return 0, false
	}

	roster, err := r.rosterSnapshot(ctx)
	if err != nil {
		r.logger.Warn("Roster read failed, approver unresolved",
			zap.Int("row", shift.RowIndex),
			zap.Error(err))
		return 0, false
	}

	id, ok := roster[location]
	return id, ok
}

// rosterSnapshot returns the cached roster, reading the worksheet on miss.
func (r *Registry) rosterSnapshot(ctx context.Context) (map[string]int64, error) {
	if cached, ok := r.cache.Get(rosterCacheKey); ok {
		return cached.(map[string]int64), nil
	}

	roster, err := r.roster.ReadRoster(ctx)
	if err != nil {
		return nil, err
	}

	r.cache.Set(rosterCacheKey, roster, cache.DefaultExpiration)
	return roster, nil
}

// dateOnly truncates to a calendar day in UTC so horizon comparisons are
// unaffected by the process time zone.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
