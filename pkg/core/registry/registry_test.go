package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iyaskobsp/shift-booking-bot/pkg/core/model"
)

type fakeRows struct {
	rows [][]string
	err  error
}

func (f *fakeRows) ReadAllRows(context.Context) ([][]string, error) {
	return f.rows, f.err
}

type fakeRoster struct {
	roster map[string]int64
	err    error
	reads  int
}

func (f *fakeRoster) ReadRoster(context.Context) (map[string]int64, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return f.roster, nil
}

var now = time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC)

func shiftRow(date, reservation, status string) []string {
	return []string{"S1", "", "Store A", date, "09:00", "18:00", "2", reservation, status, ""}
}

func newTestRegistry(rows *fakeRows, roster *fakeRoster) *Registry {
	return New(rows, roster, zap.NewNop())
}

func TestListOpenShifts_ExcludesReservedAndConfirmed(t *testing.T) {
	rows := &fakeRows{rows: [][]string{
		shiftRow("02.09.2026", "", "Pending"),
		shiftRow("02.09.2026", "Ivan||42||@ivan", "Pending"),
		shiftRow("02.09.2026", "Ivan||42||@ivan", "Confirmed"),
	}}

	open, err := newTestRegistry(rows, &fakeRoster{}).ListOpenShifts(context.Background(), now, 60)

	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, 2, open[0].RowIndex, "row index maps back to the worksheet")
}

func TestListOpenShifts_HorizonBoundaries(t *testing.T) {
	rows := &fakeRows{rows: [][]string{
		shiftRow("31.08.2026", "", ""), // yesterday: excluded
		shiftRow("01.09.2026", "", ""), // today: included
		shiftRow("31.10.2026", "", ""), // now + 60d exactly: included
		shiftRow("01.11.2026", "", ""), // past the horizon: excluded
	}}

	open, err := newTestRegistry(rows, &fakeRoster{}).ListOpenShifts(context.Background(), now, 60)

	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "01.09.2026", open[0].Date)
	assert.Equal(t, "31.10.2026", open[1].Date)
}

func TestListOpenShifts_UnparseableDatePassesThrough(t *testing.T) {
	rows := &fakeRows{rows: [][]string{
		shiftRow("next Tuesday", "", ""),
	}}

	open, err := newTestRegistry(rows, &fakeRoster{}).ListOpenShifts(context.Background(), now, 60)

	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestListOpenShifts_BlankStatusCountsAsOpen(t *testing.T) {
	rows := &fakeRows{rows: [][]string{
		shiftRow("02.09.2026", "", ""),
	}}

	open, err := newTestRegistry(rows, &fakeRoster{}).ListOpenShifts(context.Background(), now, 60)

	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestListOpenShifts_ForeignStatusExcluded(t *testing.T) {
	// A status set by hand in the sheet, e.g. Cancelled, takes the shift
	// off the board even though the reservation cell is empty.
	rows := &fakeRows{rows: [][]string{
		shiftRow("02.09.2026", "", "Cancelled"),
		shiftRow("02.09.2026", "", "Pending"),
	}}

	open, err := newTestRegistry(rows, &fakeRoster{}).ListOpenShifts(context.Background(), now, 60)

	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, 3, open[0].RowIndex)
}

func TestListOpenShifts_BlankRowsSkipped(t *testing.T) {
	rows := &fakeRows{rows: [][]string{
		shiftRow("02.09.2026", "", "Pending"),
		{"", "", "", "", "", "", "", "", "", ""},
	}}

	open, err := newTestRegistry(rows, &fakeRoster{}).ListOpenShifts(context.Background(), now, 60)

	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestListOpenShifts_StoreError(t *testing.T) {
	rows := &fakeRows{err: errors.Join(errors.New("boom"), model.ErrTransientStore)}

	_, err := newTestRegistry(rows, &fakeRoster{}).ListOpenShifts(context.Background(), now, 60)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTransientStore)
}

func TestResolveApprover_NumericRefWinsOverRoster(t *testing.T) {
	roster := &fakeRoster{roster: map[string]int64{"Store A": 555}}
	registry := newTestRegistry(&fakeRows{}, roster)

	shift := model.Shift{RowIndex: 2, ApproverRef: "999", Location: "Store A"}
	id, ok := registry.ResolveApprover(context.Background(), shift)

	require.True(t, ok)
	assert.Equal(t, int64(999), id)
	assert.Zero(t, roster.reads, "roster must not be consulted when the ref is set")
}

func TestResolveApprover_RosterLookup(t *testing.T) {
	roster := &fakeRoster{roster: map[string]int64{"Store A": 555}}
	registry := newTestRegistry(&fakeRows{}, roster)

	id, ok := registry.ResolveApprover(context.Background(), model.Shift{Location: "Store A"})

	require.True(t, ok)
	assert.Equal(t, int64(555), id)
}

func TestResolveApprover_NonNumericRefFallsBack(t *testing.T) {
	roster := &fakeRoster{roster: map[string]int64{"Store A": 555}}
	registry := newTestRegistry(&fakeRows{}, roster)

	shift := model.Shift{ApproverRef: "not-a-chat-id", Location: "Store A"}
	id, ok := registry.ResolveApprover(context.Background(), shift)

	require.True(t, ok)
	assert.Equal(t, int64(555), id)
}

func TestResolveApprover_TrimsLocation(t *testing.T) {
	roster := &fakeRoster{roster: map[string]int64{"Store A": 555}}
	registry := newTestRegistry(&fakeRows{}, roster)

	id, ok := registry.ResolveApprover(context.Background(), model.Shift{Location: "  Store A  "})

	require.True(t, ok)
	assert.Equal(t, int64(555), id)
}

func TestResolveApprover_NoMatch(t *testing.T) {
	roster := &fakeRoster{roster: map[string]int64{"Store A": 555}}
	registry := newTestRegistry(&fakeRows{}, roster)

	_, ok := registry.ResolveApprover(context.Background(), model.Shift{Location: "Store B"})
	assert.False(t, ok)

	_, ok = registry.ResolveApprover(context.Background(), model.Shift{})
	assert.False(t, ok)
}

func TestResolveApprover_RosterErrorDegrades(t *testing.T) {
	roster := &fakeRoster{err: errors.New("roster unavailable")}
	registry := newTestRegistry(&fakeRows{}, roster)

	_, ok := registry.ResolveApprover(context.Background(), model.Shift{Location: "Store A"})

	assert.False(t, ok, "a failed roster read resolves to nothing, not an error")
}

func TestResolveApprover_RosterCached(t *testing.T) {
	roster := &fakeRoster{roster: map[string]int64{"Store A": 555}}
	registry := newTestRegistry(&fakeRows{}, roster)

	for i := 0; i < 3; i++ {
		_, ok := registry.ResolveApprover(context.Background(), model.Shift{Location: "Store A"})
		require.True(t, ok)
	}

	assert.Equal(t, 1, roster.reads, "repeated lookups within the TTL hit the cache")
}
