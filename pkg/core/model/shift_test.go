package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodePayload_RoundTrip(t *testing.T) {
	actor := Actor{Name: "Ivan Petrenko", ID: 42, Handle: "@ivan"}

	decoded, ok := DecodePayload(actor.EncodePayload())

	require.True(t, ok)
	assert.Equal(t, actor, decoded)
}

func TestEncodeDecodePayload_EmptyHandle(t *testing.T) {
	actor := Actor{Name: "Ivan Petrenko", ID: 42}

	assert.Equal(t, "Ivan Petrenko||42||", actor.EncodePayload())

	decoded, ok := DecodePayload(actor.EncodePayload())
	require.True(t, ok)
	assert.Equal(t, actor, decoded)
}

func TestDecodePayload_EmptyCell(t *testing.T) {
	_, ok := DecodePayload("")
	assert.False(t, ok)

	_, ok = DecodePayload("   ")
	assert.False(t, ok)
}

func TestDecodePayload_PartialTokens(t *testing.T) {
	// Legacy cells written by hand may omit tokens
	decoded, ok := DecodePayload("Ivan")
	require.True(t, ok)
	assert.Equal(t, Actor{Name: "Ivan"}, decoded)

	decoded, ok = DecodePayload("Ivan||notanumber")
	require.True(t, ok)
	assert.Equal(t, Actor{Name: "Ivan"}, decoded)
}

func TestShiftState(t *testing.T) {
	tests := []struct {
		name        string
		status      string
		reservation string
		want        State
	}{
		{"blank status, unreserved", "", "", StateOpenUnreserved},
		{"pending, unreserved", StatusPending, "", StateOpenUnreserved},
		{"pending, reserved", StatusPending, "Ivan||42||@ivan", StateOpenReserved},
		{"blank status, reserved", "", "Ivan||42||@ivan", StateOpenReserved},
		{"confirmed", StatusConfirmed, "Ivan||42||@ivan", StateConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Shift{Status: tt.status, Reservation: tt.reservation}
			assert.Equal(t, tt.want, s.State())
		})
	}
}

func TestShiftEmpty(t *testing.T) {
	assert.True(t, Shift{}.Empty())
	assert.True(t, ShiftFromRow(99, nil).Empty())
	assert.True(t, ShiftFromRow(99, []string{"", "", "", ""}).Empty())

	assert.False(t, Shift{ID: "S1"}.Empty())
	assert.False(t, Shift{Location: "Store A"}.Empty())
	assert.False(t, Shift{Date: "01.09.2026"}.Empty())
	assert.False(t, Shift{Reservation: "Ivan||42||@ivan"}.Empty())
}

func TestShiftBookable(t *testing.T) {
	assert.True(t, Shift{Status: ""}.Bookable())
	assert.True(t, Shift{Status: StatusPending}.Bookable())
	assert.True(t, Shift{Status: " Pending "}.Bookable())

	assert.False(t, Shift{Status: StatusConfirmed}.Bookable())
	assert.False(t, Shift{Status: "Cancelled"}.Bookable())
}

func TestShiftFromRow_ShortRow(t *testing.T) {
	// The sheets API drops trailing empty cells
	s := ShiftFromRow(5, []string{"S1", "", "Store A", "01.09.2026"})

	assert.Equal(t, 5, s.RowIndex)
	assert.Equal(t, "S1", s.ID)
	assert.Equal(t, "Store A", s.Location)
	assert.Equal(t, "01.09.2026", s.Date)
	assert.Empty(t, s.Reservation)
	assert.Empty(t, s.Status)
	assert.Equal(t, StateOpenUnreserved, s.State())
}

func TestParseShiftDate(t *testing.T) {
	want := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	for _, value := range []string{"01.09.2026", "2026-09-01", "01/09/2026"} {
		got, ok := ParseShiftDate(value)
		require.True(t, ok, "layout %s", value)
		assert.True(t, want.Equal(got))
	}

	_, ok := ParseShiftDate("next Tuesday")
	assert.False(t, ok)

	_, ok = ParseShiftDate("")
	assert.False(t, ok)
}
