package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Column positions (1-based) in the Requests worksheet.
const (
	ColID            = 1
	ColApproverRef   = 2
	ColLocation      = 3
	ColDate          = 4
	ColTimeFrom      = 5
	ColTimeTo        = 6
	ColRequiredCount = 7
	ColReservation   = 8
	ColStatus        = 9
	ColNote          = 10
)

// Status values as stored in the worksheet. A blank status cell counts as
// StatusPending.
const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
)

// payloadDelimiter joins the reservation payload tokens. Two characters,
// not expected in display names.
const payloadDelimiter = "||"

// ErrTransientStore marks an I/O failure talking to the shared store. A
// caller seeing it must treat the mutation as not applied and surface a
// "try again" outcome.
var ErrTransientStore = errors.New("transient store error")

// State is the derived lifecycle state of a shift. The store keeps two raw
// fields (status string plus reservation cell emptiness); internal logic
// works with this enum instead of re-deriving the combination ad hoc.
type State int

const (
	// StateOpenUnreserved is the initial state: bookable by anyone.
	StateOpenUnreserved State = iota
	// StateOpenReserved means one actor holds a pending reservation.
	StateOpenReserved
	// StateConfirmed is terminal.
	StateConfirmed
)

func (s State) String() string {
	switch s {
	case StateOpenUnreserved:
		return "open"
	case StateOpenReserved:
		return "reserved"
	case StateConfirmed:
		return "confirmed"
	}
	return "unknown"
}

// Actor identifies a chat user on either side of a booking: the worker
// reserving a shift or the approver confirming it.
type Actor struct {
	Name   string
	ID     int64
	Handle string // e.g. "@ivan", may be empty
}

// EncodePayload renders the actor as a reservation cell value:
// name||id||handle.
func (a Actor) EncodePayload() string {
	return a.Name + payloadDelimiter + strconv.FormatInt(a.ID, 10) + payloadDelimiter + a.Handle
}

// DecodePayload parses a reservation cell value back into the reserving
// actor. Returns ok=false for an empty cell. A payload with fewer tokens
// than expected is decoded permissively: missing tokens stay zero.
func DecodePayload(cell string) (Actor, bool) {
	if strings.TrimSpace(cell) == "" {
		return Actor{}, false
	}

	parts := strings.Split(cell, payloadDelimiter)
	actor := Actor{Name: parts[0]}
	if len(parts) >= 2 {
		if id, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64); err == nil {
			actor.ID = id
		}
	}
	if len(parts) >= 3 {
		actor.Handle = parts[2]
	}
	return actor, true
}

// Shift is one row of the Requests worksheet. The engine never creates or
// deletes shifts; it only reads rows and mutates the reservation and status
// cells.
type Shift struct {
	RowIndex      int // 1-based worksheet row, the shift's stable id
	ID            string
	ApproverRef   string // pre-bound approver chat id, may be empty
	Location      string
	Date          string
	TimeFrom      string
	TimeTo        string
	RequiredCount string
	Reservation   string // raw payload cell, empty when unreserved
	Status        string // raw status cell
	Note          string
}

// ShiftFromRow builds a Shift from a raw worksheet row. Short rows are
// padded with empty cells; the sheets API omits trailing blanks.
func ShiftFromRow(rowIndex int, row []string) Shift {
	cell := func(col int) string {
		if col-1 < len(row) {
			return strings.TrimSpace(row[col-1])
		}
		return ""
	}

	return Shift{
		RowIndex:      rowIndex,
		ID:            cell(ColID),
		ApproverRef:   cell(ColApproverRef),
		Location:      cell(ColLocation),
		Date:          cell(ColDate),
		TimeFrom:      cell(ColTimeFrom),
		TimeTo:        cell(ColTimeTo),
		RequiredCount: cell(ColRequiredCount),
		Reservation:   cell(ColReservation),
		Status:        cell(ColStatus),
		Note:          cell(ColNote),
	}
}

// Empty reports whether the row holds no shift at all. Rows can vanish
// from under a stale listing button, and callback data arrives from the
// wire; neither may plant a reservation in a blank row.
func (s Shift) Empty() bool {
	return strings.TrimSpace(s.ID) == "" &&
		strings.TrimSpace(s.Location) == "" &&
		strings.TrimSpace(s.Date) == "" &&
		!s.Reserved()
}

// Bookable reports whether the status cell permits booking: blank or
// Pending. A hand-edited status such as "Cancelled" takes the shift out
// of circulation without confirming it.
func (s Shift) Bookable() bool {
	status := strings.TrimSpace(s.Status)
	return status == "" || status == StatusPending
}

// Reserved reports whether the reservation cell holds a payload.
func (s Shift) Reserved() bool {
	return strings.TrimSpace(s.Reservation) != ""
}

// ReservedBy decodes the reserving actor from the reservation cell.
func (s Shift) ReservedBy() (Actor, bool) {
	return DecodePayload(s.Reservation)
}

// State derives the lifecycle state from the two raw store fields.
func (s Shift) State() State {
	if strings.TrimSpace(s.Status) == StatusConfirmed {
		return StateConfirmed
	}
	if s.Reserved() {
		return StateOpenReserved
	}
	return StateOpenUnreserved
}

// Details renders the shift for chat messages.
func (s Shift) Details() string {
	status := strings.TrimSpace(s.Status)
	if status == "" {
		status = StatusPending
	}
	return fmt.Sprintf(
		"📍 Location: %s\n📅 Date: %s\n🕒 %s–%s\n👥 Needed: %s\n📌 Status: %s",
		s.Location, s.Date, s.TimeFrom, s.TimeTo, s.RequiredCount, status)
}

// shiftDateLayouts are the date formats accepted in the date column, in
// the order they are tried.
var shiftDateLayouts = []string{"02.01.2006", "2006-01-02", "02/01/2006"}

// ParseShiftDate parses a shift date cell. Returns ok=false when the value
// matches none of the accepted layouts; callers treat unparseable dates
// permissively rather than hiding the shift.
func ParseShiftDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range shiftDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
