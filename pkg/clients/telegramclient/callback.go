package telegramclient

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback verbs carried in inline button data. The payload after the
// colon is the 1-based worksheet row of the shift.
const (
	CallbackBook    = "book"
	CallbackConfirm = "confirm"
)

// BookCallbackData encodes a book action for the shift at rowIndex.
func BookCallbackData(rowIndex int) string {
	return fmt.Sprintf("%s:%d", CallbackBook, rowIndex)
}

// ConfirmCallbackData encodes a confirm action for the shift at rowIndex.
func ConfirmCallbackData(rowIndex int) string {
	return fmt.Sprintf("%s:%d", CallbackConfirm, rowIndex)
}

// ParseCallbackData splits callback data into its verb and shift row.
func ParseCallbackData(data string) (verb string, rowIndex int, err error) {
	verb, payload, found := strings.Cut(data, ":")
	if !found {
		return "", 0, fmt.Errorf("callback data %q has no payload", data)
	}
	if verb != CallbackBook && verb != CallbackConfirm {
		return "", 0, fmt.Errorf("unknown callback verb %q", verb)
	}

	rowIndex, err = strconv.Atoi(payload)
	if err != nil || rowIndex < 1 {
		return "", 0, fmt.Errorf("callback data %q has an invalid row index", data)
	}
	return verb, rowIndex, nil
}
