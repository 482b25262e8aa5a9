package dialog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarKeyboard(t *testing.T) {
	// March 2030 starts on a Friday and has 31 days.
	kb := calendarKeyboard(time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NotNil(t, kb)

	header := kb.Rows[0]
	require.Len(t, header, 3)
	assert.Equal(t, "calendar_month:2030-02", header[0].Data)
	assert.Equal(t, "March 2030", header[1].Label)
	assert.Equal(t, "calendar_month:2030-04", header[2].Data)

	var first, last string
	days := 0
	for _, row := range kb.Rows[2:] {
		for _, b := range row {
			if b.Data == "noop" || b.Data == "cancel" {
				continue
			}
			if first == "" {
				first = b.Data
			}
			last = b.Data
			days++
		}
	}
	assert.Equal(t, 31, days)
	assert.Equal(t, "calendar_pick:2030-03-01", first)
	assert.Equal(t, "calendar_pick:2030-03-31", last)

	// The first week is padded through Thursday.
	week := kb.Rows[2]
	require.Len(t, week, 7)
	assert.Equal(t, "noop", week[3].Data)
	assert.Equal(t, "calendar_pick:2030-03-01", week[4].Data)
}

func TestCalendarKeyboardMidMonthInput(t *testing.T) {
	// Any day of the month renders that whole month.
	kb := calendarKeyboard(time.Date(2030, 3, 17, 15, 4, 5, 0, time.UTC))
	assert.Equal(t, "March 2030", kb.Rows[0][1].Label)
}
