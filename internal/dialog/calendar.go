package dialog

import (
	"fmt"
	"time"

	"github.com/taskline/taskline/internal/bot"
)

const calendarDateLayout = "2006-01-02"

const calendarMonthLayout = "2006-01"

// monthStart truncates t to the first day of its month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// calendarKeyboard renders one month as an inline date picker. Day
// cells emit calendar_pick, the header arrows emit calendar_month, and
// padding cells are inert.
func calendarKeyboard(month time.Time) *bot.Keyboard {
	month = monthStart(month)
	prev := month.AddDate(0, -1, 0)
	next := month.AddDate(0, 1, 0)

	rows := [][]bot.Button{
		{
			{Label: "«", Data: "calendar_month:" + prev.Format(calendarMonthLayout)},
			{Label: month.Format("January 2006"), Data: "noop"},
			{Label: "»", Data: "calendar_month:" + next.Format(calendarMonthLayout)},
		},
		{
			{Label: "Mo", Data: "noop"}, {Label: "Tu", Data: "noop"},
			{Label: "We", Data: "noop"}, {Label: "Th", Data: "noop"},
			{Label: "Fr", Data: "noop"}, {Label: "Sa", Data: "noop"},
			{Label: "Su", Data: "noop"},
		},
	}

	// Weeks start on Monday.
	lead := (int(month.Weekday()) + 6) % 7
	daysInMonth := next.AddDate(0, 0, -1).Day()

	week := make([]bot.Button, 0, 7)
	for i := 0; i < lead; i++ {
		week = append(week, bot.Button{Label: " ", Data: "noop"})
	}
	for day := 1; day <= daysInMonth; day++ {
		date := month.AddDate(0, 0, day-1)
		week = append(week, bot.Button{
			Label: fmt.Sprintf("%d", day),
			Data:  "calendar_pick:" + date.Format(calendarDateLayout),
		})
		if len(week) == 7 {
			rows = append(rows, week)
			week = make([]bot.Button, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, bot.Button{Label: " ", Data: "noop"})
		}
		rows = append(rows, week)
	}

	rows = append(rows, bot.InlineRow("❌ Cancel", "cancel"))
	return &bot.Keyboard{Rows: rows}
}
