package main

import (
	"time"
)

// historyStore maps a calendar-date key to that day's ledger snapshot. Keys
// grow monotonically — one per distinct day the user logged anything. Past
// days are not updated in practice, though nothing enforces that.
type historyStore map[string]dailyLedger

// getOrCreate returns the stored ledger for the date or a fresh empty one.
// The fresh ledger is not written into the store — that happens on the first
// mutation, via put.
func (h historyStore) getOrCreate(dateKey string) dailyLedger {
	if l, ok := h[dateKey]; ok {
		return l
	}
	return newLedger(dateKey)
}

// put replaces or creates the ledger stored under the date key.
func (h historyStore) put(dateKey string, l dailyLedger) {
	h[dateKey] = l
}

// rangeTotals produces one row per calendar day in [from, to] inclusive,
// zero totals for days with no ledger, so fixed-length chart windows
// (7/30/365 days) never have gaps. Same merge strategy as indexing DB rows
// by date string and walking the window day by day.
func (h historyStore) rangeTotals(from, to time.Time) []dayTotals {
	from = truncateToDay(from)
	to = truncateToDay(to)
	if to.Before(from) {
		return []dayTotals{}
	}

	days := int(to.Sub(from).Hours()/24) + 1
	result := make([]dayTotals, 0, days)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		row := dayTotals{Date: DateOnly{d}}
		if l, ok := h[d.Format("2006-01-02")]; ok {
			row.Totals = l.Totals
			row.HasData = true
		}
		result = append(result, row)
	}
	return result
}

// truncateToDay drops the time-of-day component in UTC.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
