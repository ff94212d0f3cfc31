package main

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// errEntryNotFound is returned by removeEntry when no entry carries the given id.
var errEntryNotFound = errors.New("entry not found")

// newLedger returns an empty ledger for the given calendar-date key.
func newLedger(dateKey string) dailyLedger {
	return dailyLedger{DateKey: dateKey, Entries: []foodEntry{}}
}

// newFoodEntry builds an entry with a fresh uuid and timestamp. Negative
// macro values are clamped to zero so a bad client can never drive totals
// backwards through an add.
func newFoodEntry(name string, calories, proteinG, carbsG, fatG float64, mealSlot string) foodEntry {
	return foodEntry{
		ID:       uuid.New().String(),
		Name:     name,
		Calories: clampNonNegative(calories),
		ProteinG: clampNonNegative(proteinG),
		CarbsG:   clampNonNegative(carbsG),
		FatG:     clampNonNegative(fatG),
		MealSlot: mealSlot,
		LoggedAt: time.Now().UTC(),
	}
}

// scaleServing converts a per-100g search result into entry macros for the
// given gram amount. Each field is scaled and rounded independently.
func scaleServing(food foodSearchResult, amountG float64) (calories, proteinG, carbsG, fatG float64) {
	factor := amountG / 100
	calories = math.Round(food.CaloriesPer100G * factor)
	proteinG = math.Round(food.ProteinPer100G * factor)
	carbsG = math.Round(food.CarbsPer100G * factor)
	fatG = math.Round(food.FatPer100G * factor)
	return calories, proteinG, carbsG, fatG
}

// addEntry returns a copy of the ledger with the entry prepended (newest
// first) and its macros added to the totals. The input ledger is not mutated.
func addEntry(l dailyLedger, e foodEntry) dailyLedger {
	entries := make([]foodEntry, 0, len(l.Entries)+1)
	entries = append(entries, e)
	entries = append(entries, l.Entries...)

	l.Entries = entries
	l.Totals.Calories += e.Calories
	l.Totals.ProteinG += e.ProteinG
	l.Totals.CarbsG += e.CarbsG
	l.Totals.FatG += e.FatG
	return l
}

// removeEntry returns a copy of the ledger without the identified entry,
// subtracting exactly that entry's macros from the totals. Subtraction clamps
// at zero so floating-point drift can never leave a negative total. Returns
// errEntryNotFound when the id is absent; the input ledger is not mutated.
func removeEntry(l dailyLedger, entryID string) (dailyLedger, error) {
	idx := -1
	for i, e := range l.Entries {
		if e.ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return l, errEntryNotFound
	}

	removed := l.Entries[idx]
	entries := make([]foodEntry, 0, len(l.Entries)-1)
	entries = append(entries, l.Entries[:idx]...)
	entries = append(entries, l.Entries[idx+1:]...)

	l.Entries = entries
	l.Totals.Calories = clampNonNegative(l.Totals.Calories - removed.Calories)
	l.Totals.ProteinG = clampNonNegative(l.Totals.ProteinG - removed.ProteinG)
	l.Totals.CarbsG = clampNonNegative(l.Totals.CarbsG - removed.CarbsG)
	l.Totals.FatG = clampNonNegative(l.Totals.FatG - removed.FatG)
	return l, nil
}

// resetLedger zeroes the totals and empties the entry list, keeping the date
// key. Used for "clear today". Idempotent.
func resetLedger(l dailyLedger) dailyLedger {
	return newLedger(l.DateKey)
}

// recomputeTotals sums macros from scratch across the entry list. The running
// totals must always match this — used as the drift check in tests.
func recomputeTotals(l dailyLedger) macroTotals {
	var t macroTotals
	for _, e := range l.Entries {
		t.Calories += e.Calories
		t.ProteinG += e.ProteinG
		t.CarbsG += e.CarbsG
		t.FatG += e.FatG
	}
	return t
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
