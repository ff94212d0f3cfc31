package main

import (
	"errors"
	"math"
	"testing"
)

// sampleEntry builds a deterministic entry for ledger tests.
func sampleEntry(name string, calories, proteinG, carbsG, fatG float64) foodEntry {
	return newFoodEntry(name, calories, proteinG, carbsG, fatG, "")
}

// totalsMatchEntries is the drift invariant: after any sequence of add and
// remove operations the running totals must equal a from-scratch recompute.
func totalsMatchEntries(t *testing.T, l dailyLedger) {
	t.Helper()
	want := recomputeTotals(l)
	if l.Totals != want {
		t.Errorf("running totals %+v drifted from recomputed %+v", l.Totals, want)
	}
}

/* ─── Add / remove tests ─────────────────────────────────────────────── */

// TestLedger_AddEntry verifies an add prepends (newest first) and updates
// totals, without mutating the input ledger.
func TestLedger_AddEntry(t *testing.T) {
	base := newLedger("2026-08-29")
	first := addEntry(base, sampleEntry("oats", 389, 13, 66, 7))
	second := addEntry(first, sampleEntry("egg", 70, 6, 0, 5))

	if len(base.Entries) != 0 || base.Totals.Calories != 0 {
		t.Errorf("input ledger was mutated: %+v", base)
	}
	if len(second.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(second.Entries))
	}
	if second.Entries[0].Name != "egg" {
		t.Errorf("expected newest entry first, got %q", second.Entries[0].Name)
	}
	if second.Totals.Calories != 459 || second.Totals.ProteinG != 19 {
		t.Errorf("totals = %+v, want calories 459, protein 19", second.Totals)
	}
	totalsMatchEntries(t, second)
}

// TestLedger_AddRemoveRoundTrip verifies adding then removing an entry yields
// totals identical to the original empty ledger — exact round trip.
func TestLedger_AddRemoveRoundTrip(t *testing.T) {
	base := newLedger("2026-08-29")
	e := sampleEntry("chicken salad", 300, 20, 30, 10)

	added := addEntry(base, e)
	removed, err := removeEntry(added, e.ID)
	if err != nil {
		t.Fatalf("removeEntry returned error: %v", err)
	}

	if removed.Totals != base.Totals {
		t.Errorf("totals after round trip = %+v, want %+v", removed.Totals, base.Totals)
	}
	if len(removed.Entries) != 0 {
		t.Errorf("expected no entries after round trip, got %d", len(removed.Entries))
	}
}

// TestLedger_RemoveUnknownID verifies errEntryNotFound and that the ledger is
// returned unchanged.
func TestLedger_RemoveUnknownID(t *testing.T) {
	l := addEntry(newLedger("2026-08-29"), sampleEntry("rice", 130, 2.7, 28, 0.3))

	got, err := removeEntry(l, "no-such-id")
	if !errors.Is(err, errEntryNotFound) {
		t.Fatalf("expected errEntryNotFound, got %v", err)
	}
	if len(got.Entries) != 1 || got.Totals != l.Totals {
		t.Errorf("ledger changed on failed remove: %+v", got)
	}
}

// TestLedger_RemoveMiddleEntry verifies removal by identity, not position.
func TestLedger_RemoveMiddleEntry(t *testing.T) {
	l := newLedger("2026-08-29")
	a := sampleEntry("a", 100, 10, 10, 2)
	b := sampleEntry("b", 200, 20, 20, 4)
	c := sampleEntry("c", 300, 30, 30, 6)
	for _, e := range []foodEntry{a, b, c} {
		l = addEntry(l, e)
	}

	got, err := removeEntry(l, b.ID)
	if err != nil {
		t.Fatalf("removeEntry returned error: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got.Entries))
	}
	for _, e := range got.Entries {
		if e.ID == b.ID {
			t.Errorf("removed entry still present")
		}
	}
	if got.Totals.Calories != 400 {
		t.Errorf("calories = %.0f, want 400", got.Totals.Calories)
	}
	totalsMatchEntries(t, got)
}

// TestLedger_InterleavedSequence runs a longer add/remove sequence and checks
// the totals invariant after every step.
func TestLedger_InterleavedSequence(t *testing.T) {
	l := newLedger("2026-08-29")
	var ids []string

	for i := 0; i < 10; i++ {
		e := sampleEntry("food", float64(50+i*13), float64(i)*1.5, float64(i)*2.5, float64(i)*0.5)
		l = addEntry(l, e)
		ids = append(ids, e.ID)
		totalsMatchEntries(t, l)
	}
	for _, id := range []string{ids[0], ids[5], ids[9], ids[2]} {
		var err error
		l, err = removeEntry(l, id)
		if err != nil {
			t.Fatalf("removeEntry(%s) returned error: %v", id, err)
		}
		totalsMatchEntries(t, l)
	}
	if len(l.Entries) != 6 {
		t.Errorf("expected 6 entries left, got %d", len(l.Entries))
	}
	for _, total := range []float64{l.Totals.Calories, l.Totals.ProteinG, l.Totals.CarbsG, l.Totals.FatG} {
		if total < 0 {
			t.Errorf("negative total after sequence: %+v", l.Totals)
		}
	}
}

/* ─── Reset tests ────────────────────────────────────────────────────── */

// TestLedger_ResetIdempotent verifies reset zeroes everything and that a
// second reset is a no-op producing the same value.
func TestLedger_ResetIdempotent(t *testing.T) {
	l := addEntry(newLedger("2026-08-29"), sampleEntry("salmon", 208, 20, 0, 13))

	once := resetLedger(l)
	if once.Totals != (macroTotals{}) || len(once.Entries) != 0 {
		t.Errorf("reset ledger not empty: %+v", once)
	}
	if once.DateKey != "2026-08-29" {
		t.Errorf("reset changed date key to %q", once.DateKey)
	}

	twice := resetLedger(once)
	if twice.Totals != once.Totals || len(twice.Entries) != len(once.Entries) || twice.DateKey != once.DateKey {
		t.Errorf("second reset differs: %+v vs %+v", twice, once)
	}
}

/* ─── Entry construction and scaling tests ───────────────────────────── */

// TestNewFoodEntry_ClampsNegatives verifies negative macro inputs clamp to
// zero at entry construction.
func TestNewFoodEntry_ClampsNegatives(t *testing.T) {
	e := newFoodEntry("weird", -100, -5, -10, -1, "")
	if e.Calories != 0 || e.ProteinG != 0 || e.CarbsG != 0 || e.FatG != 0 {
		t.Errorf("negative macros not clamped: %+v", e)
	}
}

// TestNewFoodEntry_UniqueIDs verifies entry identities are unique.
func TestNewFoodEntry_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		e := newFoodEntry("x", 1, 0, 0, 0, "")
		if seen[e.ID] {
			t.Fatalf("duplicate id %s", e.ID)
		}
		seen[e.ID] = true
	}
}

// TestScaleServing verifies per-100g macros scale by amount/100 with
// independent per-field rounding.
func TestScaleServing(t *testing.T) {
	food := foodSearchResult{
		Name:            "Chicken breast",
		CaloriesPer100G: 165,
		ProteinPer100G:  31,
		CarbsPer100G:    0,
		FatPer100G:      3.6,
	}

	cases := []struct {
		amountG                          float64
		calories, protein, carbs, fat    float64
	}{
		{100, 165, 31, 0, 4},
		{150, 248, 47, 0, 5},  // 247.5 rounds away from zero, 46.5 likewise
		{50, 83, 16, 0, 2},    // 82.5 -> 83, 15.5 -> 16, 1.8 -> 2
		{0.0, 0, 0, 0, 0},
	}

	for _, tc := range cases {
		calories, protein, carbs, fat := scaleServing(food, tc.amountG)
		if calories != tc.calories || protein != tc.protein || carbs != tc.carbs || fat != tc.fat {
			t.Errorf("scaleServing(%.0fg) = (%.0f, %.0f, %.0f, %.0f), want (%.0f, %.0f, %.0f, %.0f)",
				tc.amountG, calories, protein, carbs, fat,
				tc.calories, tc.protein, tc.carbs, tc.fat)
		}
	}
}

// TestScaleServing_FractionalMacros checks a result with fractional per-100g
// values at an odd gram amount.
func TestScaleServing_FractionalMacros(t *testing.T) {
	food := foodSearchResult{CaloriesPer100G: 389, ProteinPer100G: 16.9, CarbsPer100G: 66.3, FatPer100G: 6.9}
	calories, protein, carbs, fat := scaleServing(food, 40)

	if calories != math.Round(389*0.4) {
		t.Errorf("calories = %.0f, want %.0f", calories, math.Round(389*0.4))
	}
	if protein != 7 { // 6.76 -> 7
		t.Errorf("protein = %.0f, want 7", protein)
	}
	if carbs != 27 { // 26.52 -> 27
		t.Errorf("carbs = %.0f, want 27", carbs)
	}
	if fat != 3 { // 2.76 -> 3
		t.Errorf("fat = %.0f, want 3", fat)
	}
}
