package main

import (
	"time"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Key returns the canonical calendar-date key used throughout the store.
func (d DateOnly) Key() string {
	return d.Time.Format("2006-01-02")
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// validGenders, validGoals, validMealSlots mirror the UI enums. Unknown
// values are rejected at the API boundary rather than surfacing later as a
// silently wrong calculation.
var validGenders = map[string]bool{
	"male":   true,
	"female": true,
}

var validGoals = map[string]bool{
	"lose":     true,
	"maintain": true,
	"gain":     true,
}

var validMealSlots = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// profile is the user's body stats, goal settings, and current macro targets.
// Targets live on the profile (not recomputed on every read) so the user can
// hold manual values; sync-targets recomputes and stores them.
type profile struct {
	Gender        string  `json:"gender"`
	Age           int     `json:"age"`
	HeightCM      float64 `json:"height_cm"`
	CurrentWeight float64 `json:"current_weight_kg"`
	WeightGoal    string  `json:"weight_goal"`
	ActivityLevel string  `json:"activity_level"`

	// When ManualOverride is set, ManualMacros is used verbatim instead of
	// the computed protein/carb/fat split.
	ManualOverride bool          `json:"manual_override"`
	ManualMacros   *manualMacros `json:"manual_macros,omitempty"`

	Targets macroTargets `json:"targets"`
}

// manualMacros is the user-specified gram split used when ManualOverride is on.
type manualMacros struct {
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// macroTargets is a daily calorie budget with its gram split.
// Calories ≈ ProteinG*4 + CarbsG*4 + FatG*9 within independent-rounding drift.
type macroTargets struct {
	Calories int `json:"calories"`
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

// defaultProfile is the first-run seed state. Targets are filled in at
// startup so a fresh install never shows zero budgets.
func defaultProfile() profile {
	return profile{
		Gender:        "male",
		Age:           25,
		HeightCM:      180,
		CurrentWeight: 80,
		WeightGoal:    "maintain",
		ActivityLevel: "moderate",
	}
}

// foodEntry is a single logged food record. Immutable once logged except by
// deletion. ID is a uuid assigned at creation time.
type foodEntry struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Calories float64   `json:"calories"`
	ProteinG float64   `json:"protein_g"`
	CarbsG   float64   `json:"carbs_g"`
	FatG     float64   `json:"fat_g"`
	MealSlot string    `json:"meal_slot,omitempty"`
	LoggedAt time.Time `json:"logged_at"`
}

// macroTotals is the element-wise sum of a ledger's entries.
type macroTotals struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// dailyLedger accumulates one day's entries and their running totals.
// Entries are newest-first. Totals always equal the element-wise sum of
// entries, modulo clamping at zero on removal.
type dailyLedger struct {
	DateKey string      `json:"date_key"`
	Totals  macroTotals `json:"totals"`
	Entries []foodEntry `json:"entries"`
}

// weightObservation is a single body-weight reading.
type weightObservation struct {
	Date     DateOnly `json:"date"`
	WeightKG float64  `json:"weight_kg"`
}

// weightSeries holds weight observations sorted by date, ties in insertion
// order. LatestIdx points at the most recently appended observation, which is
// what drives profile.CurrentWeight — not the max-date entry. Back-dated
// entries therefore never steal "latest".
type weightSeries struct {
	Observations []weightObservation `json:"observations"`
	LatestIdx    int                 `json:"latest_idx"`
}

/* ─── Request / Response types ───────────────────────────────────────── */

// createEntryRequest is the body for POST /api/entries. Either direct macro
// values, or per-100g values plus AmountG for gram scaling — Per100G decides
// which interpretation applies.
type createEntryRequest struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	MealSlot string  `json:"meal_slot"`
	Per100G  bool    `json:"per_100g"`
	AmountG  float64 `json:"amount_g"`
}

// patchProfileRequest is the body for PATCH /api/profile. All fields are
// pointers — only non-nil fields get applied.
type patchProfileRequest struct {
	Gender         *string       `json:"gender"`
	Age            *int          `json:"age"`
	HeightCM       *float64      `json:"height_cm"`
	CurrentWeight  *float64      `json:"current_weight_kg"`
	WeightGoal     *string       `json:"weight_goal"`
	ActivityLevel  *string       `json:"activity_level"`
	ManualOverride *bool         `json:"manual_override"`
	ManualMacros   *manualMacros `json:"manual_macros"`
}

// logWeightRequest is the body for POST /api/weight-log. Date defaults to today.
type logWeightRequest struct {
	Date     string  `json:"date"`
	WeightKG float64 `json:"weight_kg"`
}

// daySummary is the response shape for GET /api/summary/daily.
type daySummary struct {
	Date         string       `json:"date"`
	Targets      macroTargets `json:"targets"`
	Totals       macroTotals  `json:"totals"`
	CaloriesLeft float64      `json:"calories_left"`
	Entries      []foodEntry  `json:"entries"`
}

// dayTotals is one day's row in the GET /api/summary/range response.
// Days with no logged entries have HasData=false and zero totals.
type dayTotals struct {
	Date    DateOnly    `json:"date"`
	Totals  macroTotals `json:"totals"`
	HasData bool        `json:"has_data"`
}

// foodSearchResult is one candidate food from the search collaborator.
// Macro values are per 100g.
type foodSearchResult struct {
	Name            string  `json:"name"`
	Brand           string  `json:"brand,omitempty"`
	CaloriesPer100G float64 `json:"calories_per_100g"`
	ProteinPer100G  float64 `json:"protein_per_100g"`
	CarbsPer100G    float64 `json:"carbs_per_100g"`
	FatPer100G      float64 `json:"fat_per_100g"`
}
