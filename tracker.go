package main

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// tracker owns the whole session state: profile, today's ledger, the weight
// series, and the date-keyed history. There is exactly one logical writer
// (the active UI session); the mutex only guards against the HTTP server's
// concurrent delivery of that writer's actions. Every mutating operation
// persists the touched keys before returning — best effort, failures logged.
type tracker struct {
	mu     sync.Mutex
	store  stateStore
	policy macroPolicy
	now    func() time.Time

	profile profile
	today   dailyLedger
	weights weightSeries
	history historyStore
}

// newTracker loads persisted state, falling back to defaults for any key that
// is absent or malformed, and rolls the ledger forward if the stored "today"
// belongs to a past date.
func newTracker(store stateStore, policy macroPolicy) *tracker {
	t := &tracker{
		store:   store,
		policy:  policy,
		now:     time.Now,
		history: historyStore{},
	}

	if !loadInto(store, keyProfile, &t.profile) || !validLoadedProfile(t.profile) {
		t.profile = defaultProfile()
		if targets, err := computeTargets(t.profile, policy); err == nil {
			t.profile.Targets = targets
		}
	}
	loadInto(store, keyWeights, &t.weights)
	loadInto(store, keyHistory, &t.history)
	if t.history == nil {
		t.history = historyStore{}
	}

	todayKey := t.now().UTC().Format("2006-01-02")
	if !loadInto(store, keyToday, &t.today) || t.today.DateKey != todayKey {
		// Stored ledger is from a past day (its snapshot already lives in
		// history) or missing entirely — start today fresh.
		t.today = newLedger(todayKey)
	}
	if t.today.Entries == nil {
		t.today.Entries = []foodEntry{}
	}
	return t
}

// validLoadedProfile is the shape check applied to a persisted profile.
// Anything that fails it is treated as malformed state and replaced with
// defaults rather than allowed to poison later calculations.
func validLoadedProfile(p profile) bool {
	return validGenders[p.Gender] && validGoals[p.WeightGoal] &&
		p.Age > 0 && p.HeightCM > 0 && p.CurrentWeight > 0
}

// rollover lazily starts a fresh ledger when the calendar date has moved past
// the current one. The outgoing day's final state is already in history (it
// is written there on every mutation). Callers must hold mu.
func (t *tracker) rollover() {
	todayKey := t.now().UTC().Format("2006-01-02")
	if t.today.DateKey == todayKey {
		return
	}
	t.today = newLedger(todayKey)
	saveJSON(t.store, keyToday, t.today)
}

/* ─── Ledger operations ──────────────────────────────────────────────── */

// AddEntry validates and logs a food entry against today's ledger. A per-100g
// request is gram-scaled before the entry is built.
func (t *tracker) AddEntry(req createEntryRequest) (foodEntry, error) {
	if req.Name == "" {
		return foodEntry{}, fmt.Errorf("name is required")
	}
	if req.MealSlot != "" && !validMealSlots[req.MealSlot] {
		return foodEntry{}, fmt.Errorf("meal_slot must be one of: breakfast, lunch, dinner, snack")
	}

	calories, proteinG, carbsG, fatG := req.Calories, req.ProteinG, req.CarbsG, req.FatG
	if req.Per100G {
		if req.AmountG <= 0 {
			return foodEntry{}, fmt.Errorf("amount_g must be positive for per-100g entries")
		}
		calories, proteinG, carbsG, fatG = scaleServing(foodSearchResult{
			CaloriesPer100G: req.Calories,
			ProteinPer100G:  req.ProteinG,
			CarbsPer100G:    req.CarbsG,
			FatPer100G:      req.FatG,
		}, req.AmountG)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()

	e := newFoodEntry(req.Name, calories, proteinG, carbsG, fatG, req.MealSlot)
	t.today = addEntry(t.today, e)
	t.history.put(t.today.DateKey, t.today)
	saveJSON(t.store, keyToday, t.today)
	saveJSON(t.store, keyHistory, t.history)
	return e, nil
}

// RemoveEntry deletes an entry from today's ledger by id.
func (t *tracker) RemoveEntry(entryID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()

	updated, err := removeEntry(t.today, entryID)
	if err != nil {
		return err
	}
	t.today = updated
	t.history.put(t.today.DateKey, t.today)
	saveJSON(t.store, keyToday, t.today)
	saveJSON(t.store, keyHistory, t.history)
	return nil
}

// ResetToday clears today's ledger back to zero.
func (t *tracker) ResetToday() dailyLedger {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()

	t.today = resetLedger(t.today)
	t.history.put(t.today.DateKey, t.today)
	saveJSON(t.store, keyToday, t.today)
	saveJSON(t.store, keyHistory, t.history)
	return t.today
}

/* ─── Summaries ──────────────────────────────────────────────────────── */

// DaySummary returns the targets, totals, and entries for one date. Today is
// served from the live ledger; past dates from history (empty when absent).
func (t *tracker) DaySummary(dateKey string) daySummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()

	ledger := t.today
	if dateKey != t.today.DateKey {
		ledger = t.history.getOrCreate(dateKey)
	}
	return daySummary{
		Date:         dateKey,
		Targets:      t.profile.Targets,
		Totals:       ledger.Totals,
		CaloriesLeft: float64(t.profile.Targets.Calories) - ledger.Totals.Calories,
		Entries:      ledger.Entries,
	}
}

// RangeSummary returns zero-filled per-day totals across [from, to].
func (t *tracker) RangeSummary(from, to time.Time) []dayTotals {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return t.history.rangeTotals(from, to)
}

/* ─── Profile and targets ────────────────────────────────────────────── */

// Profile returns a copy of the current profile.
func (t *tracker) Profile() profile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.profile
}

// PatchProfile applies only the non-nil fields of the request. Enum fields
// are validated up front so a typo can't silently break later target
// computations. When manual override is active after the patch, targets are
// refreshed from the manual macros immediately; otherwise targets stay as
// they are until an explicit sync.
func (t *tracker) PatchProfile(req patchProfileRequest) (profile, error) {
	if req.Gender != nil && !validGenders[*req.Gender] {
		return profile{}, fmt.Errorf("gender must be one of: male, female")
	}
	if req.WeightGoal != nil && !validGoals[*req.WeightGoal] {
		return profile{}, fmt.Errorf("weight_goal must be one of: lose, maintain, gain")
	}
	if req.ActivityLevel != nil {
		if _, ok := activityMultipliers[*req.ActivityLevel]; !ok {
			return profile{}, fmt.Errorf("activity_level must be one of: sedentary, light, moderate, active, veryActive")
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	updated := t.profile
	if req.Gender != nil {
		updated.Gender = *req.Gender
	}
	if req.Age != nil {
		updated.Age = *req.Age
	}
	if req.HeightCM != nil {
		updated.HeightCM = *req.HeightCM
	}
	if req.CurrentWeight != nil {
		updated.CurrentWeight = *req.CurrentWeight
	}
	if req.WeightGoal != nil {
		updated.WeightGoal = *req.WeightGoal
	}
	if req.ActivityLevel != nil {
		updated.ActivityLevel = *req.ActivityLevel
	}
	if req.ManualMacros != nil {
		m := *req.ManualMacros
		updated.ManualMacros = &m
	}
	if req.ManualOverride != nil {
		updated.ManualOverride = *req.ManualOverride
	}
	if updated.ManualOverride {
		if updated.ManualMacros == nil {
			return profile{}, fmt.Errorf("manual_override requires manual_macros")
		}
		targets, err := computeTargets(updated, t.policy)
		if err != nil {
			return profile{}, err
		}
		updated.Targets = targets
	}

	t.profile = updated
	saveJSON(t.store, keyProfile, t.profile)
	return t.profile, nil
}

// SyncTargets recomputes macro targets from the current profile and stores
// them on it. Targets computed from an invalid profile are never persisted.
func (t *tracker) SyncTargets() (macroTargets, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	targets, err := computeTargets(t.profile, t.policy)
	if err != nil {
		return macroTargets{}, err
	}
	t.profile.Targets = targets
	saveJSON(t.store, keyProfile, t.profile)
	return targets, nil
}

/* ─── Weight log ─────────────────────────────────────────────────────── */

// WeightLog returns a copy of the weight series observations.
func (t *tracker) WeightLog() []weightObservation {
	t.mu.Lock()
	defer t.mu.Unlock()
	obs := make([]weightObservation, len(t.weights.Observations))
	copy(obs, t.weights.Observations)
	return obs
}

// LogWeight appends a weight observation and sets profile.CurrentWeight to
// the logged value. With recalculate, targets are also recomputed from the
// updated profile; a recompute failure keeps the weight update and is logged
// rather than rolled back.
func (t *tracker) LogWeight(date time.Time, weightKG float64, recalculate bool) (weightObservation, error) {
	if weightKG <= 0 || weightKG > 999.9 {
		return weightObservation{}, fmt.Errorf("weight_kg must be between 0 and 999.9")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	obs := weightObservation{Date: DateOnly{truncateToDay(date)}, WeightKG: weightKG}
	t.weights = appendObservation(t.weights, obs)
	t.profile.CurrentWeight = weightKG

	if recalculate {
		if targets, err := computeTargets(t.profile, t.policy); err == nil {
			t.profile.Targets = targets
		} else {
			log.Printf("[tracker] target recompute after weight log failed: %v", err)
		}
	}

	saveJSON(t.store, keyWeights, t.weights)
	saveJSON(t.store, keyProfile, t.profile)
	return obs, nil
}
