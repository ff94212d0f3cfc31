package main

import (
	"errors"
	"fmt"
	"math"
)

// errInvalidProfile is returned by computeTargets when a required body stat is
// missing or non-positive. Callers must not persist targets built from an
// invalid profile.
var errInvalidProfile = errors.New("invalid profile")

// activityMultipliers maps activity level strings to their TDEE multiplier.
// This is the single source of truth for valid activity levels — also used
// for input validation in patchProfile. An unknown level falls back to
// sedentary (1.2) inside computeTargets rather than failing, so stored state
// with a retired level name still yields a usable target.
var activityMultipliers = map[string]float64{
	"sedentary":  1.2,
	"light":      1.375,
	"moderate":   1.55,
	"active":     1.725,
	"veryActive": 1.9,
}

// macroPolicy holds the tunable constants of the recommendation formula.
// Coaching guidance differs on some of these (protein 2.0 vs 2.2 g/kg when
// cutting, fat 0.8 vs 0.9 g/kg), so they are configuration rather than
// hard-coded values.
type macroPolicy struct {
	ProteinLoseGPerKG     float64 // g protein per kg bodyweight, lose goal
	ProteinGainGPerKG     float64
	ProteinMaintainGPerKG float64
	FatGPerKG             float64
	LoseAdjustment        float64 // kcal added to TDEE, lose goal (negative)
	GainAdjustment        float64
}

// defaultMacroPolicy is the canonical constant set.
func defaultMacroPolicy() macroPolicy {
	return macroPolicy{
		ProteinLoseGPerKG:     2.2,
		ProteinGainGPerKG:     2.0,
		ProteinMaintainGPerKG: 1.8,
		FatGPerKG:             0.9,
		LoseAdjustment:        -500,
		GainAdjustment:        300,
	}
}

// computeTargets derives daily macro targets from a profile.
//
// Manual override short-circuits the formula: the user's gram split is used
// verbatim and only the summed calories are rounded. Otherwise BMR is
// computed via Mifflin-St Jeor, scaled by the activity multiplier into TDEE,
// shifted by the goal adjustment, and split into grams by the policy's
// per-kg multipliers. Carbs take whatever calories remain after protein and
// fat; when protein+fat alone exceed the budget, carbs clamp to 0 and the
// calorie total is left inconsistent on purpose (documented limitation, not
// silently re-balanced).
//
// All rounding is math.Round (half away from zero), applied independently
// per field, so calories vs 4/4/9 gram-kcal can drift by a couple kcal.
func computeTargets(p profile, policy macroPolicy) (macroTargets, error) {
	if p.ManualOverride {
		if p.ManualMacros == nil {
			return macroTargets{}, fmt.Errorf("%w: manual override without manual macros", errInvalidProfile)
		}
		m := p.ManualMacros
		cals := m.ProteinG*4 + m.CarbsG*4 + m.FatG*9
		return macroTargets{
			Calories: int(math.Round(cals)),
			ProteinG: int(math.Round(m.ProteinG)),
			CarbsG:   int(math.Round(m.CarbsG)),
			FatG:     int(math.Round(m.FatG)),
		}, nil
	}

	if err := validateBodyStats(p); err != nil {
		return macroTargets{}, err
	}

	// BMR via Mifflin-St Jeor: different constant for male vs female
	bmr := 10*p.CurrentWeight + 6.25*p.HeightCM - 5*float64(p.Age)
	if p.Gender == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}

	mult, found := activityMultipliers[p.ActivityLevel]
	if !found {
		mult = activityMultipliers["sedentary"]
	}
	tdee := bmr * mult

	var adjustment, proteinPerKG float64
	switch p.WeightGoal {
	case "lose":
		adjustment = policy.LoseAdjustment
		proteinPerKG = policy.ProteinLoseGPerKG
	case "gain":
		adjustment = policy.GainAdjustment
		proteinPerKG = policy.ProteinGainGPerKG
	default:
		proteinPerKG = policy.ProteinMaintainGPerKG
	}

	calories := math.Round(tdee + adjustment)
	protein := math.Round(p.CurrentWeight * proteinPerKG)
	fat := math.Round(p.CurrentWeight * policy.FatGPerKG)
	carbs := math.Round((calories - (protein*4 + fat*9)) / 4)
	if carbs < 0 {
		carbs = 0
	}

	return macroTargets{
		Calories: int(calories),
		ProteinG: int(protein),
		CarbsG:   int(carbs),
		FatG:     int(fat),
	}, nil
}

// validateBodyStats rejects profiles whose required numeric fields are
// missing, non-positive, or non-finite — the formula would otherwise produce
// NaN or garbage targets.
func validateBodyStats(p profile) error {
	checks := []struct {
		name  string
		value float64
	}{
		{"weight", p.CurrentWeight},
		{"height", p.HeightCM},
		{"age", float64(p.Age)},
	}
	for _, c := range checks {
		if c.value <= 0 || math.IsInf(c.value, 0) || math.IsNaN(c.value) {
			return fmt.Errorf("%w: %s must be a positive number", errInvalidProfile, c.name)
		}
	}
	return nil
}
