package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler holds shared dependencies (state tracker, food searcher) for all
// route handlers.
type Handler struct {
	tracker  *tracker
	searcher *foodSearcher
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.GET("/summary/daily", h.getDailySummary)
	api.GET("/summary/range", h.getRangeSummary)
	api.POST("/entries", h.createEntry)
	api.DELETE("/entries/:id", h.deleteEntry)
	api.POST("/entries/reset", h.resetToday)
	api.GET("/profile", h.getProfile)
	api.PATCH("/profile", h.patchProfile)
	api.POST("/profile/sync-targets", h.syncTargets)
	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.logWeight)
	api.GET("/food/search", h.searchFood)
}

/* ─── Summaries ──────────────────────────────────────────────────────── */

// getDailySummary returns totals, targets, and entries for a given date.
// GET /api/summary/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailySummary(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().UTC().Format("2006-01-02"))

	// Validate date format up front — an invalid value would just look like a
	// day with no data.
	if _, err := time.Parse("2006-01-02", date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	c.JSON(http.StatusOK, h.tracker.DaySummary(date))
}

// getRangeSummary returns zero-filled per-day totals for a date range,
// used to build fixed-length 7/30/365-day chart windows.
// GET /api/summary/range?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
func (h *Handler) getRangeSummary(c *gin.Context) {
	startStr := c.Query("start")
	endStr := c.Query("end")

	if startStr == "" || endStr == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	c.JSON(http.StatusOK, h.tracker.RangeSummary(start, end))
}

/* ─── Entries ────────────────────────────────────────────────────────── */

// createEntry logs a food entry against today's ledger. With per_100g set,
// macro values are treated as per-100g and scaled by amount_g.
// POST /api/entries.
func (h *Handler) createEntry(c *gin.Context) {
	var body createEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.tracker.AddEntry(body)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// deleteEntry removes a food entry from today's ledger. Returns 204 on
// success, 404 when the id is unknown.
// DELETE /api/entries/:id.
func (h *Handler) deleteEntry(c *gin.Context) {
	err := h.tracker.RemoveEntry(c.Param("id"))
	if errors.Is(err, errEntryNotFound) {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete entry")
		return
	}

	c.Status(http.StatusNoContent)
}

// resetToday clears today's ledger back to zero totals and no entries.
// POST /api/entries/reset.
func (h *Handler) resetToday(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.ResetToday())
}

/* ─── Profile and targets ────────────────────────────────────────────── */

// getProfile returns the profile with its stored macro targets.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Profile())
}

// patchProfile updates only the provided profile fields. Uses pointer fields
// in the request body to distinguish "not provided" from zero.
// PATCH /api/profile.
func (h *Handler) patchProfile(c *gin.Context) {
	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.tracker.PatchProfile(body)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, updated)
}

// syncTargets recomputes macro targets from the current profile and stores
// them — the "update my goals" action.
// POST /api/profile/sync-targets.
func (h *Handler) syncTargets(c *gin.Context) {
	targets, err := h.tracker.SyncTargets()
	if err != nil {
		if errors.Is(err, errInvalidProfile) {
			apiError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		apiError(c, http.StatusInternalServerError, "failed to sync targets")
		return
	}

	c.JSON(http.StatusOK, targets)
}

/* ─── Weight log ─────────────────────────────────────────────────────── */

// getWeightLog returns the full weight series in chronological order.
// GET /api/weight-log.
func (h *Handler) getWeightLog(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.WeightLog())
}

// logWeight appends a weight observation and updates the profile's current
// weight. With ?recalculate=true the macro targets are recomputed as well.
// POST /api/weight-log. Body: { "date"?: "YYYY-MM-DD", "weight_kg": 80.5 }.
func (h *Handler) logWeight(c *gin.Context) {
	var body logWeightRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	date := time.Now().UTC()
	if body.Date != "" {
		t, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = t
	}

	recalculate := c.Query("recalculate") == "true"
	obs, err := h.tracker.LogWeight(date, body.WeightKG, recalculate)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, obs)
}

/* ─── Food search ────────────────────────────────────────────────────── */

// searchFood proxies a free-text query to the nutrition database. Responses
// superseded by a newer query are flagged so the client discards them;
// collaborator failures surface as an empty result list, never an error.
// GET /api/food/search?q=...
func (h *Handler) searchFood(c *gin.Context) {
	results, latest := h.searcher.Search(c.Request.Context(), c.Query("q"))
	if !latest {
		c.JSON(http.StatusOK, gin.H{"results": []foodSearchResult{}, "superseded": true})
		return
	}
	if results == nil {
		results = []foodSearchResult{}
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "superseded": false})
}
