package api

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/writebench/pkg/results"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SummaryEntry aggregates results for one (mode, policy) pair.
type SummaryEntry struct {
	Mode            string  `json:"mode"`
	Policy          string  `json:"policy"`
	Count           int     `json:"count"`
	MeanF1          float64 `json:"mean_f1"`
	MeanRegret      float64 `json:"mean_regret_write_only"`
	MeanUtilization float64 `json:"mean_utilization"`
}

// handleHealthz returns a simple health check response.
func (s *Server) handleHealthz(c *fiber.Ctx) error {
	return c.JSON(map[string]string{"status": "ok"})
}

// handleListResults returns persisted results, optionally filtered by the
// policy, mode, track, and budget query parameters.
func (s *Server) handleListResults(c *fiber.Ctx) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	records, err := s.reader.List(c.Context(), filter)
	if err != nil {
		s.logger.Error("listing results", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list results"})
	}

	return c.JSON(map[string]any{
		"count":   len(records),
		"results": records,
	})
}

// handleResultsSummary returns per-(mode, policy) aggregate metrics over all
// results matching the filter.
func (s *Server) handleResultsSummary(c *fiber.Ctx) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	records, err := s.reader.List(c.Context(), filter)
	if err != nil {
		s.logger.Error("listing results", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list results"})
	}

	type key struct{ mode, policy string }
	totals := make(map[key]*SummaryEntry)
	order := make([]key, 0)
	for _, r := range records {
		k := key{r.Mode, r.Policy}
		entry, ok := totals[k]
		if !ok {
			entry = &SummaryEntry{Mode: r.Mode, Policy: r.Policy}
			totals[k] = entry
			order = append(order, k)
		}
		entry.Count++
		entry.MeanF1 += r.F1
		entry.MeanRegret += r.RegretWriteOnly
		entry.MeanUtilization += r.Utilization
	}

	summary := make([]SummaryEntry, 0, len(order))
	for _, k := range order {
		entry := totals[k]
		n := float64(entry.Count)
		entry.MeanF1 /= n
		entry.MeanRegret /= n
		entry.MeanUtilization /= n
		summary = append(summary, *entry)
	}

	return c.JSON(map[string]any{
		"count":   len(summary),
		"summary": summary,
	})
}

// filterFromQuery builds a results.Filter from query parameters.
func filterFromQuery(c *fiber.Ctx) (results.Filter, error) {
	f := results.Filter{
		Policy: c.Query("policy"),
		Mode:   c.Query("mode"),
		Track:  c.Query("track"),
	}
	if raw := c.Query("budget"); raw != "" {
		budget, err := strconv.Atoi(raw)
		if err != nil {
			return results.Filter{}, fiber.NewError(fiber.StatusBadRequest, "budget must be an integer")
		}
		f.BudgetBytes = budget
	}
	return f, nil
}
