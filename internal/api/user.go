package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pynezz/scriptshield/internal/database"
	"github.com/pynezz/scriptshield/internal/database/models"
	"github.com/pynezz/scriptshield/internal/database/stores"
	"github.com/pynezz/scriptshield/internal/middleware"
	"github.com/pynezz/scriptshield/internal/mock"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/pkg/model"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 100
	dateLayout      = "2006-01-02"
)

func (s *Server) dashboard(c *fiber.Ctx) error {
	now := s.now()
	tracked, err := s.stores.UsageCount(c.UserContext(), now.Add(-24*time.Hour))
	if err != nil {
		return err
	}

	today := now.UTC().Truncate(24 * time.Hour)
	return c.JSON(model.DashboardResponse{
		QuickStats: mock.QuickStats(),
		Activities: mock.RecentActivities(),
		Usage:      s.mock.UsageSeries(today.AddDate(0, 0, -6), 7),
		Threats:    mock.ThreatBreakdown(),
		Tracked24h: tracked,
	})
}

func keyView(k models.APIKey) model.APIKeyView {
	v := model.APIKeyView{
		ID:          k.ID,
		Name:        k.Name,
		Key:         k.Masked,
		Permissions: k.PermissionList(),
		RateLimit:   k.RateLimit,
		Created:     k.CreatedAt.Format(dateLayout),
	}
	if k.LastUsed != nil {
		v.LastUsed = util.ISOTimestamp(*k.LastUsed)
	}
	return v
}

func (s *Server) keys(c *fiber.Ctx) error {
	keys, err := s.stores.Keys(c.UserContext(), middleware.Subject(c))
	if err != nil {
		return err
	}
	out := model.KeysResponse{Keys: make([]model.APIKeyView, 0, len(keys))}
	for _, k := range keys {
		out.Keys = append(out.Keys, keyView(k))
	}
	return c.JSON(out)
}

func (s *Server) generateKey(c *fiber.Ctx) error {
	var req model.GenerateKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Environment == "" {
		req.Environment = "live"
	}
	switch req.Environment {
	case "live", "test", "dev":
	default:
		return fiber.NewError(fiber.StatusBadRequest, "Invalid environment")
	}
	if req.Permissions == nil {
		req.Permissions = scriptPermissions
	}

	plain, key, err := s.stores.CreateKey(c.UserContext(), middleware.Subject(c), req.Name, req.Environment, req.Permissions)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(model.GenerateKeyResponse{APIKey: plain, Key: keyView(*key)})
}

func (s *Server) revokeKey(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid key id")
	}

	err = s.stores.RevokeKey(c.UserContext(), middleware.Subject(c), uint(id))
	if errors.Is(err, database.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Key not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(model.RevokeResponse{Revoked: true, ID: uint(id)})
}

// logs pages the security events. Dates are whole days, both inclusive.
func (s *Server) logs(c *fiber.Ctx) error {
	q := stores.LogQuery{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", defaultLogLimit),
		Type:  c.Query("type"),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > maxLogLimit {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid limit")
	}

	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid startDate")
		}
		q.From = t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid endDate")
		}
		q.To = t.Add(24*time.Hour - time.Nanosecond)
	}

	events, total, err := s.stores.Logs(c.UserContext(), q)
	if err != nil {
		return err
	}

	out := model.LogsResponse{Logs: make([]model.LogEntry, 0, len(events)), Page: q.Page, Limit: q.Limit, Total: total}
	for _, e := range events {
		out.Logs = append(out.Logs, model.LogEntry{
			ID:          e.ID,
			Type:        e.Type,
			Severity:    e.Severity,
			Description: e.Description,
			IP:          e.IP,
			Time:        util.ISOTimestamp(e.OccurredAt),
		})
	}
	return c.JSON(out)
}

func (s *Server) settings(c *fiber.Ctx) error {
	values, err := s.stores.Settings(c.UserContext(), middleware.Subject(c))
	if err != nil {
		return err
	}
	return c.JSON(model.SettingsResponse{Settings: values})
}

func (s *Server) updateSettings(c *fiber.Ctx) error {
	var values map[string]string
	if err := c.BodyParser(&values); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if len(values) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No settings given")
	}

	owner := middleware.Subject(c)
	if err := s.stores.SaveSettings(c.UserContext(), owner, values); err != nil {
		return err
	}
	saved, err := s.stores.Settings(c.UserContext(), owner)
	if err != nil {
		return err
	}
	return c.JSON(model.SettingsResponse{Updated: true, Settings: saved})
}
