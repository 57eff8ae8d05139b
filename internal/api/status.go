package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pynezz/scriptshield/internal/loader"
	"github.com/pynezz/scriptshield/internal/mock"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/pkg/model"
)

func (s *Server) systemStatus(c *fiber.Ctx) error {
	return c.JSON(s.mock.SystemStatus())
}

func (s *Server) stats(c *fiber.Ctx) error {
	period := c.Query("period", "24h")
	if _, err := mock.ParsePeriod(period); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid period")
	}
	return c.JSON(s.mock.Stats(period))
}

func (s *Server) protection(c *fiber.Ctx) error {
	return c.JSON(model.ProtectionResponse{
		AllActive: loader.AllActive(),
		Layers:    loader.LayerStatuses(),
		Timestamp: util.ISOTimestamp(s.now()),
	})
}

func (s *Server) ping(c *fiber.Ctx) error {
	return c.JSON(model.PingResponse{Pong: true, Timestamp: util.ISOTimestamp(s.now())})
}

// period reads ?period= falling back to def. Invalid labels are a 400.
func period(c *fiber.Ctx, def string) (string, time.Duration, error) {
	label := c.Query("period", def)
	d, err := mock.ParsePeriod(label)
	if err != nil {
		return "", 0, fiber.NewError(fiber.StatusBadRequest, "Invalid period")
	}
	return label, d, nil
}

// usage keeps the legacy shape: thirty daily rows from 2024-01-01,
// whatever period is asked for.
func (s *Server) usage(c *fiber.Ctx) error {
	if _, _, err := period(c, "30d"); err != nil {
		return err
	}
	switch c.Query("granularity", "day") {
	case "day", "hour":
	default:
		return fiber.NewError(fiber.StatusBadRequest, "Invalid granularity")
	}
	return c.JSON(s.mock.UsageSeries(mock.LegacyUsageStart, 30))
}

func (s *Server) threats(c *fiber.Ctx) error {
	label, _, err := period(c, "7d")
	if err != nil {
		return err
	}
	breakdown := mock.ThreatBreakdown()
	total := 0
	for _, t := range breakdown {
		total += t.Value
	}
	return c.JSON(model.ThreatsResponse{Period: label, Breakdown: breakdown, Total: total})
}

const maxUptimeDays = 365

func (s *Server) uptime(c *fiber.Ctx) error {
	label, d, err := period(c, "30d")
	if err != nil {
		return err
	}
	days := mock.PeriodDays(d)
	if days > maxUptimeDays {
		days = maxUptimeDays
	}
	return c.JSON(model.UptimeResponse{Period: label, Days: s.mock.UptimeSeries(days)})
}

const maxTopUsers = 100

func (s *Server) topUsers(c *fiber.Ctx) error {
	label, _, err := period(c, "7d")
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > maxTopUsers {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid limit")
	}
	return c.JSON(model.TopUsersResponse{Period: label, Users: s.mock.TopUsers(limit)})
}
