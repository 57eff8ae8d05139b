package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pynezz/scriptshield/internal/database/models"
	"github.com/pynezz/scriptshield/internal/database/stores"
	"github.com/pynezz/scriptshield/internal/loader"
	"github.com/pynezz/scriptshield/internal/mock"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/internal/util/cryptoutils"
	"github.com/pynezz/scriptshield/internal/web"
)

func render(c *fiber.Ctx, name, active, title string, page interface{}) error {
	return c.Render(name, web.Bind(active, title, page), web.Layout)
}

func (s *Server) homePage(c *fiber.Ctx) error {
	return render(c, "home", "/", "Home", struct {
		Stats    []web.Stat
		Features []web.Feature
	}{web.HomeStats(), web.Features()})
}

func (s *Server) loaderPage(c *fiber.Ctx) error {
	hwid, err := cryptoutils.MockHWID()
	if err != nil {
		return err
	}
	return render(c, "loader", "/loader", "Loader", struct {
		HWID         string
		Levels       []loader.Level
		DefaultLevel string
		Versions     []loader.Release
		Layers       []loader.Layer
		Events       []mock.Event
	}{hwid, loader.Levels(), loader.DefaultLevel, loader.Versions(), loader.Layers(), mock.RecentEvents()})
}

func (s *Server) docsPage(c *fiber.Ctx) error {
	base := strings.TrimSuffix(s.Config().Client.BaseURL, "/api")
	if base == "" {
		base = c.BaseURL()
	}
	return render(c, "docs", "/docs", "Documentation", struct {
		Sections []web.DocSection
		Layers   []loader.LayerStatus
		BaseURL  string
	}{web.DocSections(), loader.LayerStatuses(), base})
}

func (s *Server) dashboardPage(c *fiber.Ctx) error {
	today := s.now().UTC().Truncate(24 * time.Hour)
	return render(c, "dashboard", "/dashboard", "Dashboard", struct {
		Status     mock.SystemStatus
		QuickStats []mock.QuickStat
		Usage      []mock.UsageRow
		Threats    []mock.ThreatSlice
		Activities []mock.Activity
	}{
		s.mock.SystemStatus(),
		mock.QuickStats(),
		s.mock.UsageSeries(today.AddDate(0, 0, -6), 7),
		mock.ThreatBreakdown(),
		mock.RecentActivities(),
	})
}

func (s *Server) aboutPage(c *fiber.Ctx) error {
	return render(c, "about", "/about", "About", struct {
		Blocks []web.Block
		Stats  []web.Stat
	}{web.About(), web.HomeStats()})
}

// adminPage lists what the store holds: seeded demo rows plus anything
// recorded since.
func (s *Server) adminPage(c *fiber.Ctx) error {
	ctx := c.UserContext()

	users, err := s.stores.Users(ctx)
	if err != nil {
		return err
	}
	keys, err := s.stores.Keys(ctx, stores.SeedOwner)
	if err != nil {
		return err
	}
	events, _, err := s.stores.Logs(ctx, stores.LogQuery{Page: 1, Limit: 10})
	if err != nil {
		return err
	}
	util.PrintDebugf("admin page: %d users, %d keys, %d events", len(users), len(keys), len(events))

	return render(c, "admin", "", "Admin", struct {
		Overview []web.Trend
		Users    []models.User
		Keys     []models.APIKey
		Events   []models.SecurityEvent
	}{web.AdminOverview(), users, keys, events})
}
