package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pynezz/scriptshield/internal/middleware"
	"github.com/pynezz/scriptshield/internal/threat"
	"github.com/pynezz/scriptshield/pkg/version"
)

// setupRoutes configures all the routes of the server.
func (s *Server) setupRoutes() {
	cfg := s.Config()
	prefix := cfg.Auth.KeyPrefix

	// Inspect everything, pages included, so probes for files like /.env
	// are seen as well.
	if s.detector != nil {
		s.Use(threat.Middleware(s.detector, s.stores))
	}

	s.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	s.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.Get())
	})

	// Pages
	s.Get("/", s.homePage)
	s.Get("/loader", s.loaderPage)
	s.Get("/docs", s.docsPage)
	s.Get("/dashboard", s.dashboardPage)
	s.Get("/about", s.aboutPage)
	s.Get("/admin", s.adminPage)

	// WebSockets
	s.Get("/ws", s.wsUpgrade, s.wsHandler())

	api := s.Group("/api", middleware.CORS(cfg.CORS), middleware.RateLimit(s.apiLimit, middleware.ByIP("api_")))

	keyed := middleware.Authenticate(prefix)
	either := middleware.BearerOrKey(s.issuer, prefix)

	// Status
	api.Get("/status", s.systemStatus)
	api.Get("/status/system", s.systemStatus)
	api.Get("/status/stats", s.stats)
	api.Get("/status/protection", s.protection)
	api.Get("/status/ping", s.ping)

	// Auth
	authLimited := middleware.RateLimit(s.authLimit, authKey)
	api.Post("/auth", authLimited, s.auth)
	api.Post("/auth/verify-key", keyed, authLimited, s.verifyKey)
	api.Post("/auth/token", keyed, s.token)
	api.Post("/auth/whitelist", keyed, s.whitelist)
	api.Post("/auth/refresh", s.refresh)

	// Scripts
	api.Get("/script", middleware.RateLimit(s.scriptLimit, scriptKey), s.script)
	api.Get("/script/versions", s.versions)
	api.Get("/script/checksum/:version", s.checksum)
	api.Post("/script/track", keyed, s.track)
	api.Post("/loader/track-usage", keyed, s.track)
	api.Get("/loader/script/:version", keyed, s.loaderScript)

	// Analytics
	analytics := api.Group("/analytics", keyed)
	analytics.Get("/usage", s.usage)
	analytics.Get("/threats", s.threats)
	analytics.Get("/uptime", s.uptime)
	analytics.Get("/top-users", s.topUsers)

	// User
	user := api.Group("/user", either)
	user.Get("/dashboard", s.dashboard)
	user.Get("/keys", s.keys)
	user.Post("/keys/generate", s.generateKey)
	user.Delete("/keys/:id", s.revokeKey)
	user.Get("/logs", s.logs)
	user.Get("/settings", s.settings)
	user.Put("/settings", s.updateSettings)
}

// authKey limits verification attempts per API key.
func authKey(c *fiber.Ctx) string {
	var req struct {
		APIKey string `json:"apiKey"`
	}
	_ = c.BodyParser(&req)
	if req.APIKey == "" {
		req.APIKey = c.Get(middleware.HeaderAPIKey)
	}
	if req.APIKey == "" {
		return ""
	}
	return "auth_verify_" + req.APIKey
}

// scriptKey limits script fetches per requested version.
func scriptKey(c *fiber.Ctx) string {
	return "script_get_" + c.Query("version", "stable")
}
