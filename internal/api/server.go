package api

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/pynezz/scriptshield/internal/database/stores"
	"github.com/pynezz/scriptshield/internal/middleware"
	"github.com/pynezz/scriptshield/internal/mock"
	"github.com/pynezz/scriptshield/internal/ratelimit"
	"github.com/pynezz/scriptshield/internal/threat"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/internal/web"
	"github.com/pynezz/scriptshield/pkg/model"
)

// Deps are the collaborators of the server. Stores is required, the rest
// default to something sensible.
type Deps struct {
	Stores   *stores.Stores
	Detector *threat.Detector // nil disables request inspection
	Mock     *mock.Generator
	Issuer   *middleware.TokenIssuer
	Now      func() time.Time
}

type Server struct {
	*fiber.App

	mu  sync.RWMutex
	cfg *model.Config

	stores   *stores.Stores
	detector *threat.Detector
	mock     *mock.Generator
	issuer   *middleware.TokenIssuer
	now      func() time.Time

	apiLimit    *ratelimit.Limiter
	authLimit   *ratelimit.Limiter
	scriptLimit *ratelimit.Limiter
}

// NewServer initializes the site and API server with the provided configuration.
func NewServer(cfg *model.Config, deps Deps) (*Server, error) {
	if deps.Stores == nil {
		return nil, errors.New("api: stores are required")
	}
	if deps.Mock == nil {
		deps.Mock = mock.New(time.Now().UnixNano())
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Issuer == nil {
		deps.Issuer = middleware.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, cfg.Auth.RefreshTTL).
			WithClock(deps.Now)
	}

	rl := cfg.RateLimit
	s := &Server{
		cfg:         cfg,
		stores:      deps.Stores,
		detector:    deps.Detector,
		mock:        deps.Mock,
		issuer:      deps.Issuer,
		now:         deps.Now,
		apiLimit:    ratelimit.New(rl.APIMax, rl.APIWindow).WithClock(deps.Now),
		authLimit:   ratelimit.New(rl.AuthMax, rl.AuthWindow).WithClock(deps.Now),
		scriptLimit: ratelimit.New(rl.ScriptMax, rl.ScriptWindow).WithClock(deps.Now),
	}

	// Configure the fiber server with values from the config file
	s.App = fiber.New(fiber.Config{
		AppName:      cfg.Server.AppName,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorHandler: s.errorHandler,
		Views:        web.Engine(),
	})

	util.PrintInfof("read timeout: %ds, write timeout: %ds", cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)

	s.Use(recover.New())
	s.Use(requestid.New())
	s.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))

	s.setupRoutes()
	return s, nil
}

// Config returns the configuration currently in effect.
func (s *Server) Config() *model.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Reload applies a new configuration to the running server. Only the rate
// limits and the status feed interval change live; everything else needs a
// restart.
func (s *Server) Reload(cfg *model.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	rl := cfg.RateLimit
	s.apiLimit.SetLimit(rl.APIMax, rl.APIWindow)
	s.authLimit.SetLimit(rl.AuthMax, rl.AuthWindow)
	s.scriptLimit.SetLimit(rl.ScriptMax, rl.ScriptWindow)
	util.PrintSuccess("configuration reloaded")
}

// Start listens on the configured host and port.
func (s *Server) Start() error {
	cfg := s.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	util.PrintInfo("listening on " + addr)
	return s.Listen(addr)
}

// errorHandler answers JSON under /api and an HTML page elsewhere.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		util.PrintErrorf("%s %s: %v", c.Method(), c.Path(), err)
	}

	switch code {
	case fiber.StatusNotFound:
		msg = "Not found"
	case fiber.StatusMethodNotAllowed:
		msg = "Method not allowed"
	}

	if isAPI(c.Path()) {
		body := model.ErrorResponse{Error: msg}
		if code == fiber.StatusTooManyRequests {
			body.Code = middleware.CodeRateLimited
		}
		return c.Status(code).JSON(body)
	}

	page := struct {
		Status  int
		Message string
	}{code, msg}
	if rerr := c.Status(code).Render("error", web.Bind("", msg, page), web.Layout); rerr != nil {
		util.PrintError("render error page: " + rerr.Error())
		return c.Status(code).SendString(msg)
	}
	return nil
}

func isAPI(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
