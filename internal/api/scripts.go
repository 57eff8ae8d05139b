package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pynezz/scriptshield/internal/database/models"
	"github.com/pynezz/scriptshield/internal/loader"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/pkg/model"
)

const (
	HeaderScriptVersion  = "X-Script-Version"
	HeaderGeneratedAt    = "X-Generated-At"
	HeaderScriptChecksum = "X-Script-Checksum"
)

// sendScript writes sc as plain text with its metadata headers.
func sendScript(c *fiber.Ctx, sc loader.Script) error {
	c.Set(HeaderScriptVersion, sc.Version)
	c.Set(HeaderGeneratedAt, util.ISOTimestamp(sc.GeneratedAt))
	c.Set(HeaderScriptChecksum, sc.Checksum)
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(sc.Body)
}

// script serves the canned loader for ?version=, or the full rendered
// loader when ?obfuscation= is given. ?format=json wraps it in JSON.
func (s *Server) script(c *fiber.Ctx) error {
	version := c.Query("version", loader.Stable)
	level := c.Query("obfuscation")

	var (
		sc  loader.Script
		err error
	)
	if level == "" {
		sc, err = loader.Lookup(version)
	} else {
		sc, err = loader.Render(loader.Options{Version: version, Obfuscation: level, Name: c.Query("name")})
	}
	if errors.Is(err, loader.ErrUnknownLevel) {
		return fiber.NewError(fiber.StatusBadRequest, "Unknown obfuscation level")
	}
	if err != nil {
		return err
	}

	if c.Query("format") == "json" {
		c.Set(HeaderScriptVersion, sc.Version)
		return c.JSON(sc)
	}
	return sendScript(c, sc)
}

func (s *Server) versions(c *fiber.Ctx) error {
	return c.JSON(model.VersionsResponse{
		Versions: loader.Versions(),
		Levels:   loader.Levels(),
		Default:  loader.Stable,
	})
}

func (s *Server) checksum(c *fiber.Ctx) error {
	sc, err := loader.Lookup(c.Params("version"))
	if err != nil {
		return err
	}
	return c.JSON(model.ChecksumResponse{
		Version:   sc.Version,
		Checksum:  sc.Checksum,
		Algorithm: "sha256",
	})
}

// loaderScript serves the canned loader; unknown versions get stable.
func (s *Server) loaderScript(c *fiber.Ctx) error {
	sc, err := loader.Lookup(c.Params("version"))
	if err != nil {
		return err
	}
	return sendScript(c, sc)
}

// track records a script load.
func (s *Server) track(c *fiber.Ctx) error {
	var req model.TrackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	at := s.now()
	if req.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
			at = t
		}
	}

	ev := models.UsageEvent{
		ScriptID:  req.ScriptID,
		UserID:    req.UserID,
		Version:   loader.Resolve(req.Version),
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Timestamp: at,
	}
	if err := s.stores.RecordUsage(c.UserContext(), ev); err != nil {
		return err
	}

	util.PrintInfof("Script loaded: %s by %s at %s", req.ScriptID, req.UserID, util.ISOTimestamp(at))
	return c.JSON(model.TrackResponse{Success: true, Tracked: true})
}
