package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pynezz/scriptshield/internal/database"
	"github.com/pynezz/scriptshield/internal/middleware"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/pkg/model"
)

var scriptPermissions = []string{"script:read", "script:execute"}

// tierFor gives live keys the premium tier.
func tierFor(apiKey string) string {
	if strings.Contains(apiKey, "live") {
		return "premium"
	}
	return "basic"
}

// principalFor builds the token subject for apiKey. Keys persisted by
// keygen or the key endpoints keep their owner; anything else gets a
// throwaway user id.
func (s *Server) principalFor(c *fiber.Ctx, apiKey, hwid string) middleware.Principal {
	p := middleware.Principal{
		ID:          "user_" + strconv.FormatInt(s.now().UnixMilli(), 10),
		Tier:        tierFor(apiKey),
		Permissions: scriptPermissions,
		HWID:        hwid,
	}

	key, err := s.stores.LookupKey(c.UserContext(), apiKey)
	switch {
	case err == nil:
		if key.Owner != "" {
			p.ID = key.Owner
		} else {
			p.ID = "user_" + strconv.FormatUint(uint64(key.ID), 10)
		}
		if perms := key.PermissionList(); len(perms) > 0 {
			p.Permissions = perms
		}
	case !errors.Is(err, database.ErrNotFound):
		util.PrintWarning("api key lookup: " + err.Error())
	}
	return p
}

// issuePair signs an access and a refresh token for p.
func (s *Server) issuePair(p middleware.Principal) (model.AuthResponse, error) {
	token, expires, err := s.issuer.Issue(p)
	if err != nil {
		return model.AuthResponse{}, err
	}
	refresh, _, err := s.issuer.IssueRefresh(p)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{
		Authenticated: true,
		Token:         token,
		RefreshToken:  refresh,
		User: &model.AuthUser{
			ID:          p.ID,
			Tier:        p.Tier,
			Permissions: p.Permissions,
		},
		Expires: expires.UnixMilli(),
	}, nil
}

// auth is the mock login: any key with the configured prefix is accepted.
func (s *Server) auth(c *fiber.Ctx) error {
	var req model.AuthRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.APIKey == "" || !strings.HasPrefix(req.APIKey, s.Config().Auth.KeyPrefix) {
		return c.Status(fiber.StatusUnauthorized).JSON(model.AuthResponse{
			Authenticated: false,
			Error:         "Invalid API key",
		})
	}

	out, err := s.issuePair(s.principalFor(c, req.APIKey, req.HWID))
	if err != nil {
		return err
	}
	util.PrintDebugf("issued token for %s", out.User.ID)
	return c.JSON(out)
}

func (s *Server) verifyKey(c *fiber.Ctx) error {
	return c.JSON(model.AuthResponse{
		Authenticated: true,
		User: &model.AuthUser{
			ID:          "user_123",
			Name:        "Demo User",
			Tier:        "premium",
			Whitelisted: true,
		},
	})
}

// token issues a token pair for the key in the body, or the header key.
func (s *Server) token(c *fiber.Ctx) error {
	var req model.AuthRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if req.APIKey == "" {
		req.APIKey = middleware.APIKeyFrom(c)
	}
	if !strings.HasPrefix(req.APIKey, s.Config().Auth.KeyPrefix) {
		return middleware.ErrInvalidAPIKey
	}

	out, err := s.issuePair(s.principalFor(c, req.APIKey, req.HWID))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// whitelist reports every address as whitelisted.
func (s *Server) whitelist(c *fiber.Ctx) error {
	var req model.WhitelistRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	ip := req.IP
	if ip == "" {
		ip = c.IP()
	}
	return c.JSON(model.WhitelistResponse{Whitelisted: true, IP: ip})
}

func (s *Server) refresh(c *fiber.Ctx) error {
	var req model.RefreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Refresh token required")
	}

	claims, err := s.issuer.VerifyRefresh(req.RefreshToken)
	if err != nil {
		util.PrintDebug("refresh rejected: " + err.Error())
		return c.Status(fiber.StatusUnauthorized).JSON(model.AuthResponse{
			Authenticated: false,
			Error:         "Invalid refresh token",
		})
	}

	out, err := s.issuePair(claims.Principal())
	if err != nil {
		return err
	}
	return c.JSON(out)
}
