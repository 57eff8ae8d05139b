package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/internal/util/cryptoutils"
)

// Locals keys set by the auth middleware.
const (
	LocalAPIKey = "apiKey"
	LocalClaims = "claims"
)

const HeaderAPIKey = "X-API-Key"

var (
	ErrAPIKeyRequired = fiber.NewError(fiber.StatusUnauthorized, "API key required")
	ErrInvalidAPIKey  = fiber.NewError(fiber.StatusUnauthorized, "Invalid API key")
	ErrUnauthorized   = fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
)

// Authenticate only admits requests whose X-API-Key starts with prefix.
// Nothing is looked up; any well-prefixed key passes.
func Authenticate(prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderAPIKey)
		if key == "" {
			return ErrAPIKeyRequired
		}
		if !strings.HasPrefix(key, prefix) {
			util.PrintDebug("rejected api key with wrong prefix from " + c.IP())
			return ErrInvalidAPIKey
		}
		c.Locals(LocalAPIKey, key)
		return c.Next()
	}
}

// Bouncer admits requests carrying a valid bearer access token.
func Bouncer(issuer *TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearer(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return ErrUnauthorized
		}

		claims, err := issuer.Verify(tokenString)
		if err != nil {
			util.PrintDebug("bearer token rejected: " + err.Error())
			return ErrUnauthorized
		}

		c.Locals(LocalClaims, claims)
		return c.Next()
	}
}

// BearerOrKey uses the bearer token when an Authorization header is sent
// and falls back to the API key check otherwise.
func BearerOrKey(issuer *TokenIssuer, prefix string) fiber.Handler {
	bouncer := Bouncer(issuer)
	keyed := Authenticate(prefix)
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != "" {
			return bouncer(c)
		}
		return keyed(c)
	}
}

func bearer(header string) (string, bool) {
	splits := strings.SplitN(header, " ", 2)
	if len(splits) != 2 || splits[0] != "Bearer" || splits[1] == "" {
		return "", false
	}
	return splits[1], true
}

// ClaimsFrom returns the claims stored by Bouncer, or nil.
func ClaimsFrom(c *fiber.Ctx) *Claims {
	claims, _ := c.Locals(LocalClaims).(*Claims)
	return claims
}

// APIKeyFrom returns the key stored by Authenticate, or "".
func APIKeyFrom(c *fiber.Ctx) string {
	key, _ := c.Locals(LocalAPIKey).(string)
	return key
}

// Subject identifies the caller for per-user storage: the token subject if
// present, else an id derived from the API key. Empty when neither is set.
func Subject(c *fiber.Ctx) string {
	if claims := ClaimsFrom(c); claims != nil {
		return claims.Subject
	}
	if key := APIKeyFrom(c); key != "" {
		return cryptoutils.KeyOwnerID(key)
	}
	return ""
}
