package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/pynezz/scriptshield/pkg/model"
)

// ExposedHeaders are readable by browser scripts on cross-origin responses.
const ExposedHeaders = "X-Script-Version, X-Generated-At, X-Script-Checksum, X-Request-ID, Retry-After, X-RateLimit-Limit, X-RateLimit-Remaining"

// CORS answers preflight requests and decorates responses from cfg.
func CORS(cfg model.CORSConfig) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		AllowCredentials: cfg.AllowCredentials,
		ExposeHeaders:    ExposedHeaders,
	})
}
