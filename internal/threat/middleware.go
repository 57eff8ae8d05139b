package threat

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pynezz/scriptshield/internal/util"
)

// Recorder persists rule hits.
type Recorder interface {
	RecordThreat(ctx context.Context, m Match, ev Event) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, m Match, ev Event) error

func (f RecorderFunc) RecordThreat(ctx context.Context, m Match, ev Event) error {
	return f(ctx, m, ev)
}

// Middleware inspects every request once the handler has run, so rules can
// see the final status. It never alters the response.
func Middleware(d *Detector, rec Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		ev := Event{
			Method:    c.Method(),
			Path:      c.Path(),
			Query:     string(c.Request().URI().QueryString()),
			UserAgent: c.Get(fiber.HeaderUserAgent),
			IP:        c.IP(),
			Status:    statusOf(c, err),
			APIKey:    util.MaskKey(c.Get("X-API-Key"), 8),
		}

		matches, inspectErr := d.Inspect(c.UserContext(), ev)
		if inspectErr != nil {
			util.PrintWarning("threat inspection: " + inspectErr.Error())
		}
		for _, m := range matches {
			util.PrintWarningf("%s from %s on %s %s", m.Title, ev.IP, ev.Method, ev.Path)
			if rec == nil {
				continue
			}
			if recErr := rec.RecordThreat(c.UserContext(), m, ev); recErr != nil {
				util.PrintError("record threat: " + recErr.Error())
			}
		}

		return err
	}
}

// statusOf predicts the status the error handler will write.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
