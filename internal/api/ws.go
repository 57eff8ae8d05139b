package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/pynezz/scriptshield/internal/middleware"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/pkg/model"
)

const (
	FrameStatus = "status"
	FramePong   = "pong"
)

// wsUpgrade admits websocket upgrades carrying a valid access token in
// ?token=.
func (s *Server) wsUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	claims, err := s.issuer.Verify(c.Query("token"))
	if err != nil {
		util.PrintDebug("websocket token rejected: " + err.Error())
		return middleware.ErrUnauthorized
	}
	c.Locals(middleware.LocalClaims, claims)
	return c.Next()
}

func (s *Server) statusInterval() time.Duration {
	if d := s.Config().Server.StatusInterval; d > 0 {
		return d
	}
	return 5 * time.Second
}

// wsHandler pushes a status frame on connect and then every interval. A
// text message "ping" is answered with a pong frame. All writes happen on
// the handler goroutine.
func (s *Server) wsHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		sub := "anonymous"
		if claims, ok := conn.Locals(middleware.LocalClaims).(*middleware.Claims); ok {
			sub = claims.Subject
		}
		util.PrintInfo("WebSocket connected: " + sub)
		defer util.PrintInfo("WebSocket closed: " + sub)

		pings := make(chan struct{}, 1)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				mt, msg, err := conn.ReadMessage()
				if err != nil {
					return
				}
				if mt == websocket.TextMessage && string(msg) == "ping" {
					select {
					case pings <- struct{}{}:
					default:
					}
				}
			}
		}()

		send := func(typ string) bool {
			frame := model.StatusFrame{Type: typ, Status: s.mock.SystemStatus()}
			if err := conn.WriteJSON(frame); err != nil {
				util.PrintDebug("websocket write: " + err.Error())
				return false
			}
			return true
		}

		if !send(FrameStatus) {
			return
		}

		ticker := time.NewTicker(s.statusInterval())
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-pings:
				if !send(FramePong) {
					return
				}
			case <-ticker.C:
				if !send(FrameStatus) {
					return
				}
			}
		}
	})
}
