// Package web renders the site pages from embedded templates.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

//go:embed views
var views embed.FS

// Layout wraps every page.
const Layout = "layouts/main"

// Engine returns the template engine over the embedded views.
func Engine() *html.Engine {
	sub, err := fs.Sub(views, "views")
	if err != nil {
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("upper", strings.ToUpper)
	engine.AddFunc("tone", Tone)
	engine.AddFunc("date", func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.Format("2006-01-02")
	})
	engine.AddFunc("datetime", func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	})
	return engine
}

// Tone maps a severity or status word to the CSS modifier used for badges.
func Tone(s string) string {
	switch s {
	case "critical", "high", "threat", "suspended", "danger":
		return "danger"
	case "medium", "warning":
		return "warning"
	case "active", "success", "low":
		return "success"
	default:
		return "info"
	}
}

// Bind builds the template data for a page. active is the nav path to
// highlight.
func Bind(active, title string, page interface{}) fiber.Map {
	return fiber.Map{
		"Site":    SiteName,
		"Tagline": Tagline,
		"Blurb":   Blurb,
		"Support": Support,
		"Title":   title,
		"Active":  active,
		"Nav":     Nav(),
		"Footer":  Footer(),
		"Year":    time.Now().Year(),
		"Page":    page,
	}
}
