package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_RendersHomeInLayout(t *testing.T) {
	engine := Engine()
	require.NoError(t, engine.Load())

	var out bytes.Buffer
	page := struct {
		Stats    []Stat
		Features []Feature
	}{HomeStats(), Features()}

	err := engine.Render(&out, "home", Bind("/", "Home", page), Layout)
	require.NoError(t, err)

	html := out.String()
	assert.Contains(t, html, "<title>Home | ScriptShield</title>")
	assert.Contains(t, html, "Military-Grade Script Protection")
	assert.Contains(t, html, "2.5M&#43;")
	assert.Contains(t, html, "Integrity Verification")
	assert.Contains(t, html, `href="/" class="active"`)
	assert.Contains(t, html, "Compliance")
}

func TestEngine_ErrorPage(t *testing.T) {
	engine := Engine()
	require.NoError(t, engine.Load())

	var out bytes.Buffer
	page := struct {
		Status  int
		Message string
	}{404, "Cannot GET /nope"}

	require.NoError(t, engine.Render(&out, "error", Bind("", "Not Found", page), Layout))
	assert.Contains(t, out.String(), "Cannot GET /nope")
}

func TestTone(t *testing.T) {
	assert.Equal(t, "danger", Tone("high"))
	assert.Equal(t, "warning", Tone("medium"))
	assert.Equal(t, "success", Tone("active"))
	assert.Equal(t, "info", Tone("info"))
}

func TestContent(t *testing.T) {
	assert.Len(t, Nav(), 5)
	assert.Len(t, Features(), 6)
	assert.Len(t, DocSections(), 5)
	assert.Len(t, About(), 4)
	assert.Len(t, Footer(), 3)
	assert.Equal(t, "5,248", AdminOverview()[0].Value)
}
