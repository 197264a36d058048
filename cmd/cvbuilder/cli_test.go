package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-builder/internal/builder"
	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/logger"
	"github.com/jonathan/cv-builder/internal/types"
)

const bundleJSON = `{
	"cv": {"id": "5f0c7a4e-1f7b-4a8e-9f10-2b9c6b1f0a11"},
	"personal_info": {"first_name": "Jane", "last_name": "Doe", "email": "jane@example.org"},
	"awards": [{"title": "Best Paper"}]
}`

func useDefaults(t *testing.T) {
	t.Helper()
	d := config.Defaults()
	cfg = &d
	appLog = logger.NewNop()
}

func writeBundle(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadBundle(t *testing.T) {
	b, err := readBundle(writeBundle(t, "cv.json", bundleJSON))
	require.NoError(t, err)
	assert.Equal(t, "5f0c7a4e-1f7b-4a8e-9f10-2b9c6b1f0a11", b.CV.ID)

	_, err = readBundle(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read records file")

	_, err = readBundle(writeBundle(t, "bad.yaml", "cv: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode records file")
}

func TestPageOptions(t *testing.T) {
	useDefaults(t)

	opts, err := pageOptions("", true, false)
	require.NoError(t, err)
	assert.Equal(t, "A4", opts.PageSize)
	assert.False(t, opts.Landscape, "unchanged flag keeps the configured orientation")

	opts, err = pageOptions("letter", true, true)
	require.NoError(t, err)
	assert.Equal(t, "LETTER", opts.PageSize)
	assert.True(t, opts.Landscape)

	_, err = pageOptions("B7", false, false)
	assert.Error(t, err)

	r := renderOptionsFor(opts)
	assert.Equal(t, "LETTER", r.PageSize)
	assert.True(t, r.Landscape)
	assert.Equal(t, opts.MarginMM, r.MarginMM)
}

func TestConnectDB_RequiresURL(t *testing.T) {
	useDefaults(t)
	cfg.DatabaseURL = ""

	_, err := connectDB(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}

func TestNewExporter_WithoutRedis(t *testing.T) {
	useDefaults(t)

	exp, cleanup := newExporter(t.Context())
	defer cleanup()
	assert.NotNil(t, exp)
}

func TestPrintStatus(t *testing.T) {
	cv := &types.CV{Awards: []types.Award{{Title: "Best Paper"}}}
	failures := []*builder.SectionError{{
		Section: types.SectionEducation,
		Op:      builder.OpLoad,
		Err:     errors.New("connection reset"),
	}}

	var buf bytes.Buffer
	printStatus(&buf, cv.Completion(), failures)
	out := buf.String()

	assert.Contains(t, out, "CV completion: 1/")
	assert.Contains(t, out, "Section")
	assert.Contains(t, out, "education could not be loaded: connection reset")
}

func TestRenderCommand(t *testing.T) {
	t.Setenv("CVBUILDER_LOG_MODE", "development")
	records := writeBundle(t, "cv.json", bundleJSON)
	out := filepath.Join(t.TempDir(), "cv.html")

	rootCmd.SetArgs([]string{"render", "--records", records, "--flag", "showEmail=false", "--out", out})
	require.NoError(t, rootCmd.Execute())

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Jane")
	assert.Contains(t, string(html), "Best Paper")
	assert.False(t, strings.Contains(string(html), "jane@example.org"), "hidden email must not be rendered")
}
