package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageJSON = `{
  "title": "Poutines",
  "canvases": [
    {"id": "classic", "class": "poutine-maker-animation", "x": 0, "y": 0, "width": 500, "height": 500},
    {"id": "other", "class": "decoration", "x": 500, "y": 0, "width": 100, "height": 100},
    {"id": "veg", "class": "wide poutine-maker-animation", "x": 0, "y": 500, "width": 400, "height": 300}
  ],
  "widgets": {
    "classic": {"title": "Classic", "toppings": ["cheese.png", "gravy.png", "fries.png"], "bg": "bg.jpg", "fork": "fork.png", "vegetarian": false},
    "veg": {"title": "Garden", "toppings": ["peas.png"], "bg": "bg.jpg", "fork": "fork.png", "vegetarian": true, "load_timeout": "5s"}
  }
}`

const pageTOML = `
title = "Poutines"

[[canvases]]
id = "classic"
class = "poutine-maker-animation"
width = 500
height = 500

[widgets.classic]
title = "Classic"
toppings = ["cheese.png", "gravy.png", "fries.png"]
bg = "bg.jpg"
fork = "fork.png"
load_timeout = "2s"
`

const pageYAML = `
title: Poutines
canvases:
  - id: classic
    class: poutine-maker-animation
    width: 500
    height: 500
widgets:
  classic:
    title: Classic
    toppings: [cheese.png, gravy.png, fries.png]
    bg: bg.jpg
    fork: fork.png
    vegetarian: true
`

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		ext        string
		vegetarian bool
		timeout    time.Duration
	}{
		{"json", pageJSON, ".json", false, 0},
		{"toml", pageTOML, ".toml", false, 2 * time.Second},
		{"yaml", pageYAML, ".yml", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.data), tt.ext)
			require.NoError(t, err)
			assert.Equal(t, "Poutines", p.Title)

			w, err := p.WidgetFor("classic")
			require.NoError(t, err)
			assert.Equal(t, "Classic", w.Title)
			assert.Equal(t, []string{"cheese.png", "gravy.png", "fries.png"}, w.Toppings)
			assert.Equal(t, "bg.jpg", w.Background)
			assert.Equal(t, "fork.png", w.Overlay)
			assert.Equal(t, tt.vegetarian, w.Vegetarian)
			assert.Equal(t, tt.timeout, time.Duration(w.LoadTimeout))
		})
	}
}

func TestParseUnknownFormat(t *testing.T) {
	_, err := Parse([]byte(pageJSON), ".ini")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDiscoverByClass(t *testing.T) {
	p, err := Parse([]byte(pageJSON), ".json")
	require.NoError(t, err)

	found := p.Discover()
	require.Len(t, found, 2)
	assert.Equal(t, "classic", found[0].ID)
	assert.Equal(t, "veg", found[1].ID)
}

func TestWindowDefaultsToBoundingBox(t *testing.T) {
	p, err := Parse([]byte(pageJSON), ".json")
	require.NoError(t, err)
	assert.Equal(t, 600, p.Width)
	assert.Equal(t, 800, p.Height)

	empty, err := Parse([]byte(`{}`), ".json")
	require.NoError(t, err)
	assert.Equal(t, WindowWidth, empty.Width)
	assert.Equal(t, WindowHeight, empty.Height)
}

func TestWidgetForMissing(t *testing.T) {
	p, err := Parse([]byte(pageJSON), ".json")
	require.NoError(t, err)

	_, err = p.WidgetFor("other")
	assert.ErrorIs(t, err, ErrNoWidget)
}

func TestPageValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no id", `{"canvases": [{"width": 10, "height": 10}]}`},
		{"duplicate id", `{"canvases": [{"id": "a", "width": 10, "height": 10}, {"id": "a", "width": 10, "height": 10}]}`},
		{"zero size", `{"canvases": [{"id": "a", "width": 0, "height": 10}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), ".json")
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestWidgetValidate(t *testing.T) {
	assert.NoError(t, Widget{Background: "bg.png"}.Validate())
	assert.ErrorIs(t, Widget{}.Validate(), ErrInvalid)
	assert.ErrorIs(t, Widget{Background: "bg.png", Toppings: []string{" "}}.Validate(), ErrInvalid)
	assert.ErrorIs(t, Widget{Background: "bg.png", LoadTimeout: -1}.Validate(), ErrInvalid)
}

func TestLoadSetsDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pageYAML), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, p.Dir)
	assert.Len(t, p.Discover(), 1)
}
