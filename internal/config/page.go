package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoWidget is returned when a canvas has no widget configuration.
	ErrNoWidget = errors.New("no widget configuration for canvas")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid configuration")
)

// Page is the document a host renders: a set of canvases and the widget
// configuration for each of them, keyed by canvas id.
type Page struct {
	Title    string            `json:"title" toml:"title" yaml:"title"`
	Width    int               `json:"width" toml:"width" yaml:"width"`
	Height   int               `json:"height" toml:"height" yaml:"height"`
	Canvases []Canvas          `json:"canvases" toml:"canvases" yaml:"canvases"`
	Widgets  map[string]Widget `json:"widgets" toml:"widgets" yaml:"widgets"`

	// Dir is the directory relative asset references resolve against.
	Dir string `json:"-" toml:"-" yaml:"-"`
}

// Canvas is a drawing surface placed on the page.
type Canvas struct {
	ID     string `json:"id" toml:"id" yaml:"id"`
	Class  string `json:"class" toml:"class" yaml:"class"`
	X      int    `json:"x" toml:"x" yaml:"x"`
	Y      int    `json:"y" toml:"y" yaml:"y"`
	Width  int    `json:"width" toml:"width" yaml:"width"`
	Height int    `json:"height" toml:"height" yaml:"height"`
}

// Widget configures one animation. It is immutable once handed to a widget.
type Widget struct {
	Title       string   `json:"title" toml:"title" yaml:"title"`
	Toppings    []string `json:"toppings" toml:"toppings" yaml:"toppings"`
	Background  string   `json:"bg" toml:"bg" yaml:"bg"`
	Overlay     string   `json:"fork" toml:"fork" yaml:"fork"`
	Vegetarian  bool     `json:"vegetarian" toml:"vegetarian" yaml:"vegetarian"`
	LoadTimeout Duration `json:"load_timeout" toml:"load_timeout" yaml:"load_timeout"`
}

// Duration is a time.Duration written as "5s", "1m30s" and so on.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("%w: load_timeout: %v", ErrInvalid, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Load reads a page file. The decoder is picked from the file extension:
// .json, .toml, .yaml or .yml.
func Load(path string) (*Page, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	p.Dir = abs
	return p, nil
}

// Parse decodes a page from data in the format named by ext.
func Parse(data []byte, ext string) (*Page, error) {
	var p Page
	var err error
	switch strings.ToLower(ext) {
	case ".json":
		err = sonic.Unmarshal(data, &p)
	case ".toml":
		err = toml.Unmarshal(data, &p)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	default:
		return nil, fmt.Errorf("%w: unsupported page format %q", ErrInvalid, ext)
	}
	if err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.applyDefaults()
	return &p, nil
}

func (p *Page) validate() error {
	seen := make(map[string]bool, len(p.Canvases))
	for i, c := range p.Canvases {
		if c.ID == "" {
			return fmt.Errorf("%w: canvas %d has no id", ErrInvalid, i)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate canvas id %q", ErrInvalid, c.ID)
		}
		seen[c.ID] = true
		if c.Width <= 0 || c.Height <= 0 {
			return fmt.Errorf("%w: canvas %q has size %dx%d", ErrInvalid, c.ID, c.Width, c.Height)
		}
	}
	return nil
}

// applyDefaults sizes the window to fit every canvas when the page does not.
func (p *Page) applyDefaults() {
	if p.Width > 0 && p.Height > 0 {
		return
	}
	w, h := 0, 0
	for _, c := range p.Canvases {
		w = max(w, c.X+c.Width)
		h = max(h, c.Y+c.Height)
	}
	if w == 0 || h == 0 {
		w, h = WindowWidth, WindowHeight
	}
	if p.Width <= 0 {
		p.Width = w
	}
	if p.Height <= 0 {
		p.Height = h
	}
}

// Discover returns the canvases that carry CanvasClass, in page order.
func (p *Page) Discover() []Canvas {
	var out []Canvas
	for _, c := range p.Canvases {
		if c.HasClass(CanvasClass) {
			out = append(out, c)
		}
	}
	return out
}

// WidgetFor returns the validated widget configuration for a canvas id.
func (p *Page) WidgetFor(id string) (Widget, error) {
	w, ok := p.Widgets[id]
	if !ok {
		return Widget{}, fmt.Errorf("%w %q", ErrNoWidget, id)
	}
	if err := w.Validate(); err != nil {
		return Widget{}, fmt.Errorf("canvas %q: %w", id, err)
	}
	return w, nil
}

// HasClass reports whether the space separated class list contains name.
func (c Canvas) HasClass(name string) bool {
	for _, f := range strings.Fields(c.Class) {
		if f == name {
			return true
		}
	}
	return false
}

// Validate checks the fields a widget cannot start without. An empty
// topping list is allowed; an empty overlay disables the overlay.
func (w Widget) Validate() error {
	if w.Background == "" {
		return fmt.Errorf("%w: missing bg", ErrInvalid)
	}
	for i, t := range w.Toppings {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: topping %d is empty", ErrInvalid, i)
		}
	}
	if w.LoadTimeout < 0 {
		return fmt.Errorf("%w: negative load_timeout", ErrInvalid)
	}
	return nil
}
