// Package theme loads the bubble palette from a TOML file and provides the
// color math shared by every renderer (terminal cells and GPU alike).
package theme

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme is the top-level TOML structure.
type Theme struct {
	Background string   `toml:"background"`
	Center     string   `toml:"center"`
	CenterGlow string   `toml:"center_glow"`
	Ring       string   `toml:"ring"`
	DeleteZone string   `toml:"delete_zone"`
	Completed  string   `toml:"completed"`
	Text       string   `toml:"text"`
	Bubbles    []string `toml:"bubbles"`
}

const defaultThemeTOML = `# Bubbleboard palette.
# Colors are hex; bubbles cycles per task.

background = "#14131a"
center = "#f2cc8f"
center_glow = "#f7e4bd"
ring = "#f4f1de"
delete_zone = "#e07a5f"
completed = "#6b7280"
text = "#f4f1de"

bubbles = [
  "#e07a5f",
  "#81b29a",
  "#3d405b",
  "#f2cc8f",
  "#8e7dbe",
  "#5f9ea0",
]
`

// themeDir returns the directory for bubbleboard config files,
// using XDG_CONFIG_HOME or falling back to ~/.config.
func themeDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "bubbleboard"), nil
}

func themePath() (string, error) {
	dir, err := themeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme.toml"), nil
}

// Load reads the palette from path, or from the default location when path is
// empty. A missing default file is created with the built-in palette.
func Load(path string) (Theme, error) {
	var err error
	if path == "" {
		path, err = themePath()
		if err != nil {
			return Default(), err
		}
		// Create theme file with defaults if missing
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
				return Default(), fmt.Errorf("create theme dir: %w", mkErr)
			}
			if wErr := os.WriteFile(path, []byte(defaultThemeTOML), 0o644); wErr != nil {
				return Default(), fmt.Errorf("write default theme: %w", wErr)
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read theme: %w", err)
	}
	th, err := Parse(data)
	if err != nil {
		return Default(), err
	}
	return th, nil
}

// Parse parses TOML bytes into a validated theme.
func Parse(data []byte) (Theme, error) {
	var th Theme
	if err := toml.Unmarshal(data, &th); err != nil {
		return Default(), fmt.Errorf("parse theme.toml: %w", err)
	}
	if len(th.Bubbles) == 0 {
		return Default(), fmt.Errorf("no bubble colors defined in theme")
	}
	fields := map[string]*string{
		"background":  &th.Background,
		"center":      &th.Center,
		"center_glow": &th.CenterGlow,
		"ring":        &th.Ring,
		"delete_zone": &th.DeleteZone,
		"completed":   &th.Completed,
		"text":        &th.Text,
	}
	d := Default()
	defaults := map[string]string{
		"background":  d.Background,
		"center":      d.Center,
		"center_glow": d.CenterGlow,
		"ring":        d.Ring,
		"delete_zone": d.DeleteZone,
		"completed":   d.Completed,
		"text":        d.Text,
	}
	for name, f := range fields {
		*f = strings.TrimSpace(*f)
		if *f == "" {
			*f = defaults[name]
			continue
		}
		if _, err := colorful.Hex(*f); err != nil {
			return Default(), fmt.Errorf("theme %s: %w", name, err)
		}
	}
	for i, hex := range th.Bubbles {
		if _, err := colorful.Hex(strings.TrimSpace(hex)); err != nil {
			return Default(), fmt.Errorf("theme bubbles[%d]: %w", i, err)
		}
		th.Bubbles[i] = strings.TrimSpace(hex)
	}
	return th, nil
}

// Save writes the theme to path, or the default location when path is empty.
func Save(th Theme, path string) error {
	var err error
	if path == "" {
		path, err = themePath()
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create theme dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(th); err != nil {
		return fmt.Errorf("encode theme.toml: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write theme.toml: %w", err)
	}
	return nil
}

// Default returns the built-in palette. It decodes defaultThemeTOML straight
// through toml so Parse, which falls back to Default on bad input, never
// re-enters it.
func Default() Theme {
	var th Theme
	if err := toml.Unmarshal([]byte(defaultThemeTOML), &th); err != nil {
		// The built-in palette always decodes; reaching here is a programming
		// error worth failing loudly on.
		panic(err)
	}
	return th
}

// BubbleColor cycles the palette by index.
func (t Theme) BubbleColor(i int) string {
	return t.Bubbles[i%len(t.Bubbles)]
}

// Muted returns hex desaturated and dimmed toward the background, used for
// completed tasks.
func (t Theme) Muted(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return t.Completed
	}
	bg, bgErr := colorful.Hex(t.Background)
	if bgErr != nil {
		return t.Completed
	}
	h, s, l := c.Hsl()
	faded := colorful.Hsl(h, s*0.25, l*0.8)
	return faded.BlendLab(bg, 0.35).Clamped().Hex()
}

// Lighten blends hex toward white by amount in [0, 1]. Renderers use it for
// press highlights and the center glow.
func Lighten(hex string, amount float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	white := colorful.Color{R: 1, G: 1, B: 1}
	return c.BlendLab(white, clamp01(amount)).Clamped().Hex()
}

// Darken blends hex toward black by amount in [0, 1].
func Darken(hex string, amount float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	return c.BlendLab(colorful.Color{}, clamp01(amount)).Clamped().Hex()
}

// Blend mixes two hex colors in Lab space; t=0 gives a, t=1 gives b.
func Blend(a, b string, t float64) string {
	ca, errA := colorful.Hex(a)
	cb, errB := colorful.Hex(b)
	if errA != nil || errB != nil {
		return a
	}
	return ca.BlendLab(cb, clamp01(t)).Clamped().Hex()
}

// RGBA converts hex into 8-bit channels for GPU vertex colors.
func RGBA(hex string) (r, g, b, a uint8) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 255, 255, 255, 255
	}
	return uint8(c.R*255 + 0.5), uint8(c.G*255 + 0.5), uint8(c.B*255 + 0.5), 255
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
