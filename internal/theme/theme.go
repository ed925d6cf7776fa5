// Package theme loads and saves lighting theme files. Themes are stored as
// JSON in $XDG_CONFIG_HOME/alienfx (falling back to ~/.config/alienfx), one
// file per theme, and describe per-power-state zone actions.
package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alienfx-go/alienfx/internal/fxpacket"
)

// Action types within a state item's loop.
const (
	ActionFixed = "fixed"
	ActionBlink = "blink"
	ActionMorph = "morph"
)

// lastThemeFile records the name of the last applied theme.
const lastThemeFile = ".last_theme.json"

// Action is one step of a zone's effect loop. Fixed and blink take one
// color, morph takes two.
type Action struct {
	Type   string   `json:"type"`
	Colors []string `json:"colours"`
}

// StateItem assigns an effect loop to a set of zones for one power state.
type StateItem struct {
	Zones []string `json:"zones"`
	Loop  []Action `json:"loop"`
}

// Theme is one complete lighting configuration.
type Theme struct {
	Name   string                 `json:"-"`
	Speed  uint16                 `json:"speed"`
	States map[string][]StateItem `json:"states"`
}

// Validate checks action shapes: fixed/blink need exactly one color, morph
// exactly two, and every color must parse.
func (t *Theme) Validate() error {
	for state, items := range t.States {
		for _, item := range items {
			for _, action := range item.Loop {
				want := 1
				switch action.Type {
				case ActionFixed, ActionBlink:
				case ActionMorph:
					want = 2
				default:
					return fmt.Errorf("theme %q state %q: unknown action type %q", t.Name, state, action.Type)
				}
				if len(action.Colors) != want {
					return fmt.Errorf("theme %q state %q: %s needs %d colour(s), got %d",
						t.Name, state, action.Type, want, len(action.Colors))
				}
				for _, c := range action.Colors {
					if _, err := ParseColor(c); err != nil {
						return fmt.Errorf("theme %q state %q: %w", t.Name, state, err)
					}
				}
			}
		}
	}
	return nil
}

// ParseColor parses a hex RGB string ("ff0000" or "#ff0000").
func ParseColor(s string) (fxpacket.RGB, error) {
	h := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "#")
	if len(h) != 6 {
		return fxpacket.RGB{}, fmt.Errorf("invalid colour %q: want 6 hex digits", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(h, "%02x%02x%02x", &r, &g, &b); err != nil {
		return fxpacket.RGB{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return fxpacket.RGB{R: r, G: g, B: b}, nil
}

// FormatColor renders a color as "#rrggbb".
func FormatColor(c fxpacket.RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Store reads and writes theme files in one directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("theme: create dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// DefaultDir resolves the per-user theme directory.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "alienfx")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "alienfx"
	}
	return filepath.Join(home, ".config", "alienfx")
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path a theme name maps to.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// List returns the names of all stored themes, sorted by the directory
// listing order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("theme: list %s: %w", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	return names, nil
}

// Load reads and validates one theme.
func (s *Store) Load(name string) (*Theme, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("theme: load %q: %w", name, err)
	}
	var t Theme
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("theme: parse %q: %w", name, err)
	}
	t.Name = name
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Save writes a theme to disk. The write goes to a temporary file in the
// store directory and is renamed into place, so a file watcher on the theme
// never observes a half-written file.
func (s *Store) Save(t *Theme) error {
	if err := t.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("theme: marshal %q: %w", t.Name, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+t.Name+".json.tmp*")
	if err != nil {
		return fmt.Errorf("theme: save %q: %w", t.Name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("theme: save %q: %w", t.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("theme: save %q: %w", t.Name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("theme: save %q: %w", t.Name, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(t.Name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("theme: save %q: %w", t.Name, err)
	}
	return nil
}

// SetLastApplied records the most recently applied theme name.
func (s *Store) SetLastApplied(name string) error {
	data, err := json.Marshal(map[string]string{"theme": name})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, lastThemeFile), data, 0o644)
}

// LastApplied returns the most recently applied theme name, or "" when no
// theme has been applied yet.
func (s *Store) LastApplied() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, lastThemeFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	var marker map[string]string
	if err := json.Unmarshal(data, &marker); err != nil {
		return "", err
	}
	return marker["theme"], nil
}
