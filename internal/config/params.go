package config

import (
	"fmt"
	"strings"

	"github.com/jezek/xgb/xproto"

	"ximd/internal/keymap"
	"ximd/internal/xim"
)

var modifierNames = map[string]uint32{
	"shift":   xproto.ModMaskShift,
	"lock":    xproto.ModMaskLock,
	"ctrl":    xproto.ModMaskControl,
	"control": xproto.ModMaskControl,
	"alt":     xproto.ModMask1,
	"mod1":    xproto.ModMask1,
	"mod2":    xproto.ModMask2,
	"mod3":    xproto.ModMask3,
	"super":   xproto.ModMask4,
	"mod4":    xproto.ModMask4,
	"mod5":    xproto.ModMask5,
}

// ParseTrigger parses a chord such as "ctrl+space" or "shift+alt+f1". The
// last element names the keysym; every modifier listed must be held and is
// also the only modifier compared.
func ParseTrigger(chord string) (xim.TriggerKey, error) {
	parts := strings.Split(chord, "+")
	if len(parts) == 0 || strings.TrimSpace(parts[len(parts)-1]) == "" {
		return xim.TriggerKey{}, fmt.Errorf("trigger %q: missing key", chord)
	}

	sym, err := keymap.ParseKeysym(parts[len(parts)-1])
	if err != nil {
		return xim.TriggerKey{}, fmt.Errorf("trigger %q: %w", chord, err)
	}

	var mods uint32
	for _, p := range parts[:len(parts)-1] {
		m, ok := modifierNames[strings.ToLower(strings.TrimSpace(p))]
		if !ok {
			return xim.TriggerKey{}, fmt.Errorf("trigger %q: unknown modifier %q", chord, p)
		}
		mods |= m
	}
	return xim.TriggerKey{Keysym: sym, Modifier: mods, ModifierMask: mods}, nil
}

func parseTriggers(chords []string) ([]xim.TriggerKey, error) {
	keys := make([]xim.TriggerKey, 0, len(chords))
	for _, c := range chords {
		k, err := ParseTrigger(c)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// LocaleList returns the locale list passed to the engine.
func (s ServerConfig) LocaleList() string {
	if s.Locale == "" || strings.EqualFold(s.Locale, "all") {
		return xim.AllLocales
	}
	return s.Locale
}

// ToParams converts the server and trigger sections into engine
// construction parameters. The server window is created by the display
// layer and left zero here.
func (c *Config) ToParams() (xim.CreateParams, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	styles := make([]xim.InputStyle, 0, len(c.Server.Styles))
	for _, s := range c.Server.Styles {
		style, err := xim.ParseInputStyle(s)
		if err != nil {
			return xim.CreateParams{}, fmt.Errorf("server.styles: %w", err)
		}
		styles = append(styles, style)
	}

	on, err := parseTriggers(c.Triggers.On)
	if err != nil {
		return xim.CreateParams{}, fmt.Errorf("triggers.on: %w", err)
	}
	off, err := parseTriggers(c.Triggers.Off)
	if err != nil {
		return xim.CreateParams{}, fmt.Errorf("triggers.off: %w", err)
	}

	return xim.CreateParams{
		Screen:      c.Server.Screen,
		ServerName:  c.Server.Name,
		Locale:      c.Server.LocaleList(),
		InputStyles: styles,
		OnKeys:      on,
		OffKeys:     off,
		Encodings:   append([]string(nil), c.Server.Encodings...),
		EventMask:   c.Server.EventMask,
	}, nil
}

// ServerOptions returns the xim.Server options derived from the
// configuration, without logger or observer.
func (c *Config) ServerOptions() (xim.Options, error) {
	params, err := c.ToParams()
	if err != nil {
		return xim.Options{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	strictness := xim.Tolerant
	if c.Server.Strict {
		strictness = xim.Strict
	}
	return xim.Options{
		Params:           params,
		Strictness:       strictness,
		ReapOnDisconnect: c.Server.ReapOnDisconnect,
		CloseOnDestroy:   c.Server.CloseOnDestroy,
	}, nil
}
