/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package busconfig loads the OBUS_LOG_* environment variables and an
// optional address list through github.com/spf13/viper, decodes them with
// github.com/mitchellh/mapstructure, and validates bus name / address
// grammar with github.com/go-playground/validator/v10. Only the log-filter
// set is file-watchable (via github.com/fsnotify/fsnotify) -- the wire
// protocol itself carries no negotiable configuration.
package busconfig

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/nabbar/obus/errs"
)

// LogFilter mirrors the six OBUS_LOG_* environment variables. Each field
// holds the parsed bus-name set: nil/empty means "no category logging
// configured", a single "all" or "1" entry means "match any bus".
type LogFilter struct {
	All        []string `mapstructure:"log_all"`
	IO         []string `mapstructure:"log_io"`
	Bus        []string `mapstructure:"log_bus"`
	Socket     []string `mapstructure:"log_socket"`
	Connection []string `mapstructure:"log_connection"`
	Color      bool     `mapstructure:"log_color"`
}

// Matches reports whether category's filter (or the "all" umbrella) allows
// logging for the named bus.
func (f LogFilter) Matches(names []string, bus string) bool {
	for _, set := range [][]string{names, f.All} {
		for _, n := range set {
			if n == "all" || n == "1" || strings.EqualFold(n, bus) {
				return true
			}
		}
	}
	return false
}

// Config is the decoded, validated bus configuration.
type Config struct {
	BusName   string   `mapstructure:"bus_name" validate:"required"`
	Addresses []string `mapstructure:"addresses" validate:"omitempty,dive,required"`
	Log       LogFilter
}

// Load reads OBUS_* environment variables (and any config file the caller
// has already read into v; Load itself never calls ReadInConfig) into a
// Config.
func Load(v *viper.Viper) (Config, errs.Error) {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvPrefix("OBUS")
	v.AutomaticEnv()
	v.SetDefault("log_color", false)

	raw := map[string]any{
		"bus_name":      v.GetString("BUS_NAME"),
		"addresses":     splitList(v.GetString("ADDRESSES")),
		"log_all":       splitList(v.GetString("LOG_ALL")),
		"log_io":        splitList(v.GetString("LOG_IO")),
		"log_bus":       splitList(v.GetString("LOG_BUS")),
		"log_socket":    splitList(v.GetString("LOG_SOCKET")),
		"log_connection": splitList(v.GetString("LOG_CONNECTION")),
		"log_color":     v.GetString("LOG_COLOR") == "1",
	}

	flat := map[string]any{
		"bus_name":  raw["bus_name"],
		"addresses": raw["addresses"],
	}
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &cfg, WeaklyTypedInput: true})
	if err != nil {
		return cfg, errs.Wrap(errs.InvalidArgument, err, "building config decoder")
	}
	if err = dec.Decode(flat); err != nil {
		return cfg, errs.Wrap(errs.InvalidArgument, err, "decoding bus config")
	}
	cfg.Log = LogFilter{
		All:        raw["log_all"].([]string),
		IO:         raw["log_io"].([]string),
		Bus:        raw["log_bus"].([]string),
		Socket:     raw["log_socket"].([]string),
		Connection: raw["log_connection"].([]string),
		Color:      raw["log_color"].(bool),
	}

	if cfg.BusName == "" {
		// bus name is supplied by the engine constructor in most embeddings;
		// only validate it here when the caller populated it via config.
		return cfg, nil
	}
	if verr := validator.New().Struct(cfg); verr != nil {
		return cfg, errs.Wrap(errs.InvalidArgument, verr, "validating bus config")
	}
	return cfg, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Watch registers a callback invoked whenever the config file backing v
// changes on disk, using github.com/fsnotify/fsnotify through viper's
// built-in watcher. Only meaningful when the caller configured a file path;
// otherwise Watch registers nothing and returns.
func Watch(v *viper.Viper, onChange func(LogFilter)) {
	if v == nil || v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := Load(v)
		if err == nil {
			onChange(cfg.Log)
		}
	})
	v.WatchConfig()
}
