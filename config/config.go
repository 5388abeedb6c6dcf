/*
Package config holds the settings of a scribe site.

Every setting has a built-in default that matches the conventional layout:
markdown documents under "content", rendered pages under "public", and a
server on the loopback interface at port 3001.

An optional TOML file, "scribe.cfg" by default, may override the defaults:

	content = "docs"
	public = "site"
	addr = "127.0.0.1:8080"
	renderer = "goldmark"
	naming = "path"
	strict = true
	cachesize = 10485760
	cacheduration = "30s"
	expires = "5m"
	staticexpires = "24h"
	hidedotfiles = true

	[headers]
	X-Frame-Options = "DENY"
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Defaults used when nothing else is configured.
const (
	DefaultContent       = "content"
	DefaultPublic        = "public"
	DefaultAddr          = "127.0.0.1:3001"
	DefaultRenderer      = "blackfriday"
	DefaultNaming        = "path"
	DefaultCacheDuration = 10 * time.Second
	DefaultFile          = "scribe.cfg"
)

// Config contains configuration data from the scribe.cfg file.
type Config struct {
	Content       string            `toml:"content"`       // Source directory of markdown documents
	Public        string            `toml:"public"`        // Destination directory of rendered pages
	Addr          string            `toml:"addr"`          // Address the server listens on
	Renderer      string            `toml:"renderer"`      // Markdown renderer name
	Naming        string            `toml:"naming"`        // Output naming policy, "path" or "content"
	Strict        bool              `toml:"strict"`        // Fail generation on unreadable files
	CacheSize     int64             `toml:"cachesize"`     // Bytes of served files to cache, 0 disables
	CacheDuration Duration          `toml:"cacheduration"` // Expiry of cached files
	Expires       Duration          `toml:"expires"`       // Expires header for pages
	StaticExpires Duration          `toml:"staticexpires"` // Expires header for other files
	HideDotFiles  bool              `toml:"hidedotfiles"`  // Do not serve paths with an element starting with "."
	Headers       map[string]string `toml:"headers"`       // Headers added to every response
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Content:       DefaultContent,
		Public:        DefaultPublic,
		Addr:          DefaultAddr,
		Renderer:      DefaultRenderer,
		Naming:        DefaultNaming,
		CacheDuration: Duration(DefaultCacheDuration),
	}
}

// Load reads configuration from the named file in fsys.
// It is not an error if the file does not exist; nil is returned instead.
func Load(fsys fs.FS, name string) (*Config, error) {
	var cfg Config
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}
	err = toml.Unmarshal(b, &cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot parse config file: %w", err)
	}
	return &cfg, nil
}

// Flags returns the settings present in the file, keyed by the command-line
// flag that carries the same setting. Zero values are left out.
func (c *Config) Flags() map[string]string {
	m := make(map[string]string)
	if c == nil {
		return m
	}
	set := func(name, value string) {
		if value != "" {
			m[name] = value
		}
	}
	set("content", c.Content)
	set("public", c.Public)
	set("addr", c.Addr)
	set("renderer", c.Renderer)
	set("naming", c.Naming)
	if c.Strict {
		m["strict"] = "true"
	}
	if c.HideDotFiles {
		m["hidedotfiles"] = "true"
	}
	if c.CacheSize != 0 {
		m["cachesize"] = strconv.FormatInt(c.CacheSize, 10)
	}
	if c.CacheDuration != 0 {
		m["cacheduration"] = c.CacheDuration.String()
	}
	if c.Expires != 0 {
		m["expires"] = c.Expires.String()
	}
	if c.StaticExpires != 0 {
		m["staticexpires"] = c.StaticExpires.String()
	}
	return m
}
