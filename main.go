// scribe renders a folder of markdown documents into HTML pages and serves them.
//
//	scribe -a generate   # content/**/*.md -> public/**/*.html
//	scribe -a serve      # http://127.0.0.1:3001/ serves public/
//
// Every flag may also be given as an environment variable named SCRIBE_ plus
// the upper-case flag name, for example SCRIBE_LOGLEVEL=info. Settings may also
// come from a TOML file, scribe.cfg by default. Flags win over the environment,
// which wins over the file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/facebookgo/flagenv"
	"github.com/golang/groupcache"

	"github.com/ancientlore/scribe/config"
	"github.com/ancientlore/scribe/generate"
	"github.com/ancientlore/scribe/logging"
	"github.com/ancientlore/scribe/render"
	"github.com/ancientlore/scribe/serve"
)

// envPrefix is prepended to flag names to find environment overrides.
const envPrefix = "SCRIBE_"

// options holds the parsed command line.
type options struct {
	action            string
	content           string
	public            string
	addr              string
	renderer          string
	naming            string
	strict            bool
	cacheSize         int64
	cacheDuration     time.Duration
	expires           time.Duration
	staticExpires     time.Duration
	readTimeout       time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	hideDotFiles      bool
	logLevel          string
	logFormat         string
	configFile        string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// run parses args, then generates or serves the site. It returns the process exit code.
func run(ctx context.Context, args []string) int {
	var opts options
	def := config.Default()
	fset := flag.NewFlagSet("scribe", flag.ContinueOnError)
	fset.StringVar(&opts.action, "action", "", "Action to perform: generate or serve.")
	fset.StringVar(&opts.action, "a", "", "Shorthand for -action.")
	fset.StringVar(&opts.content, "content", def.Content, "Folder of markdown documents.")
	fset.StringVar(&opts.public, "public", def.Public, "Folder of rendered pages.")
	fset.StringVar(&opts.addr, "addr", def.Addr, "Address to serve on.")
	fset.StringVar(&opts.renderer, "renderer", def.Renderer, "Markdown renderer: blackfriday or goldmark.")
	fset.StringVar(&opts.naming, "naming", def.Naming, "Page naming: path or content.")
	fset.BoolVar(&opts.strict, "strict", false, "Fail generation when a document cannot be read.")
	fset.Int64Var(&opts.cacheSize, "cachesize", 0, "Bytes of served files to keep in memory; 0 disables the cache.")
	fset.DurationVar(&opts.cacheDuration, "cacheduration", time.Duration(def.CacheDuration), "Expiry of cached files.")
	fset.DurationVar(&opts.expires, "expires", 0, "Expires header for pages; 0 omits it.")
	fset.DurationVar(&opts.staticExpires, "staticexpires", 0, "Expires header for other files; 0 omits it.")
	fset.DurationVar(&opts.readTimeout, "readtimeout", 0, "HTTP server read timeout.")
	fset.DurationVar(&opts.readHeaderTimeout, "readheadertimeout", 0, "HTTP server read header timeout.")
	fset.DurationVar(&opts.writeTimeout, "writetimeout", 0, "HTTP server write timeout.")
	fset.BoolVar(&opts.hideDotFiles, "hidedotfiles", false, "Do not serve files or folders whose name starts with a period.")
	fset.StringVar(&opts.logLevel, "loglevel", "debug", "Log level: trace, debug, info, warn, or error.")
	fset.StringVar(&opts.logFormat, "logformat", "console", "Log format: console, json, or pretty.")
	fset.StringVar(&opts.configFile, "config", config.DefaultFile, "Optional TOML configuration file.")
	if err := fset.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	explicit := visited(fset)
	action := opts.action
	if err := flagenv.ParseSet(envPrefix, fset); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot read environment: %s\n", err)
		return 2
	}
	// -a and -action share a value; the environment must not override either.
	if explicit["a"] || explicit["action"] {
		opts.action = action
	}

	cfg, err := config.Load(os.DirFS(filepath.Dir(opts.configFile)), filepath.Base(opts.configFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot load %q: %s\n", opts.configFile, err)
		return 2
	}
	if err := applyConfig(fset, explicit, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid setting in %q: %s\n", opts.configFile, err)
		return 2
	}

	log, err := logging.New(logging.Options{Level: opts.logLevel, Format: opts.logFormat})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	log.Info("Hello, world!", "action", opts.action)
	if cfg != nil {
		log.Debug("loaded configuration", "file", opts.configFile)
	}

	switch opts.action {
	case "generate":
		err = generateSite(ctx, opts, logging.Named(log, "generate"))
	case "serve":
		var headers map[string]string
		if cfg != nil {
			headers = cfg.Headers
		}
		err = serveSite(ctx, opts, headers, logging.Named(log, "serve"))
	default:
		log.Warn("unknown action; nothing to do", "action", opts.action)
		return 0
	}
	if err != nil {
		log.Error(err.Error(), "action", opts.action)
		return 1
	}
	return 0
}

// visited returns the names of flags set on the command line.
func visited(fset *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fset.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

// envName returns the environment variable that overrides the named flag.
func envName(name string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// applyConfig copies settings from the config file into flags that were not
// set on the command line or through the environment.
func applyConfig(fset *flag.FlagSet, explicit map[string]bool, cfg *config.Config) error {
	for name, value := range cfg.Flags() {
		if explicit[name] || os.Getenv(envName(name)) != "" {
			continue
		}
		if err := fset.Set(name, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func generateSite(ctx context.Context, opts options, log logging.Logger) error {
	rdr, err := render.New(opts.renderer)
	if err != nil {
		return err
	}
	naming, err := generate.ParseNaming(opts.naming)
	if err != nil {
		return err
	}
	policy := generate.Lenient
	if opts.strict {
		policy = generate.Strict
	}
	g := &generate.Generator{
		Source:   opts.content,
		Dest:     opts.public,
		Renderer: rdr,
		Naming:   naming,
		Policy:   policy,
		Log:      log,
	}
	report, err := g.Generate(ctx)
	if err != nil {
		return err
	}
	if len(report.Skipped) > 0 {
		log.Warn(fmt.Sprintf("Skipped %d unreadable files", len(report.Skipped)))
	}
	return nil
}

// registerPeers sets up groupcache without peers; it may only happen once.
var registerPeers sync.Once

func serveSite(ctx context.Context, opts options, headers map[string]string, log logging.Logger) error {
	if opts.cacheSize > 0 {
		registerPeers.Do(func() {
			groupcache.RegisterPeerPicker(func() groupcache.PeerPicker { return groupcache.NoPeers{} })
		})
	}
	srv := serve.New(serve.Config{
		Root:              opts.public,
		Addr:              opts.addr,
		ReadTimeout:       opts.readTimeout,
		ReadHeaderTimeout: opts.readHeaderTimeout,
		WriteTimeout:      opts.writeTimeout,
		CacheBytes:        opts.cacheSize,
		CacheDuration:     opts.cacheDuration,
		Headers:           headers,
		Expires:           opts.expires,
		StaticExpires:     opts.staticExpires,
		HideDotFiles:      opts.hideDotFiles,
	}, log)
	return srv.ListenAndServe(ctx)
}
