/*
Package serve serves a rendered site over HTTP.

Requests are resolved against the destination directory with http.FileServer,
except index.html files, which are answered directly instead of redirected.
The handler chain logs every request, adds configured headers, compresses
responses, and serves /404.html or /500.html for errors when present.
Files and folders starting with a period are served unless HideDotFiles is set.

Setting CacheBytes keeps served files in memory using groupcache. Groupcache
has no expiry, so entries are quantized over CacheDuration instead.
*/
package serve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ancientlore/cachefs"

	"github.com/ancientlore/scribe/logging"
	"github.com/ancientlore/scribe/web"
)

// ShutdownTimeout bounds how long in-flight requests may take once the
// server is asked to stop.
const ShutdownTimeout = 10 * time.Second

// Config holds the settings of a Server.
type Config struct {
	Root              string // directory to serve
	Addr              string // address to listen on
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	CacheBytes        int64         // size of the file cache, 0 disables it
	CacheDuration     time.Duration // expiry of cached files
	Headers           map[string]string
	Expires           time.Duration // Expires header for pages and folders
	StaticExpires     time.Duration // Expires header for other files
	HideDotFiles      bool          // report paths with an element starting with "." as not found
}

// Server serves the files below Config.Root.
type Server struct {
	cfg Config
	log logging.Logger
}

// New creates a Server. A nil log discards request logs.
func New(cfg Config, log logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	return &Server{cfg: cfg, log: log}
}

// groupSeq keeps cache group names unique; groupcache panics on duplicates.
var groupSeq atomic.Int64

// FS returns the file system the server reads from.
func (s *Server) FS() fs.FS {
	var fsys fs.FS = os.DirFS(s.cfg.Root)
	if s.cfg.CacheBytes > 0 {
		name := fmt.Sprintf("scribe-%d", groupSeq.Add(1))
		fsys = cachefs.New(fsys, &cachefs.Config{
			GroupName:   name,
			SizeInBytes: s.cfg.CacheBytes,
			Duration:    s.cfg.CacheDuration,
		})
		s.log.Debug("file cache enabled", "group", name, "bytes", s.cfg.CacheBytes, "duration", s.cfg.CacheDuration.String())
	}
	if s.cfg.HideDotFiles {
		fsys = hiddenFS{fs: fsys}
	}
	return fsys
}

// Handler returns the complete handler chain.
func (s *Server) Handler() http.Handler {
	fsys := s.FS()
	return web.LogHandler(
		web.HeaderHandler(
			web.ExpiresHandler(
				gziphandler.GzipHandler(
					web.ErrorHandler(
						IndexHandler(http.FileServer(http.FS(fsys)), fsys),
						fsys,
					),
				),
				s.cfg.Expires,
				s.cfg.StaticExpires,
			),
			s.cfg.Headers,
		),
		s.log,
	)
}

// ListenAndServe binds Config.Addr and serves until ctx is done.
// A bind failure is returned immediately.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully, waiting at most ShutdownTimeout for open requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	stop := make(chan struct{})
	shutdown := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
			sctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
			defer cancel()
			shutdown <- srv.Shutdown(sctx)
		case <-stop:
			shutdown <- nil
		}
	}()

	s.log.Debug(fmt.Sprintf("listening on %s", ln.Addr()), "root", s.cfg.Root)
	err := srv.Serve(ln)
	close(stop)
	serr := <-shutdown
	if errors.Is(err, http.ErrServerClosed) {
		if serr != nil {
			return fmt.Errorf("serve: shutdown: %w", serr)
		}
		s.log.Info("server stopped")
		return nil
	}
	return fmt.Errorf("serve: %w", err)
}
