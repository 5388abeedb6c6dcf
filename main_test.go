package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// freeAddr returns a loopback address with a port that is currently unused.
func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

type site struct {
	content string
	public  string
	config  string
}

func newSite(t *testing.T) site {
	root := t.TempDir()
	s := site{
		content: filepath.Join(root, "content"),
		public:  filepath.Join(root, "public"),
		config:  filepath.Join(root, "scribe.cfg"),
	}
	if err := os.MkdirAll(filepath.Join(s.content, "blog"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.content, "index.md"), []byte("# Title"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.content, "blog", "post.md"), []byte("post"), 0644); err != nil {
		t.Fatal(err)
	}
	return s
}

func (s site) args(extra ...string) []string {
	return append([]string{"-content", s.content, "-public", s.public, "-config", s.config, "-loglevel", "error"}, extra...)
}

func TestRunGenerate(t *testing.T) {
	s := newSite(t)
	for _, flagName := range []string{"-a", "--action"} {
		if code := run(context.Background(), s.args(flagName, "generate")); code != 0 {
			t.Fatalf("%s: exit code %d", flagName, code)
		}
		b, err := os.ReadFile(filepath.Join(s.public, "index.html"))
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "<h1>Title</h1>\n" {
			t.Errorf("Unexpected page %q", b)
		}
		if _, err := os.Stat(filepath.Join(s.public, "blog", "post.html")); err != nil {
			t.Error(err)
		}
	}
}

func TestRunUnknownAction(t *testing.T) {
	for _, action := range []string{"", "publish", "GENERATE"} {
		s := newSite(t)
		addr := freeAddr(t)
		args := s.args("-addr", addr)
		if action != "" {
			args = append(args, "-a", action)
		}
		if code := run(context.Background(), args); code != 0 {
			t.Errorf("%q: expected exit code 0, got %d", action, code)
		}
		if _, err := os.Stat(s.public); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%q: public folder should not exist: %v", action, err)
		}
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			t.Errorf("%q: address should still be free: %v", action, err)
			continue
		}
		ln.Close()
	}
}

func TestRunStartupMessage(t *testing.T) {
	s := newSite(t)
	out, err := os.CreateTemp(t.TempDir(), "stdout")
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	stdout := os.Stdout
	os.Stdout = out
	code := run(context.Background(), s.args("-loglevel", "info", "-logformat", "json"))
	os.Stdout = stdout
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if _, err := out.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "Hello, world!") {
		t.Errorf("Expected startup message in %q", b)
	}
}

func TestRunEnvironment(t *testing.T) {
	s := newSite(t)
	t.Setenv("SCRIBE_NAMING", "content")
	if code := run(context.Background(), s.args("-a", "generate")); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if _, err := os.Stat(filepath.Join(s.public, "post.html")); err != nil {
		t.Errorf("Expected content naming from the environment: %v", err)
	}
}

func TestRunEnvironmentDoesNotOverrideAction(t *testing.T) {
	s := newSite(t)
	t.Setenv("SCRIBE_ACTION", "serve")
	if code := run(context.Background(), s.args("-a", "generate")); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if _, err := os.Stat(filepath.Join(s.public, "index.html")); err != nil {
		t.Errorf("Expected generate to run: %v", err)
	}
}

func TestRunConfigFile(t *testing.T) {
	s := newSite(t)
	cfg := `renderer = "goldmark"
public = "ignored because the flag is set"
`
	if err := os.WriteFile(s.config, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	if code := run(context.Background(), s.args("-a", "generate")); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	b, err := os.ReadFile(filepath.Join(s.public, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "<h1 id=\"title\">Title</h1>\n" {
		t.Errorf("Expected goldmark output, got %q", b)
	}
}

func TestRunBadConfig(t *testing.T) {
	s := newSite(t)
	if err := os.WriteFile(s.config, []byte("naming = ["), 0644); err != nil {
		t.Fatal(err)
	}
	if code := run(context.Background(), s.args("-a", "generate")); code != 2 {
		t.Errorf("Expected exit code 2, got %d", code)
	}
}

func TestRunGenerateFailure(t *testing.T) {
	s := newSite(t)
	if err := os.WriteFile(s.public, []byte("a file, not a folder"), 0644); err != nil {
		t.Fatal(err)
	}
	if code := run(context.Background(), s.args("-a", "generate")); code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
}

func TestRunServe(t *testing.T) {
	s := newSite(t)
	if code := run(context.Background(), s.args("-a", "generate")); code != 0 {
		t.Fatalf("generate exit code %d", code)
	}
	addr := freeAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, s.args("-a", "serve", "-addr", addr))
	}()

	var (
		resp *http.Response
		err  error
	)
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/blog/post.html")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case code := <-done:
		if code != 0 {
			t.Errorf("Expected exit code 0, got %d", code)
		}
	case <-time.After(5 * time.Second):
		t.Error("server did not stop")
	}
}

func TestRunServeBindFailure(t *testing.T) {
	s := newSite(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	if code := run(context.Background(), s.args("-a", "serve", "-addr", ln.Addr().String())); code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
}
