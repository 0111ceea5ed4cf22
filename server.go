package captivewebview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omnissa-archive/captive-web-view/command"
)

// Version is the release token reported in command confirmation fields.
const Version = "1.0"

const defaultReadTimeout = 10 * time.Second

// NotFoundError reports a filename that no content root contains.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("File %q not found.", e.Name)
}

// Server is the development bridge: it serves files from an ordered list of
// content roots over GET, and dispatches JSON command objects posted by the
// web view to a chain of command handlers.
//
// The exported fields may be set after NewServer and before ListenAndServe.
type Server struct {
	// Port to bind on the loopback interface. Zero selects an ephemeral
	// port; the field holds the actual port once Started is closed.
	Port int

	// Name identifies the server in command confirmation fields.
	Name string

	// Log receives resolution and dispatch events. Defaults to the logrus
	// standard logger.
	Log *logrus.Logger

	// ReadTimeout bounds how long a request, body included, may take to
	// arrive. Defaults to 10 seconds.
	ReadTimeout time.Duration

	// AccessLog, when set, receives one combined-format line per request.
	AccessLog io.Writer

	directories []string
	ancestor    string
	relatives   []string
	handlers    []command.Handler

	srv     *http.Server
	ln      net.Listener
	started chan struct{}
}

// NewServer returns a Server for the given content directories, highest
// priority first. Every directory must exist; the common ancestor and each
// directory's relative path are computed here, once, and are immutable for
// the server's lifetime.
func NewServer(port int, directories ...string) (*Server, error) {
	if len(directories) == 0 {
		return nil, errors.New("at least one content directory is required")
	}
	absolutes := make([]string, len(directories))
	var duff []string
	for i, directory := range directories {
		absolute, err := filepath.Abs(directory)
		if err != nil {
			return nil, err
		}
		if info, err := os.Stat(absolute); err != nil || !info.IsDir() {
			duff = append(duff, directory)
			continue
		}
		absolutes[i] = absolute
	}
	if len(duff) > 0 {
		return nil, fmt.Errorf(
			"not directories: %s", strings.Join(duff, ", "))
	}
	ancestor := commonAncestor(absolutes)
	relatives := make([]string, len(absolutes))
	for i, directory := range absolutes {
		relative, err := filepath.Rel(ancestor, directory)
		if err != nil {
			return nil, err
		}
		relatives[i] = filepath.ToSlash(relative)
	}
	return &Server{
		Port:        port,
		directories: absolutes,
		ancestor:    ancestor,
		relatives:   relatives,
		started:     make(chan struct{}),
	}, nil
}

// HandleCommand appends handlers to the dispatch chain, in priority order.
// The chain is immutable once ListenAndServe has been called.
func (s *Server) HandleCommand(handlers ...command.Handler) {
	s.handlers = append(s.handlers, handlers...)
}

// Ancestor returns the common ancestor directory of all content roots.
// Served paths are expressed relative to it.
func (s *Server) Ancestor() string {
	return s.ancestor
}

// Directories returns the content roots, absolute, highest priority first.
func (s *Server) Directories() []string {
	directories := make([]string, len(s.directories))
	copy(directories, s.directories)
	return directories
}

// Relatives returns each content root's path relative to the common
// ancestor, index-aligned with Directories.
func (s *Server) Relatives() []string {
	relatives := make([]string, len(s.relatives))
	copy(relatives, s.relatives)
	return relatives
}

// Resolve locates the basename of filename in the content roots, searched
// in priority order, and returns its path relative to the common ancestor,
// slash separated. An empty basename resolves as "index.html".
//
// Only the basename takes part in the search. The directory segments of
// filename play no role here; request-path validation against the root
// tables is the caller's concern. A consequence worth knowing: a filename
// under one root's prefix can resolve into another root that actually
// contains the basename.
func (s *Server) Resolve(filename string) (string, error) {
	name := filename[strings.LastIndexByte(filename, '/')+1:]
	if name == "" {
		name = "index.html"
	}
	for i, directory := range s.directories {
		info, err := os.Stat(filepath.Join(directory, name))
		if err == nil && info.Mode().IsRegular() {
			return path.Join(s.relatives[i], name), nil
		}
	}
	return "", &NotFoundError{Name: name}
}

// ListenAndServe binds the loopback interface on s.Port and serves until
// Close or Shutdown. It updates s.Port with the actual port and closes the
// Started channel once the listener is bound.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", s.Port))
	if err != nil {
		return err
	}
	_, sport, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		ln.Close()
		return err
	}
	port, err := strconv.Atoi(sport)
	if err != nil {
		ln.Close()
		return err
	}
	s.Port = port
	timeout := s.ReadTimeout
	if timeout == 0 {
		timeout = defaultReadTimeout
	}
	s.srv = &http.Server{
		Handler:     s.router(),
		ReadTimeout: timeout,
	}
	s.ln = ln
	close(s.started)
	return s.srv.Serve(ln)
}

// Started is closed once the listener is bound and s.Port and URL are
// valid.
func (s *Server) Started() <-chan struct{} {
	return s.started
}

// Handler returns the bridge's HTTP handler, for callers that compose it
// into a server of their own instead of using ListenAndServe.
func (s *Server) Handler() http.Handler {
	return s.router()
}

// URL returns the base URL of the server. Valid once Started is closed.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.Port)
}

// Close stops the server immediately, dropping open connections.
func (s *Server) Close() error {
	return s.srv.Close()
}

// Shutdown stops the server gracefully, waiting for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) log() *logrus.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}

func (s *Server) name() string {
	if s.Name != "" {
		return s.Name
	}
	return "Server"
}

// commonAncestor returns the deepest directory that is a path prefix of
// every given absolute directory.
func commonAncestor(directories []string) string {
	separator := string(filepath.Separator)
	common := strings.Split(directories[0], separator)
	for _, directory := range directories[1:] {
		parts := strings.Split(directory, separator)
		if len(parts) < len(common) {
			common = common[:len(parts)]
		}
		for i := range common {
			if common[i] != parts[i] {
				common = common[:i]
				break
			}
		}
	}
	ancestor := strings.Join(common, separator)
	if ancestor == "" {
		ancestor = separator
	}
	return ancestor
}
