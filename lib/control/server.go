// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emberterm/ember/lib/peercred"
)

// ErrNotStarted is returned by Stop on a server that never started.
var ErrNotStarted = errors.New("control: server not started")

// Default per-operation deadlines. A well-behaved helper sends its
// request immediately after connecting and reads the response right
// away; these bounds exist so a stalled or malicious peer cannot hold
// a connection goroutine forever.
const (
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 10 * time.Second
)

// RunConfig describes one server instance. It is immutable once
// passed to New; the server never modifies it and shares it read-only
// across connection goroutines.
type RunConfig struct {
	// Title names the server in log output (e.g., "session-control").
	Title string

	// SocketPath is the filesystem path to bind. Must be unique among
	// concurrently running servers. The parent directory is created
	// 0700 and the socket itself is chmod 0600, so the filesystem
	// already restricts access to the owning uid before the
	// credential check runs.
	SocketPath string

	// Policy authorizes each connecting peer. Required.
	Policy Policy

	// Handler receives connection events. Required.
	Handler EventHandler

	// AcceptFailure is invoked once if the accept loop dies for any
	// reason other than Stop. Optional; when nil the failure is
	// logged and the loop exits. Either way the exit is observable
	// through Done.
	AcceptFailure func(err error)

	// ReadTimeout and WriteTimeout bound individual connection
	// operations. Zero values use the defaults above.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server owns a listening Unix socket and its accept loop. One accept
// goroutine exists per running server; each accepted connection is
// processed on its own goroutine so a slow client never blocks
// accept.
type Server struct {
	config RunConfig
	logger *slog.Logger

	listener *net.UnixListener
	started  atomic.Bool
	running  atomic.Bool
	stopOnce sync.Once

	// done is closed when the accept loop exits, for any reason. A
	// dying accept loop is observable here and through AcceptFailure
	// rather than disappearing silently.
	done chan struct{}

	// connections tracks in-flight connection goroutines. Stop does
	// not wait on it — in-flight handlers finish independently,
	// bounded by the connection deadlines.
	connections sync.WaitGroup
}

// New creates a server for the given run configuration. Call Start to
// bind and begin accepting.
func New(config RunConfig, logger *slog.Logger) *Server {
	if config.ReadTimeout == 0 {
		config.ReadTimeout = DefaultReadTimeout
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = DefaultWriteTimeout
	}
	return &Server{
		config: config,
		logger: logger.With("server", config.Title),
		done:   make(chan struct{}),
	}
}

// Start binds the socket and spawns the accept loop. It returns
// immediately on success; a bind failure (path in use, directory not
// writable) is returned to the caller and nothing is spawned. Start
// may be called at most once.
func (s *Server) Start() error {
	if s.config.SocketPath == "" {
		return errors.New("control: RunConfig.SocketPath is required")
	}
	if s.config.Policy == nil {
		return errors.New("control: RunConfig.Policy is required")
	}
	if s.config.Handler == nil {
		return errors.New("control: RunConfig.Handler is required")
	}
	if s.started.Swap(true) {
		return fmt.Errorf("control: server %q already started", s.config.Title)
	}

	listener, err := bindSocket(s.config.SocketPath)
	if err != nil {
		return err
	}
	s.listener = listener
	s.running.Store(true)

	s.logger.Info("control socket listening", "path", s.config.SocketPath)
	go s.acceptLoop()
	return nil
}

// bindSocket prepares the socket path and listens on it: parent
// directory created 0700, stale socket file from a previous run
// removed, fresh socket chmod 0600.
func bindSocket(socketPath string) (*net.UnixListener, error) {
	socketDir := filepath.Dir(socketPath)
	if err := os.MkdirAll(socketDir, 0700); err != nil {
		return nil, fmt.Errorf("creating socket directory %s: %w", socketDir, err)
	}
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale socket %s: %w", socketPath, err)
	}

	address, err := net.ResolveUnixAddr("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("resolving socket address %s: %w", socketPath, err)
	}
	listener, err := net.ListenUnix("unix", address)
	if err != nil {
		return nil, fmt.Errorf("binding control socket %s: %w", socketPath, err)
	}

	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("restricting socket permissions: %w", err)
	}
	return listener, nil
}

// Stop closes the listening socket, which unblocks the accept loop
// and ends it cleanly. Idempotent: the second and later calls are
// no-ops. Stop does not wait for in-flight connections; they run to
// completion on their own goroutines.
func (s *Server) Stop() error {
	if !s.started.Load() {
		return ErrNotStarted
	}
	s.stopOnce.Do(func() {
		s.running.Store(false)
		s.listener.Close()
		s.logger.Info("control socket stopped", "path", s.config.SocketPath)
	})
	return nil
}

// Done is closed when the accept loop has exited, whether through
// Stop or through an accept failure.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// acceptLoop is the single goroutine that calls Accept. Per-connection
// work never runs here: credential resolution is a non-blocking
// getsockopt, and everything after the authorization decision happens
// on a connection goroutine.
func (s *Server) acceptLoop() {
	defer close(s.done)

	for {
		raw, err := s.listener.AcceptUnix()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				// Stop closed the listener; clean exit.
				return
			}
			s.acceptFailed(fmt.Errorf("accept on %s: %w", s.config.SocketPath, err))
			return
		}
		s.dispatch(raw)
	}
}

// acceptFailed reports a fatal accept-loop error through the
// owner-supplied callback, falling back to the log so the death is
// never silent.
func (s *Server) acceptFailed(err error) {
	if s.config.AcceptFailure != nil {
		s.config.AcceptFailure(err)
		return
	}
	s.logger.Error("accept loop terminated", "error", err)
}

// dispatch resolves the peer credential, applies the policy, and
// routes the connection. An unresolvable credential is a denial, not
// an allowance: a peer the kernel cannot identify is treated exactly
// like a peer with the wrong uid.
func (s *Server) dispatch(raw *net.UnixConn) {
	conn := &Conn{
		raw:          raw,
		credential:   peercred.UnknownCredential(),
		readTimeout:  s.config.ReadTimeout,
		writeTimeout: s.config.WriteTimeout,
	}

	// This runs on the accept goroutine. A panic in the policy (or in
	// the Error callback below) must not take the loop down with it.
	defer func() {
		if recovered := recover(); recovered != nil {
			conn.Close()
			s.config.Handler.Error(fmt.Errorf("dispatch panic for peer pid %d: %v", conn.credential.PID, recovered))
		}
	}()

	credential, err := peercred.Resolve(raw)
	if err != nil {
		s.config.Handler.Error(fmt.Errorf("resolving peer credential: %w", err))
	} else {
		conn.credential = credential
	}

	if !s.config.Policy(conn.credential) {
		s.connections.Add(1)
		go func() {
			defer s.connections.Done()
			s.denyConnection(conn)
		}()
		return
	}

	s.connections.Add(1)
	go func() {
		defer s.connections.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				s.config.Handler.Error(fmt.Errorf("handler panic for peer pid %d: %v", conn.credential.PID, recovered))
				conn.Close()
			}
		}()
		// Ownership of conn transfers to the handler, including the
		// obligation to close it. The deferred recover above is the
		// safety net for the panic path only.
		s.config.Handler.ClientAccepted(conn)
	}()
}

// denyConnection fires the disallowed callback and force-closes the
// connection. The close is unconditional — whatever the handler does,
// no unauthorized connection survives this function.
func (s *Server) denyConnection(conn *Conn) {
	defer conn.Close()
	defer func() {
		if recovered := recover(); recovered != nil {
			s.config.Handler.Error(fmt.Errorf("disallowed-client handler panic: %v", recovered))
		}
	}()
	s.config.Handler.DisallowedClient(conn)
}
