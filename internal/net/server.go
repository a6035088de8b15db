package net

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// StatusFunc reports server status for /admin/status. It runs on an HTTP
// goroutine and must only read values safe for concurrent access.
type StatusFunc func() any

// ServerOptions configures the gateway.
type ServerOptions struct {
	BindAddress string
	Session     SessionOptions
	AdminUser   string
	AdminHash   string // bcrypt; empty disables /admin
}

// Server accepts websocket connections and creates Sessions.
// New and dead sessions are communicated to the game loop via channels.
type Server struct {
	opts     ServerOptions
	engine   *gin.Engine
	http     *http.Server
	listener net.Listener
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	newConns chan *Session
	deadCh   chan uint64 // session IDs of dead sessions
	status   StatusFunc
	log      *zap.Logger
}

func NewServer(opts ServerOptions, status StatusFunc, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		opts:     opts,
		engine:   gin.New(),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		newConns: make(chan *Session, 64),
		deadCh:   make(chan uint64, 64),
		status:   status,
		log:      log,
	}
	s.engine.Use(gin.Recovery())
	s.engine.GET("/ws", s.handleWebsocket)
	if opts.AdminHash != "" {
		admin := s.engine.Group("/admin", s.basicAuth)
		admin.GET("/status", s.handleStatus)
	}
	s.http = &http.Server{Handler: s.engine}
	return s
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Listen binds the address; Serve then runs the HTTP server.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.opts.BindAddress)
	if err != nil {
		return err
	}
	s.listener = ln
	return nil
}

// Serve runs until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Serve() error {
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	id := s.nextID.Add(1)
	sess := NewSession(conn, id, c.ClientIP(), s.opts.Session, s.log)
	sess.Start()

	s.log.Info("client connected", zap.Uint64("session", id), zap.String("ip", sess.IP))

	select {
	case s.newConns <- sess:
	default:
		s.log.Warn("connection queue full, rejecting client")
		sess.Close()
	}
}

func (s *Server) basicAuth(c *gin.Context) {
	user, pass, ok := c.Request.BasicAuth()
	if !ok || user != s.opts.AdminUser ||
		bcrypt.CompareHashAndPassword([]byte(s.opts.AdminHash), []byte(pass)) != nil {
		c.Header("WWW-Authenticate", `Basic realm="admin"`)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Next()
}

func (s *Server) handleStatus(c *gin.Context) {
	if s.status == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, s.status())
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// NotifyDead reports a dead session ID.
func (s *Server) NotifyDead(sessionID uint64) {
	select {
	case s.deadCh <- sessionID:
	default:
	}
}

// DeadSessions returns the channel of dead session IDs.
func (s *Server) DeadSessions() <-chan uint64 {
	return s.deadCh
}

// Shutdown stops accepting connections and waits for handlers to return.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
