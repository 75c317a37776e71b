// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hostbridge connects a configurator host to an [configurator.Element]
// over HTTP and a WebSocket. The host sends layout updates, camera snapshots
// and user actions, and receives load progress, label and selection events.
package hostbridge

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"cogentcore.org/configurator/configurator"
)

// Server is the host bridge server of one element.
type Server struct {
	el       *configurator.Element
	version  string
	echo     *echo.Echo
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*conn
}

// conn is one WebSocket connection.
type conn struct {
	id string
	ws *websocket.Conn

	// mu serializes writes, which the connection does not support concurrently.
	mu sync.Mutex
}

func (c *conn) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(msg)
}

// New returns a new server for the element. Selection and label
// changes of the element are broadcast to all connections.
func New(el *configurator.Element, version string) *Server {
	s := &Server{
		el:      el,
		version: version,
		echo:    echo.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: map[string]*conn{},
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.HTTPErrorHandler = s.errorHandler
	s.routes()
	el.OnConfigurationSelected(func(id string) {
		s.Broadcast(MsgConfigurationSelected, IDPayload{ID: id})
	})
	el.Labels().OnChange(func() {
		s.Broadcast(MsgLabels, el.Labels().All())
	})
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/ws", s.handleWebSocket)
	api := s.echo.Group("/api")
	api.GET("/screenshot", s.handleScreenshot)
	api.GET("/labels", s.handleLabels)
	api.GET("/overview", s.handleOverview)
	api.GET("/features", s.handleFeatures)
	api.POST("/layout", s.handleLayout)
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on the given address until [Server.Shutdown].
func (s *Server) Start(addr string) error {
	slog.Info("hostbridge: serving", "addr", addr)
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown closes all connections and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, c := range s.conns {
		c.ws.Close()
	}
	s.mu.Unlock()
	return s.echo.Shutdown(ctx)
}

// Callbacks returns load callbacks that broadcast the load progress,
// to pass to [configurator.Element.Initialize].
func (s *Server) Callbacks() configurator.Callbacks {
	return configurator.Callbacks{
		OnLoadStart: func(id string) {
			s.Broadcast(MsgLoadStart, LoadPayload{ID: id})
		},
		OnLoadEnd: func(id string, err error) {
			lp := LoadPayload{ID: id}
			if err != nil {
				lp.Error = err.Error()
			}
			s.Broadcast(MsgLoadEnd, lp)
		},
		OnProgress: func(settled, total int) {
			s.Broadcast(MsgProgress, ProgressPayload{Settled: settled, Total: total})
		},
	}
}

// Conns returns the number of open WebSocket connections.
func (s *Server) Conns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Broadcast sends a message with the given type and payload
// to all connections.
func (s *Server) Broadcast(typ string, payload any) {
	msg, err := newMessage(typ, "", payload)
	if err != nil {
		slog.Error("hostbridge: encoding broadcast", "type", typ, "error", err)
		return
	}
	s.mu.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		if err := c.send(msg); err != nil {
			slog.Debug("hostbridge: broadcast failed", "conn", c.id, "error", err)
		}
	}
}

func newMessage(typ, id string, payload any) (Message, error) {
	msg := Message{Type: typ, ID: id, Timestamp: time.Now().UnixMilli()}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return msg, err
		}
		msg.Payload = b
	}
	return msg, nil
}

// errorHandler maps element errors onto HTTP status codes.
func (s *Server) errorHandler(err error, c echo.Context) {
	if errors.Is(err, configurator.ErrNotInitialized) {
		err = echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	s.echo.DefaultHTTPErrorHandler(err, c)
}
