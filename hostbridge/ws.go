// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hostbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"cogentcore.org/configurator/configurator"
)

// handleWebSocket upgrades the connection and serves its messages
// until it is closed. Messages of one connection are handled in order.
func (s *Server) handleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	cn := &conn{id: uuid.NewString(), ws: ws}
	defer func() {
		s.mu.Lock()
		delete(s.conns, cn.id)
		s.mu.Unlock()
		ws.Close()
		slog.Debug("hostbridge: client disconnected", "conn", cn.id)
	}()

	hello, _ := newMessage(MsgConnected, "", ConnectedPayload{ConnectionID: cn.id})
	if err := cn.send(hello); err != nil {
		return nil
	}
	s.mu.Lock()
	s.conns[cn.id] = cn
	s.mu.Unlock()
	slog.Debug("hostbridge: client connected", "conn", cn.id)

	ctx := c.Request().Context()
	for {
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("hostbridge: connection error", "conn", cn.id, "error", err)
			}
			return nil
		}
		reply := s.dispatch(ctx, msg)
		if err := cn.send(reply); err != nil {
			slog.Debug("hostbridge: reply failed", "conn", cn.id, "error", err)
			return nil
		}
	}
}

// dispatch handles one client message and returns the reply.
func (s *Server) dispatch(ctx context.Context, msg Message) Message {
	result, err := s.handle(ctx, msg)
	if err != nil {
		code := "FAILED"
		switch {
		case errors.Is(err, errUnknownType):
			code = "INVALID_TYPE"
		case errors.Is(err, configurator.ErrNotInitialized):
			code = "NOT_INITIALIZED"
		}
		reply, _ := newMessage(MsgError, msg.ID, ErrorPayload{Message: err.Error(), Code: code})
		return reply
	}
	typ := MsgAck
	if msg.Type == MsgPing {
		typ = MsgPong
	}
	reply, err := newMessage(typ, msg.ID, result)
	if err != nil {
		reply, _ = newMessage(MsgError, msg.ID, ErrorPayload{Message: err.Error()})
	}
	return reply
}

var errUnknownType = errors.New("hostbridge: unknown message type")

func decode[T any](msg Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("hostbridge: invalid %s payload: %w", msg.Type, err)
	}
	return v, nil
}

// handle performs the action of the message and returns the ack payload.
func (s *Server) handle(ctx context.Context, msg Message) (any, error) {
	switch msg.Type {
	case MsgPing:
		return nil, nil
	case MsgUpdate:
		p, err := decode[UpdatePayload](msg)
		if err != nil {
			return nil, err
		}
		res, err := s.el.Update(ctx, p.Records)
		if err != nil {
			return nil, err
		}
		return newResultPayload(res), nil
	case MsgApplyCamera:
		p, err := decode[CameraPayload](msg)
		if err != nil {
			return nil, err
		}
		return nil, s.el.ApplyCamera(ctx, p.Snapshot, p.SubModelID)
	case MsgToggleFootprint:
		return nil, s.el.ToggleFootprint()
	case MsgToggleLabels:
		return nil, s.el.ToggleLabels()
	case MsgClickLabel:
		p, err := decode[IDPayload](msg)
		if err != nil {
			return nil, err
		}
		return nil, s.el.ClickLabel(p.ID)
	case MsgSelectConfiguration:
		p, err := decode[IDPayload](msg)
		if err != nil {
			return nil, err
		}
		s.el.SelectConfiguration(p.ID)
		return s.el.Overview(), nil
	}
	return nil, fmt.Errorf("%w %q", errUnknownType, msg.Type)
}
