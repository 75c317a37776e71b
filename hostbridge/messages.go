// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hostbridge

import (
	"encoding/json"

	"cogentcore.org/configurator/layout"
)

// WebSocket message types.
const (
	// client -> server
	MsgUpdate              = "update"
	MsgApplyCamera         = "applyCamera"
	MsgToggleFootprint     = "toggleFootprint"
	MsgToggleLabels        = "toggleLabels"
	MsgClickLabel          = "clickLabel"
	MsgSelectConfiguration = "selectConfiguration"
	MsgPing                = "ping"

	// server -> client
	MsgConnected             = "connected"
	MsgConfigurationSelected = "configurationSelected"
	MsgLoadStart             = "loadStart"
	MsgLoadEnd               = "loadEnd"
	MsgProgress              = "progress"
	MsgLabels                = "labels"
	MsgError                 = "error"
	MsgPong                  = "pong"
	MsgAck                   = "ack"
)

// Message is a WebSocket message in either direction. The id of a
// request is copied onto its ack or error reply.
type Message struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// UpdatePayload is the payload of an update message.
type UpdatePayload struct {
	Records []layout.Record `json:"records"`
}

// CameraPayload is the payload of an applyCamera message.
type CameraPayload struct {
	Snapshot   json.RawMessage `json:"snapshot"`
	SubModelID string          `json:"subModelId,omitempty"`
}

// IDPayload is the payload of messages about one label or configuration.
type IDPayload struct {
	ID string `json:"id"`
}

// ConnectedPayload is the payload of the connected message.
type ConnectedPayload struct {
	ConnectionID string `json:"connectionId"`
}

// LoadPayload is the payload of the loadStart and loadEnd messages.
type LoadPayload struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// ProgressPayload is the payload of a progress message.
type ProgressPayload struct {
	Settled int `json:"settled"`
	Total   int `json:"total"`
}

// ErrorPayload is the payload of an error message.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ResultPayload is the outcome of a reconciliation pass.
type ResultPayload struct {
	Loaded   []string          `json:"loaded,omitempty"`
	Updated  []string          `json:"updated,omitempty"`
	Unloaded []string          `json:"unloaded,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

func newResultPayload(res *layout.Result) ResultPayload {
	rp := ResultPayload{Loaded: res.Loaded, Updated: res.Updated, Unloaded: res.Unloaded}
	if len(res.Errors) > 0 {
		rp.Errors = make(map[string]string, len(res.Errors))
		for id, err := range res.Errors {
			rp.Errors[id] = err.Error()
		}
	}
	return rp
}
