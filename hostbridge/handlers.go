// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hostbridge

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"cogentcore.org/configurator/layout"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"version":     s.version,
		"initialized": s.el.Initialized(),
		"connections": s.Conns(),
	})
}

// handleScreenshot returns a PNG data URI of the current view,
// sized by the optional width and height query parameters.
func (s *Server) handleScreenshot(c echo.Context) error {
	w, err := queryInt(c, "width")
	if err != nil {
		return err
	}
	h, err := queryInt(c, "height")
	if err != nil {
		return err
	}
	uri, err := s.el.Screenshot(w, h)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"image": uri})
}

func queryInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+": "+v)
	}
	return n, nil
}

func (s *Server) handleLabels(c echo.Context) error {
	return c.JSON(http.StatusOK, s.el.Labels().All())
}

func (s *Server) handleOverview(c echo.Context) error {
	return c.JSON(http.StatusOK, s.el.Overview())
}

func (s *Server) handleFeatures(c echo.Context) error {
	fp, lb := s.el.Features()
	return c.JSON(http.StatusOK, map[string]any{"footprint": fp, "labels": lb})
}

// handleLayout updates the element with the layout in the request body,
// which is JSON, YAML or TOML according to the content type.
func (s *Server) handleLayout(c echo.Context) error {
	format := layout.JSON
	ct := c.Request().Header.Get(echo.HeaderContentType)
	switch {
	case strings.Contains(ct, "yaml"):
		format = layout.YAML
	case strings.Contains(ct, "toml"):
		format = layout.TOML
	}
	recs, err := layout.Read(c.Request().Body, format)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid layout: "+err.Error())
	}
	res, err := s.el.Update(c.Request().Context(), recs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newResultPayload(res))
}
