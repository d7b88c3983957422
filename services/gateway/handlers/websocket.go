// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/strataview/strataview/services/gateway/scenario"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 32 * 1024,
}

// DemoWebSocket upgrades the connection and attaches it to the hub.
// The channel is broadcast-only; inbound frames are read and discarded
// to detect the close.
func DemoWebSocket(hub *scenario.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}

		client := hub.Register(ws)
		defer hub.Unregister(client)

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				slog.Info("websocket client disconnected", "error", err.Error())
				return
			}
		}
	}
}
