package server

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"cirello.io/goherokuname"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"netlobby/socketapi"
)

func NewSocketAcceptor(sessionHolder *SessionHolder, config *Config, pipeline *Pipeline, stats *Stats, logger *Logger) func(http.ResponseWriter, *http.Request) {
	upgrader := &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {

		//Connections which are made for this endpoint, will be upgraded to websocket connection if token is valid
		if config.AuthConfig.Token != "" {
			token := r.URL.Query().Get("token")
			if token != config.AuthConfig.Token {
				http.Error(w, "Invalid token", 401)
				return
			}
		}

		clientAddr := ""
		clientIP := ""
		clientPort := ""
		if ips := r.Header.Get("x-forwarded-for"); len(ips) > 0 {
			clientAddr = strings.Split(ips, ",")[0]
		} else {
			clientAddr = r.RemoteAddr
		}

		clientAddr = strings.TrimSpace(clientAddr)
		if host, port, err := net.SplitHostPort(clientAddr); err == nil {
			clientIP = host
			clientPort = port
		} else if addrErr, ok := err.(*net.AddrError); ok && addrErr.Err == "missing port in address" {
			clientIP = clientAddr
		} else {
			logger.Warnw("Could not extract client address from request.", "error", errors.WithStack(err))
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Errorw("Websocket upgrade was failed", "error", errors.WithStack(err))
			return
		}

		s := NewSession(clientIP, clientPort, conn, config, sessionHolder, stats, logger)

		// Every new connection gets a generated display name, clients
		// rename themselves with player-update.
		name := goherokuname.HaikunateCustom("-", 4, "DfWx9873214560jzrl")

		player, err := pipeline.players.Add(s.PlayerID(), name)
		if err != nil {
			// Capacity or name bounds, the connection is rejected before any
			// domain object exists.
			logger.Warnw("Connection was rejected", "sessionID", s.ID().String(), "error", err.Error())
			if envelope, mErr := socketapi.NewEnvelope(socketapi.EventError, "ERROR: "+err.Error()); mErr == nil {
				// The outgoing pump only runs while the session is consumed,
				// write the rejection on the raw connection instead.
				if payload, mErr := json.Marshal(envelope); mErr == nil {
					conn.SetWriteDeadline(time.Now().Add(time.Duration(config.SocketConfig.WriteWaitTime) * time.Millisecond))
					_ = conn.WriteMessage(websocket.TextMessage, payload)
				}
			}
			s.Close()
			return
		}

		logger.Infow("New socket connection was established", "id", s.ID().String())

		sessionHolder.add(s)
		pipeline.Register(s, player)

		//Incoming requests will be handled in sessions Consume method and will be passed to pipeline to run logic part of the each request
		s.Consume(pipeline.handleSocketRequests)

		//Consume returns when the connection is gone, run the leave cleanup
		pipeline.handleDisconnect(s)

	}
}
