package server

import (
	"context"
	"crypto"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"netlobby/socketapi"
)

type Server struct {
	httpServer *http.Server
	config     *Config
	logger     *Logger
	stats      *Stats
	players    *PlayerRegistry
	matches    *MatchRegistry
}

func (s *Server) Stop() {
	if err := s.httpServer.Shutdown(context.Background()); err != nil {
		s.logger.Errorw("Couldn't shutdown http server", "error", err)
	}
}

func StartServer(sessionHolder *SessionHolder, pipeline *Pipeline, players *PlayerRegistry, matches *MatchRegistry, config *Config, stats *Stats, logger *Logger) *Server {

	s := &Server{
		config:  config,
		logger:  logger,
		stats:   stats,
		players: players,
		matches: matches,
	}

	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) }).Methods("GET")
	// Do NOT enable compression on the WebSocket route, it results in "http: response.Write on hijacked connection" errors.
	router.HandleFunc("/ws", NewSocketAcceptor(sessionHolder, config, pipeline, stats, logger)).Methods("GET")
	router.Handle("/metrics", stats.prometheusExporter).Methods("GET")
	router.HandleFunc("/v1/admin/authenticate", s.adminAuthenticate).Methods("POST")
	router.HandleFunc("/v1/status", s.requireAdmin(s.status)).Methods("GET")

	// Enable CORS on all requests.
	CORSHeaders := handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "User-Agent"})
	CORSOrigins := handlers.AllowedOrigins([]string{"*"})
	CORSMethods := handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "DELETE"})
	handlerWithCORS := handlers.CORS(CORSHeaders, CORSOrigins, CORSMethods)(router)

	s.httpServer = &http.Server{
		MaxHeaderBytes: 5120,
		Handler:        handlerWithCORS,
	}

	logger.Infof("Starting server for HTTP requests on port %d", config.Port)
	go func() {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", config.Port))
		if err != nil {
			logger.Fatalw("Error while creating listener for http server", "error", err)
		}
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("Error while serving http server", "error", err)
		}
	}()

	return s

}

func (s *Server) adminAuthenticate(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		http.Error(w, "Invalid request body", 400)
		return
	}

	if credentials.Username != s.config.AdminConfig.Username || credentials.Password != s.config.AdminConfig.Password {
		s.logger.Warnw("Admin authentication failed", "username", credentials.Username, "clientAddr", r.RemoteAddr)
		http.Error(w, "Invalid credentials", 401)
		return
	}

	token, exp := generateToken(credentials.Username, s.config)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":  token,
		"expiry": exp,
	})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(socketapi.Status{
		NumPlayers: s.players.Count(),
		MaxPlayers: s.config.LobbyConfig.MaxPlayers,
		NumMatches: s.matches.Count(),
		MaxMatches: s.config.LobbyConfig.MaxMatches,
		Players:    s.players.List(),
	})
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := parseBearerAuth([]byte(s.config.AuthConfig.JWTSecret), r.Header.Get("Authorization")); !ok {
			http.Error(w, "Auth token invalid", 401)
			return
		}
		next(w, r)
	}
}

func parseBearerAuth(hmacSecretByte []byte, auth string) (username string, ok bool) {
	if auth == "" {
		return
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return
	}
	return parseToken(hmacSecretByte, auth[len(prefix):])
}

func parseToken(hmacSecretByte []byte, tokenString string) (username string, ok bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if s, ok := token.Method.(*jwt.SigningMethodHMAC); !ok || s.Hash != crypto.SHA256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return hmacSecretByte, nil
	})
	if err != nil {
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return
	}
	username, ok = claims["usn"].(string)
	return
}

func generateToken(username string, config *Config) (string, int64) {
	exp := time.Now().UTC().Add(time.Duration(config.AuthConfig.TokenExpireTime) * time.Second).Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"usn": username,
		"exp": exp,
	})
	signedToken, _ := token.SignedString([]byte(config.AuthConfig.JWTSecret))
	return signedToken, exp
}
