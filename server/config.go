package server

import (
	"os"

	"github.com/jinzhu/configor"

	"netlobby/socketapi"
)

type Config struct {
	SocketConfig struct {
		PingPeriodTime                int `default:"8000"`
		PongWaitTime                  int `default:"10000"`
		WriteWaitTime                 int `default:"5000"`
		ReceivedMessageDecrementCount int `default:"20"`
		OutgoingQueueSize             int `default:"64"`
	}
	LobbyConfig struct {
		MaxPlayers             int `default:"100"`
		MaxMatches             int `default:"50"`
		MaxPlayersPerMatch     int `default:"4"`
		ChatMinLength          int `default:"1"`
		ChatMaxLength          int `default:"256"`
		MatchNameMinLength     int `default:"3"`
		MatchNameMaxLength     int `default:"32"`
		MatchPasswordMinLength int `default:"4"`
		MatchPasswordMaxLength int `default:"32"`
		PlayerNameMinLength    int `default:"3"`
		PlayerNameMaxLength    int `default:"32"`
	}
	AuthConfig struct {
		//Shared connection token, empty means the server accepts everyone
		Token           string `default:""`
		JWTSecret       string `default:"asdasdqweqasdqwwe"`
		TokenExpireTime int    `default:"86400"`
	}
	AdminConfig struct {
		Username string `default:"admin"`
		Password string `default:"admin"`
	}
	Port               int   `default:"9000"`
	MaxRequestBodySize int64 `default:"4096"`
	DevelopmentEnabled bool  `default:"false"`
}

// NewConfig loads configuration from the given yml files over the struct
// defaults. Missing files are skipped so the binary runs with defaults out
// of the box.
func NewConfig(files ...string) (*Config, error) {
	config := &Config{}

	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}

	if err := configor.Load(config, existing...); err != nil {
		return nil, err
	}

	return config, nil
}

// Settings is the subset of configuration clients receive in the init event.
func (c *Config) Settings() socketapi.Settings {
	return socketapi.Settings{
		ChatMinLength:          c.LobbyConfig.ChatMinLength,
		ChatMaxLength:          c.LobbyConfig.ChatMaxLength,
		MatchNameMinLength:     c.LobbyConfig.MatchNameMinLength,
		MatchNameMaxLength:     c.LobbyConfig.MatchNameMaxLength,
		MatchPasswordMinLength: c.LobbyConfig.MatchPasswordMinLength,
		MatchPasswordMaxLength: c.LobbyConfig.MatchPasswordMaxLength,
		PlayerNameMinLength:    c.LobbyConfig.PlayerNameMinLength,
		PlayerNameMaxLength:    c.LobbyConfig.PlayerNameMaxLength,
		MaxPlayersPerMatch:     c.LobbyConfig.MaxPlayersPerMatch,
	}
}
