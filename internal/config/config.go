package config

import (
	"strings"

	"pianoworks/shantyman/pkg/config"
)

// Config carries the relay's runtime settings.
type Config struct {
	// Port is the TCP port the HTTP/WebSocket listener binds.
	Port string

	// Production switches client identity derivation from random ids to
	// salted address hashes.
	Production bool

	// Salt1 and Salt2 feed the identity hash. Empty salts are permitted;
	// identities are then derived from the address alone.
	Salt1 string
	Salt2 string

	// MOTD is sent in the hello reply.
	MOTD string

	// SendQueueSize bounds each connection's outbound queue. A client that
	// lets its queue fill is disconnected.
	SendQueueSize int
}

// Load reads the relay configuration from the environment.
func Load() Config {
	env := strings.ToLower(config.GetEnv("NODE_ENV", "development"))

	return Config{
		Port:          config.GetEnv("WS_PORT", "8080"),
		Production:    strings.Contains(env, "prod"),
		Salt1:         config.GetEnv("SALT1", ""),
		Salt2:         config.GetEnv("SALT2", ""),
		MOTD:          config.GetEnv("MOTD", "Welcome to Multiplayer Piano!"),
		SendQueueSize: config.GetEnvInt("WS_SEND_QUEUE_SIZE", 256),
	}
}
