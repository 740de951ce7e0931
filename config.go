package main

import (
	"strconv"

	"github.com/horgh/config"
	"github.com/pkg/errors"
)

// Config holds the server's configuration. Per spec.md §6 only ListenPort
// and Password are mandatory; the rest are ambient presentation/behavior
// knobs this server always carries (SPEC_FULL.md §3.1), with sensible
// defaults when a key is absent from the config file.
type Config struct {
	ListenHost string
	ListenPort int
	Password   string

	ServerName  string
	ServerInfo  string
	Version     string
	CreatedDate string
	MOTD        string

	MaxNickLength int
}

func defaultConfig() Config {
	return Config{
		ListenHost:    "0.0.0.0",
		ServerName:    "irc.42.fr",
		Version:       "ft_irc-0.1",
		MaxNickLength: 9,
	}
}

// loadConfig reads a "key = value" config file (the same flat format and
// parser the teacher uses) and validates it. ListenPort and Password are
// required per spec.md §6; every other key falls back to defaultConfig.
func loadConfig(path string) (Config, error) {
	c := defaultConfig()

	raw, err := config.ReadStringMap(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "unable to read config")
	}

	portStr, ok := raw["listen-port"]
	if !ok || portStr == "" {
		return Config{}, errors.New("missing required key: listen-port")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return Config{}, errors.Errorf("listen-port must be in 1..65535: %s", portStr)
	}
	c.ListenPort = port

	password, ok := raw["server-password"]
	if !ok || password == "" {
		return Config{}, errors.New("missing required key: server-password")
	}
	c.Password = password

	if v, ok := raw["listen-host"]; ok && v != "" {
		c.ListenHost = v
	}
	if v, ok := raw["server-name"]; ok && v != "" {
		c.ServerName = v
	}
	if v, ok := raw["server-info"]; ok {
		c.ServerInfo = v
	}
	if v, ok := raw["version"]; ok && v != "" {
		c.Version = v
	}
	if v, ok := raw["created-date"]; ok {
		c.CreatedDate = v
	}
	if v, ok := raw["motd"]; ok {
		c.MOTD = v
	}
	if v, ok := raw["max-nick-length"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "max-nick-length is not valid")
		}
		c.MaxNickLength = n
	}

	return c, nil
}
