package config

import (
	"github.com/dmitrijs2005/postplanner/internal/configx"
	"github.com/dmitrijs2005/postplanner/internal/timex"
)

// FileConfig is the on-disk shape of the client configuration:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_path": "/home/me/.config/postplanner/postplanner.db",
//	  "log_level": "debug",
//	  "request_timeout": "10s"
//	}
type FileConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	DatabasePath       string         `json:"database_path" yaml:"database_path"`
	LogLevel           string         `json:"log_level" yaml:"log_level"`
	RequestTimeout     timex.Duration `json:"request_timeout" yaml:"request_timeout"`
}

func parseFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	fc := &FileConfig{}
	if err := configx.DecodeFile(path, fc); err != nil {
		return err
	}

	if fc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = fc.ServerEndpointAddr
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	return nil
}
