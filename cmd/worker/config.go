package main

import (
	"log"

	"elog-backend/pkg/container"
)

// Config holds all configuration for the worker
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// loadConfig pulls the worker settings out of the shared application config
func loadConfig(c *container.Container) *Config {
	cfg := &Config{
		RedisAddr:     c.Config.Redis.Host,
		RedisPassword: c.Config.Redis.Password,
		RedisDB:       c.Config.Redis.DB,
	}

	log.Printf("[Config] Redis: %s (db %d)", cfg.RedisAddr, cfg.RedisDB)

	return cfg
}
