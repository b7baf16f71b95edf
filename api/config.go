// Package api provides an HTTP API server for driving editor conversations.
package api

import "net/http"

const defaultBodyLimit = 4 * 1024 * 1024

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// BodyLimit caps request bodies in bytes. Selections are posted whole,
	// so this bounds the largest file an editor can send. Defaults to 4 MiB.
	BodyLimit int

	// MCPHandler is mounted at /mcp when set
	MCPHandler http.Handler
}

func (c Config) bodyLimit() int {
	if c.BodyLimit <= 0 {
		return defaultBodyLimit
	}
	return c.BodyLimit
}
