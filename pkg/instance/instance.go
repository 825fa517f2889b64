package instance

import "os"

const defaultID = "worker-0"

// GetID identifies this process among replicas of the same worker. It reads
// WORKER_ID and falls back to the hostname.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return defaultID
}
