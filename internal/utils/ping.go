package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

const redisPingTimeout = 1500 * time.Millisecond

// defaultPorts by URL scheme, used when the URL names none
var defaultPorts = map[string]string{
	"http":       "80",
	"https":      "443",
	"redis":      "6379",
	"rediss":     "6379",
	"sqlserver":  "1433",
	"mysql":      "3306",
	"postgres":   "5432",
	"postgresql": "5432",
}

// PingService checks that something accepts TCP connections at the host of serviceURL
func PingService(ctx context.Context, serviceURL string) error {
	parsed, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("invalid URL %q: missing host", serviceURL)
	}

	port := parsed.Port()
	if port == "" {
		var ok bool
		if port, ok = defaultPorts[parsed.Scheme]; !ok {
			return fmt.Errorf("invalid URL %q: no port and unknown scheme %q", serviceURL, parsed.Scheme)
		}
	}

	address := net.JoinHostPort(host, port)
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return conn.Close()
}

// PingRedis checks that the Redis server behind the food cache is reachable
func PingRedis(ctx context.Context, redisURL string) error {
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	return PingService(ctx, redisURL)
}
