package chainutils

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// IPRegex matches an IPv4:port fragment anywhere in an address string.
var IPRegex = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}:\d+`)

// ExtractAddress returns the first valid "ip:port" contained in s.
// Octets above 255 and ports outside 1-65535 are rejected.
func ExtractAddress(s string) (string, bool) {
	for _, m := range IPRegex.FindAllString(s, -1) {
		host, port, err := SplitAddress(m)
		if err == nil {
			return net.JoinHostPort(host, strconv.Itoa(port)), true
		}
	}
	return "", false
}

// SplitAddress validates and splits "ip:port".
func SplitAddress(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err != nil {
		return "", 0, fmt.Errorf("split %q: %w", addr, err)
	}

	ip := net.ParseIP(host)
	if ip == nil || ip.To4() == nil {
		return "", 0, fmt.Errorf("not an ipv4 address: %q", host)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	if port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("port out of range: %d", port)
	}

	return ip.To4().String(), port, nil
}
