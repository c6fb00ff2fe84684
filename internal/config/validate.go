package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinPortExclusive = 1000
	MaxPort          = 65535
)

var (
	ErrInvalidPort = errors.New("config: invalid port number")
	ErrInvalidName = errors.New("config: invalid display name")
	ErrInvalidHost = errors.New("config: invalid host")
)

// ValidatePort parses a port argument. Every character must be a digit and the
// value must lie in (1000, 65535].
func ValidatePort(raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: empty; must be a whole number within (%d, %d]", ErrInvalidPort, MinPortExclusive, MaxPort)
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf(
				"%w: %q contains non-numeric %q; must be a whole number within (%d, %d]",
				ErrInvalidPort, raw, c, MinPortExclusive, MaxPort,
			)
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is outside (%d, %d]", ErrInvalidPort, raw, MinPortExclusive, MaxPort)
	}
	if err := ValidatePortNumber(n); err != nil {
		return 0, err
	}
	return n, nil
}

// ValidatePortNumber rejects well-known ports and values that do not fit in 16 bits.
func ValidatePortNumber(n int) error {
	if n <= MinPortExclusive || n > MaxPort {
		return fmt.Errorf("%w: %d is outside (%d, %d]", ErrInvalidPort, n, MinPortExclusive, MaxPort)
	}
	return nil
}

func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	return nil
}

func ValidateHost(host string) error {
	host = strings.TrimSpace(host)
	if host == "" {
		return fmt.Errorf("%w: empty", ErrInvalidHost)
	}
	if strings.ContainsAny(host, " \t/") {
		return fmt.Errorf("%w: %q", ErrInvalidHost, host)
	}
	return nil
}
