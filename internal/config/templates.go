package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "serve", "responder":
		return serveTemplate, nil
	case "connect", "initiator":
		return connectTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const serveTemplate = `name = "Bob"
port = 8080
bind_host = ""
byte_order = "little"
log_level = "warn"
no_color = false
metrics_addr = ""
`

const connectTemplate = `name = "Alice"
host = "localhost"
port = 8080
byte_order = "little"
log_level = "warn"
no_color = false
metrics_addr = ""
`
