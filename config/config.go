// Package config loads the SMTP configuration and the message definition.
// Both are TOML files by default; a .yaml/.yml extension selects the YAML
// codec instead, with identical keys.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/jtuomist/massmail/types"
)

func decode(path string, b []byte, v interface{}) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, v)
	default:
		return toml.Unmarshal(b, v)
	}
}

// LoadSMTP reads the SMTP configuration from path. Missing file, undecodable
// content, or absent required keys all yield a ConfigError.
func LoadSMTP(path string) (*types.SMTPConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.ConfigError{Path: path, Err: err}
	}
	var cfg types.SMTPConfig
	if err := decode(path, b, &cfg); err != nil {
		return nil, &types.ConfigError{Path: path, Err: err}
	}
	var missing []string
	if cfg.Server == "" {
		missing = append(missing, "smtp_server")
	}
	if cfg.Port == 0 {
		missing = append(missing, "smtp_port")
	}
	if cfg.Username == "" {
		missing = append(missing, "username")
	}
	if cfg.Credential() == "" {
		missing = append(missing, "password (or app_password)")
	}
	if len(missing) > 0 {
		return nil, &types.ConfigError{
			Path: path,
			Err:  fmt.Errorf("missing required keys: %s", strings.Join(missing, ", ")),
		}
	}
	return &cfg, nil
}

// LoadMessage reads the message definition from path. The subject, from and
// body keys are mandatory; reply_to and the filters section are optional.
func LoadMessage(path string) (*types.Message, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.FormatError{Path: path, Err: err}
	}
	var msg types.Message
	if err := decode(path, b, &msg); err != nil {
		return nil, &types.FormatError{Path: path, Err: err}
	}
	var missing []string
	if msg.Subject == "" {
		missing = append(missing, "subject")
	}
	if msg.From == "" {
		missing = append(missing, "from")
	}
	if msg.Body == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return nil, &types.FormatError{
			Path: path,
			Err:  errors.New("missing required keys: " + strings.Join(missing, ", ")),
		}
	}
	return &msg, nil
}
