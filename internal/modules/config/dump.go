package config

import (
	"gopkg.in/yaml.v2"
)

const masked = "***"

// Dump эффективный конфиг в YAML, секреты замаскированы.
func (c *Config) Dump() ([]byte, error) {
	cp := *c
	mask(&cp.Capital.APIKey)
	mask(&cp.Capital.Password)
	mask(&cp.AI.APIKey)
	mask(&cp.Mail.APIKey)
	mask(&cp.Mail.SecretKey)
	mask(&cp.Telegram.Token)
	mask(&cp.Journal.DSN)
	return yaml.Marshal(cp)
}

func mask(s *string) {
	if *s != "" {
		*s = masked
	}
}
