package database

import (
	"fmt"
	"net/url"

	"github.com/kunnuv/niftyflow/internal/config"
)

// BuildConnString builds a PostgreSQL connection URL from config. The
// password is URL-encoded so credentials with reserved characters survive.
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}
