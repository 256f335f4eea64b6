package app

import (
	"fmt"
	"strings"

	"classline/pkg/config"
	"classline/pkg/session"
)

func validateConfig(cfg *config.Config, sess session.Session, convID string) error {
	if cfg == nil {
		return fmt.Errorf("config missing")
	}
	base := strings.TrimSpace(cfg.Backend.BaseURL)
	if base == "" {
		return fmt.Errorf("backend base_url missing")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return fmt.Errorf("backend base_url must be http(s): %s", base)
	}
	if cfg.Cache.DBPath == "" {
		return fmt.Errorf("cache db_path missing")
	}
	if !sess.Valid() {
		return fmt.Errorf("session incomplete: user id, role, and auth code required")
	}
	if convID == "" {
		return fmt.Errorf("conversation id missing")
	}
	return nil
}
