// classline is a headless conversation client: it opens one
// conversation against the school-management backend, keeps it in sync
// by polling, and tails new messages to stdout. Intended for operating
// and debugging the messaging engine without a UI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"classline/internal/app"
	"classline/pkg/banner"
	"classline/pkg/config"
	"classline/pkg/logger"
	"classline/pkg/models"
	"classline/pkg/session"
	"classline/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var version = "dev"

func main() {
	_ = godotenv.Load(".env")
	flags := config.ParseCommandFlags()

	cfgPath := config.ResolveConfigPath(flags.Config, flags.Set["config"])
	cfg, _, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// flags win over config/env when explicitly provided
	if flags.Set["backend"] {
		cfg.Backend.BaseURL = flags.Backend
	}
	if flags.Set["db"] || cfg.Cache.DBPath == "" {
		cfg.Cache.DBPath = flags.DB
	}
	convID := flags.Conversation
	if convID == "" {
		convID = os.Getenv("CLASSLINE_CONVERSATION")
	}

	logger.InitWithLevel(cfg.Logging.Level)

	sess := session.Session{
		UserID:   os.Getenv("CLASSLINE_USER_ID"),
		Role:     models.Role(os.Getenv("CLASSLINE_USER_ROLE")),
		AuthCode: os.Getenv("CLASSLINE_AUTH_CODE"),
	}

	a, err := app.New(cfg, sess, convID)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	banner.Print(cfg, convID, version)

	// Tail: print every message the store has not shown yet, oldest of
	// the unseen first.
	seen := make(map[string]bool)
	eng := a.Engine()
	unsub := eng.Store().Subscribe(func() {
		msgs := eng.Messages()
		for i := len(msgs) - 1; i >= 0; i-- {
			m := msgs[i]
			if seen[m.Key()] {
				continue
			}
			seen[m.Key()] = true
			marker := " "
			if m.Pending {
				marker = "~"
			}
			fmt.Printf("%s[%s] %s (%s): %s\n", marker, m.CreatedAt.Format("15:04:05"), m.SenderID, m.SenderRole, m.Content)
		}
	})
	defer unsub()

	ctx, cancel := shutdown.Context(context.Background())
	defer cancel()
	if err := a.Run(ctx, flags.Metrics); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}
