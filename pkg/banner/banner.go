package banner

import (
	"fmt"

	"classline/pkg/config"
)

const banner = `
 ██████╗██╗      █████╗ ███████╗███████╗██╗     ██╗███╗   ██╗███████╗
██╔════╝██║     ██╔══██╗██╔════╝██╔════╝██║     ██║████╗  ██║██╔════╝
██║     ██║     ███████║███████╗███████╗██║     ██║██╔██╗ ██║█████╗
██║     ██║     ██╔══██║╚════██║╚════██║██║     ██║██║╚██╗██║██╔══╝
╚██████╗███████╗██║  ██║███████║███████║███████╗██║██║ ╚████║███████╗
 ╚═════╝╚══════╝╚═╝  ╚═╝╚══════╝╚══════╝╚══════╝╚═╝╚═╝  ╚═══╝╚══════╝
`

// Print shows the startup banner with the effective runtime settings.
func Print(cfg *config.Config, convID, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Backend:        %s\n", cfg.Backend.BaseURL)
	fmt.Printf("Conversation:   %s\n", convID)
	fmt.Printf("Cache:          %s\n", cfg.Cache.DBPath)
	fmt.Printf("Poll interval:  %s (refresh floor %s)\n", cfg.PollInterval(), cfg.RefreshMinInterval())
	fmt.Printf("Page size:      %d\n", cfg.PageSize())
	if cfg.Retention.Enabled {
		fmt.Printf("Retention:      %s (cron %q)\n", cfg.RetentionPeriod(), cfg.Retention.Cron)
	}
	if version != "" {
		fmt.Printf("Version:        %s\n", version)
	}
	fmt.Println()
}
