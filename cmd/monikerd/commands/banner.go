package commands

import (
	"fmt"
	"strings"

	"github.com/openmoniker/openmoniker/config"
	"github.com/openmoniker/openmoniker/logger"
	"github.com/openmoniker/openmoniker/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(verbosity int, cfg *config.Config, nodes int) {
	cyan := "\033[36m"
	green := "\033[32m"
	yellow := "\033[33m"
	blue := "\033[34m"
	bold := "\033[1m"
	reset := "\033[0m"

	versionInfo := version.Get()

	fmt.Printf("\n%s%s", cyan, bold)
	fmt.Printf("   ╔═══════════════════════════════════════════════╗\n")
	fmt.Printf("   ║                                               ║\n")
	fmt.Printf("   ║        moniker://  resolution service         ║\n")
	fmt.Printf("   ║                                               ║\n")
	fmt.Printf("   ╚═══════════════════════════════════════════════╝%s\n\n", reset)

	fmt.Printf("%s%s┌─ monikerd ──────────────────────────────────────┐%s\n", green, bold, reset)
	fmt.Printf("%s│%s Version:  %s (commit %s)\n", green, reset, versionInfo.Version, versionInfo.Short())
	fmt.Printf("%s│%s Built:    %s\n", green, reset, versionInfo.BuildTime)
	fmt.Printf("%s│%s Address:  %s:%d\n", green, reset, cfg.Server.Bind, cfg.Server.Port)
	fmt.Printf("%s│%s Catalog:  %s (%d nodes)\n", green, reset, strings.Join(cfg.Catalog.Paths, ", "), nodes)
	fmt.Printf("%s│%s Reload:   every %ds\n", green, reset, cfg.Catalog.ReloadIntervalSeconds)
	fmt.Printf("%s│%s Logs:     %s\n", green, reset, logger.LevelName(verbosity))
	fmt.Printf("%s└─────────────────────────────────────────────────┘%s\n", green, reset)

	fmt.Printf("\n%s%s✨ Browse the catalog at /ui%s\n", yellow, bold, reset)
	fmt.Printf("%s💡 Press Ctrl+C to stop%s\n\n", blue, reset)
}
