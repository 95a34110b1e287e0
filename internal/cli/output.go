package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sohaniboston/Smart-Recon/internal/application/recon"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/exceptions"
)

// PrintHeader prints the application header
func PrintHeader(internalPath, externalPath string) {
	fmt.Println("smartrecon: transaction reconciliation")
	fmt.Printf("Internal: %s | External: %s\n\n", internalPath, externalPath)
}

// PrintSessionSummary prints the reconciliation result summary
func PrintSessionSummary(session *recon.Session) {
	stats := session.Stats

	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Run %s completed in %s\n", session.ID, session.Duration().Round(time.Millisecond))
	fmt.Printf("Records: internal=%d external=%d\n", stats.TotalInternal, stats.TotalExternal)
	fmt.Printf("Matches: %d (exact=%d fuzzy=%d) | Potential: %d\n",
		stats.TotalMatches, stats.ExactMatches, stats.FuzzyMatches, stats.PotentialMatches)
	fmt.Printf("Match rates: internal=%.1f%% external=%.1f%%\n",
		stats.InternalMatchRate, stats.ExternalMatchRate)

	if len(stats.StrategyCounts) > 0 {
		fmt.Println("\nBy strategy:")
		for strategy, count := range stats.StrategyCounts {
			fmt.Printf("  %-28s %d\n", strategy, count)
		}
	}

	if session.Exceptions != nil && session.Exceptions.Total() > 0 {
		printExceptionSummary(session.Exceptions)
	}
}

func printExceptionSummary(report *exceptions.Report) {
	fmt.Printf("\nExceptions: %d\n", report.Total())
	for _, category := range exceptions.Categories() {
		count := report.CategoryCounts[category]
		if count == 0 {
			continue
		}
		fmt.Printf("  %-24s %4d (%.1f%%)\n",
			category, count, report.CategoryPercents[category])
	}

	if len(report.Suggestions) > 0 {
		fmt.Println("\nSuggestions:")
		for _, s := range report.Suggestions {
			fmt.Printf("  [%s] %s\n", s.Priority, s.Description)
			if s.SuggestedAction != "" {
				fmt.Printf("      -> %s\n", s.SuggestedAction)
			}
		}
	}
}
