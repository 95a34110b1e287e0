package cli

import (
	"flag"
)

// ReconcileFlags are the flags for the reconcile command
type ReconcileFlags struct {
	ConfigFile   string
	InternalPath string
	ExternalPath string
	DryRun       bool
	JSONOutput   bool
	Verbose      bool
}

// ParseReconcileFlags parses reconcile flags from the command line
func ParseReconcileFlags() *ReconcileFlags {
	flags := &ReconcileFlags{}
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path")
	flag.StringVar(&flags.InternalPath, "internal", "", "Internal ledger CSV path (overrides config)")
	flag.StringVar(&flags.ExternalPath, "external", "", "External statement CSV path (overrides config)")
	flag.BoolVar(&flags.DryRun, "dry-run", false, "Run without persisting to the database")
	flag.BoolVar(&flags.JSONOutput, "json", false, "Print the full session as JSON")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}
