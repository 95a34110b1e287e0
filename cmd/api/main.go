package main

import (
	"fmt"
	"os"

	"github.com/Sohaniboston/Smart-Recon/internal/cli"
	"github.com/Sohaniboston/Smart-Recon/internal/infrastructure/config"
)

func main() {
	flags := cli.ParseServeFlags()

	var cfg *config.Config
	if flags.ConfigFile != "" {
		cfg = config.LoadOrEnvWithPath(flags.ConfigFile)
	} else {
		cfg = config.LoadOrEnv()
	}

	if err := cli.RunServe(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}
