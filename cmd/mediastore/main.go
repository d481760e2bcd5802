// mediastore - command-line client for the media storage backend
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mediastore/mediastore-cli/internal/cli"
	"github.com/mediastore/mediastore-cli/internal/version"
)

// Version information, overridden with -ldflags "-X main.Version=..."
var (
	Version   = "v0.3.0"
	BuildTime = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUploadFailed) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}
