// Command envwatchd runs the stream engine as a long-lived service using only
// the configuration file, for process supervisors that do not pass flags.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"envwatch/internal/config"
	"envwatch/internal/streamrun"
)

// configEnv names the variable holding an alternate configuration path.
const configEnv = "ENVWATCH_CONFIG"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Getenv(configEnv)); err != nil && !errors.Is(err, context.Canceled) {
		cancel()
		log.Fatalf("envwatchd: %v", err)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return streamrun.Run(ctx, cfg, streamrun.Options{})
}
