package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"jvmproc/internal/daemon"
)

var errAlreadyRunning = errors.New("daemon already running")

func main() {
	configPath := flag.String("config", "", "Path to a JSON or YAML config file")
	force := flag.Bool("force", false, "Stop an existing daemon before starting")
	flag.Parse()

	err := run(*configPath, *force)
	switch {
	case errors.Is(err, errAlreadyRunning):
		log.Printf("%v. Use --force to restart.", err)
	case err != nil:
		log.Fatal(err)
	}
}

func run(configPath string, force bool) error {
	if daemon.IsRunning() {
		pid, err := daemon.RunningPID()
		if err != nil {
			return fmt.Errorf("daemon appears running but pid check failed: %w", err)
		}
		if !force {
			return fmt.Errorf("%w (pid %d)", errAlreadyRunning, pid)
		}
		log.Printf("stopping daemon pid %d", pid)
		if err := daemon.StopRunningDaemon(true); err != nil {
			return fmt.Errorf("stop running daemon: %w", err)
		}
	}

	srv, err := daemon.StartDaemon(configPath)
	if err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	log.Printf("serving on %s (pid %d)", daemon.SocketPath(), os.Getpid())

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	log.Printf("%s received, shutting down", sig)
	if err := srv.Close(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
