// Package main is the entry point of the hwinj command line.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hwinj/hwinj/cmd/hwinj/commands"
)

func main() {
	a, err := commands.New()
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	os.Exit(run(a))
}

type app interface {
	Run() error
	UsageError() bool
	Quit()
}

func run(a app) int {
	defer installSignalHandler(a)()

	if err := a.Run(); err != nil {
		slog.Error(err.Error())

		if a.UsageError() {
			return 2
		}
		return 1
	}

	return 0
}

func installSignalHandler(a app) func() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sig, ok := <-c
		if !ok {
			return
		}
		slog.Info("Stopping", "signal", sig)
		a.Quit()
	}()

	return func() {
		signal.Stop(c)
		close(c)
		<-done
	}
}
