// Package main is the entry point for the file-modifier application.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/file-modifier/internal/config"
	"github.com/joe/file-modifier/internal/engine"
	"github.com/joe/file-modifier/internal/logging"
	"github.com/joe/file-modifier/internal/tui"
	"github.com/joe/file-modifier/internal/tui/shared"
	"github.com/joe/file-modifier/pkg/filesystem"
)

// Exit codes.
const (
	exitOK        = 0
	exitError     = 1
	exitCancelled = 2
	exitPartial   = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	interactive := !cfg.NoTUI && term.IsTerminal(int(os.Stdout.Fd()))

	logOpts := logging.Options{Verbosity: cfg.Verbosity, LogFile: cfg.LogFile}
	if !interactive {
		logOpts.Console = os.Stderr
	}

	logger, closeLog, err := logging.Setup(logOpts)
	if err != nil {
		logger.Warn().Err(err).Msg("Continuing without a log file")
	}

	defer func() {
		_ = closeLog()
	}()

	fs, targetPath, destPath, closeFS, err := filesystem.ResolveOperationPaths(cfg.Target, cfg.Dest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	if closeFS != nil {
		defer closeFS()
	}

	req := cfg.ToRequest()
	req.Target = targetPath

	if destPath != "" {
		req.Params[engine.ParamDestinationDirectory] = destPath
	}

	logger.Info().
		Str("kind", req.Kind.String()).
		Str("target", req.Target).
		Int64("max_concurrent", cfg.MaxConcurrent).
		Msg("Starting operation")

	if interactive {
		return runTUI(cfg, fs, req, &logger)
	}

	return runConsole(cfg, fs, req, &logger)
}

func runTUI(cfg *config.Config, fs filesystem.FileSystem, req engine.Request, logger *zerolog.Logger) int {
	bridge := shared.NewEventBridge()

	eng := engine.NewEngine(engine.Options{
		FS:            fs,
		Emitter:       bridge,
		Logger:        logger,
		MaxConcurrent: cfg.MaxConcurrent,
	})
	defer eng.Close()

	eng.SetPromptPresenter(presenter(cfg, eng, bridge))

	id, err := eng.Submit(req)
	if err != nil {
		bridge.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return exitError
	}

	p := tea.NewProgram(tui.NewModel(eng, bridge, id), tea.WithAltScreen())

	final, err := p.Run()

	// Nothing reads the bridge any more.
	bridge.Close()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		eng.Cancel(id)

		return exitError
	}

	// Quitting early cancels whatever is still running.
	eng.Cancel(id)
	result := <-eng.Wait(id)

	if model, ok := final.(tui.Model); ok {
		fmt.Print(shared.RenderMessages(model.Messages(), 0, 0))
	}

	fmt.Printf("%s: %s\n", req.Kind, result)

	return exitCode(result)
}

func runConsole(cfg *config.Config, fs filesystem.FileSystem, req engine.Request, logger *zerolog.Logger) int {
	console := tui.NewConsole(os.Stdin, os.Stdout)

	eng := engine.NewEngine(engine.Options{
		FS:            fs,
		Emitter:       console,
		Logger:        logger,
		MaxConcurrent: cfg.MaxConcurrent,
	})
	defer eng.Close()

	console.Attach(eng)
	eng.SetPromptPresenter(presenter(cfg, eng, console))

	id, err := eng.Submit(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	return exitCode(<-eng.Wait(id))
}

func presenter(cfg *config.Config, eng *engine.Engine, next engine.PromptPresenter) engine.PromptPresenter {
	if cfg.AssumeYes {
		return tui.AutoConfirm{Next: next, Answerer: eng}
	}

	return next
}

func exitCode(result engine.Result) int {
	switch result {
	case engine.ResultCompleted:
		return exitOK
	case engine.ResultCancelled:
		return exitCancelled
	case engine.ResultCompletedWithErrors:
		return exitPartial
	case engine.ResultNone, engine.ResultValidationFailed, engine.ResultFailed:
		return exitError
	}

	return exitError
}
