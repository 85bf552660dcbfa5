package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	massmail "github.com/jtuomist/massmail"
	"github.com/jtuomist/massmail/config"
	"github.com/jtuomist/massmail/internal/exitcode"
	"github.com/jtuomist/massmail/types"
)

type CLI struct {
	Recipients string     `arg:"" help:"CSV file with the recipients' data." type:"existingfile"`
	Message    string     `arg:"" help:"TOML file with the message to send." type:"existingfile"`
	Config     string     `name:"config" help:"TOML file with the SMTP configuration." env:"MASSMAIL_CONFIG" default:"config.toml"`
	LogLevel   slog.Level `name:"log-level" help:"Log level." env:"MASSMAIL_LOG_LEVEL" default:"INFO" enum:"DEBUG,INFO,WARN,ERROR"`
	Yes        bool       `name:"yes" short:"y" help:"Send without asking for confirmation." env:"MASSMAIL_YES"`
}

func (CLI *CLI) initLogger() *slog.Logger {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		handler = tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{Level: CLI.LogLevel})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: CLI.LogLevel})
	}
	return slog.New(handler)
}

func (CLI *CLI) run(logger *slog.Logger) int {
	cfg, err := config.LoadSMTP(CLI.Config)
	if err != nil {
		logger.Error("cannot load config", slog.Any("error", err))
		return exitcode.ConfigError
	}
	msg, err := config.LoadMessage(CLI.Message)
	if err != nil {
		logger.Error("cannot load message", slog.Any("error", err))
		return exitcode.FormatError
	}

	options := []massmail.OptionFunc{massmail.WithLogger(logger)}
	if CLI.Yes {
		options = append(options, massmail.WithConfirmer(massmail.AlwaysConfirm))
	}
	pipeline, err := massmail.NewPipeline(cfg, msg, options...)
	if err != nil {
		logger.Error("cannot set up pipeline", slog.Any("error", err))
		return exitcode.ConfigError
	}

	report, err := pipeline.Run(context.Background(), CLI.Recipients)
	if err != nil {
		if errors.Is(err, massmail.ErrCancelled) {
			fmt.Println("Cancelled.")
			return exitcode.Cancelled
		}
		logger.Error("run aborted", slog.Any("error", err))
		var (
			formatErr     *types.FormatError
			templateErr   *types.TemplateError
			connectionErr *types.ConnectionError
		)
		switch {
		case errors.As(err, &formatErr):
			return exitcode.FormatError
		case errors.As(err, &templateErr):
			return exitcode.TemplateError
		case errors.As(err, &connectionErr):
			return exitcode.ConnectionError
		}
		return exitcode.Failure
	}
	fmt.Printf("Sent %d message(s), %d failed.\n", report.Sent, len(report.Failures))
	return exitcode.Success
}

func main() {
	var CLI CLI
	kong.Parse(&CLI,
		kong.Name("massmail"),
		kong.Description("Send a templated message to every recipient of a CSV address list."))
	logger := CLI.initLogger()
	os.Exit(CLI.run(logger))
}
