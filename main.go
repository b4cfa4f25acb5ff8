package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hrcopilot/server/internal/agent/model"
	"github.com/hrcopilot/server/internal/bootstrap"
	"github.com/hrcopilot/server/internal/core"
	logx "github.com/hrcopilot/server/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "hrcopilot",
		Usage: "HR copilot: answers employee questions from the policy and document indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file loaded before reading the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Override the log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP function host",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "port",
						Usage: "Listen port (overrides PORT)",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Send one query through the copilot and print the result as JSON",
				ArgsUsage: "<query>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "department", Usage: "Employee department"},
					&cli.StringFlag{Name: "role", Usage: "Employee role"},
					&cli.StringFlag{Name: "tenure", Usage: "Employee tenure"},
				},
			},
			{
				Name:      "docqa",
				Usage:     "Ask the document index a question and print the answer as JSON",
				ArgsUsage: "<question>",
				Action:    docQACommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logx.Fatal().Err(err).Msg("hrcopilot failed")
	}
}

// setup loads config, initialises logging and builds the container.
func setup(c *cli.Context) (*bootstrap.Config, *bootstrap.Container, error) {
	cfg, err := bootstrap.LoadConfig(c.String("env-file"))
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if c.String("log-level") != "" {
		level = c.String("log-level")
	}
	logx.Init(logx.LoggerOpts{
		Environment: core.ParseEnvironment(cfg.Environment),
		Level:       level,
	})

	container, err := bootstrap.NewContainer(c.Context, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, container, nil
}

func serveCommand(c *cli.Context) error {
	cfg, container, err := setup(c)
	if err != nil {
		return err
	}
	defer container.Close()

	router, err := container.Router()
	if err != nil {
		return err
	}

	port := cfg.Port
	if p := c.String("port"); p != "" {
		port = p
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("port", port).Msg("HR copilot starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-sig:
	}

	logx.Info().Msg("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logx.Info().Msg("Server exited")
	return nil
}

func askCommand(c *cli.Context) error {
	query := c.Args().First()
	if query == "" {
		return fmt.Errorf("query argument is required")
	}

	cfg, container, err := setup(c)
	if err != nil {
		return err
	}
	defer container.Close()

	in := model.QueryInput{Query: query}
	if c.String("department") != "" || c.String("role") != "" || c.String("tenure") != "" {
		in.EmployeeContext = &model.EmployeeContext{
			Department: c.String("department"),
			Role:       c.String("role"),
			Tenure:     c.String("tenure"),
		}
	}

	ctx, cancel := context.WithTimeout(c.Context, cfg.RequestTimeout)
	defer cancel()

	state, err := container.Copilot.Invoke(ctx, in)
	if err != nil {
		return err
	}

	out := map[string]any{"result": state}
	if id := container.Escalator.Process(ctx, state); id != "" {
		out["ticketId"] = id
	}
	return printJSON(out)
}

func docQACommand(c *cli.Context) error {
	question := c.Args().First()
	if question == "" {
		return fmt.Errorf("question argument is required")
	}

	cfg, container, err := setup(c)
	if err != nil {
		return err
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(c.Context, cfg.RequestTimeout)
	defer cancel()

	ans, err := container.DocQA.Ask(ctx, question)
	if err != nil {
		return err
	}
	return printJSON(ans)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
