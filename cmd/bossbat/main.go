// Command bossbat runs a fleet member that executes commands on interval
// and cron schedules, each occurrence on exactly one member.
//
//	bossbat -config jobs.toml            run until SIGINT/SIGTERM
//	bossbat -config jobs.toml -demand x  ask the fleet to run x once
//	bossbat -config jobs.toml -fire x    drop x's pending occurrence
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	audithook "github.com/xraph/bossbat/audit_hook"
	"github.com/xraph/bossbat/engine"
	"github.com/xraph/bossbat/job"
	"github.com/xraph/bossbat/middleware"
	"github.com/xraph/bossbat/store/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "bossbat:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.String("error", err.Error()))
	}

	configPath := flag.String("config", os.Getenv("BOSSBAT_CONFIG"), "path to TOML config (overrides $BOSSBAT_CONFIG)")
	demand := flag.String("demand", "", "demand one run of the named job and exit")
	fire := flag.String("fire", "", "delete the named job's pending occurrence and exit")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	logger := cfg.Log.Logger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = client.Close() }()

	// The store watches the client's database.
	storeOpts := []redis.Option{redis.WithLogger(logger)}
	if cfg.Redis.SkipConfigure {
		storeOpts = append(storeOpts, redis.WithoutConfigure())
	}
	s, err := redis.New(ctx, client, storeOpts...)
	if err != nil {
		return err
	}

	engOpts := []engine.Option{
		engine.WithConfig(cfg.Bossbat()),
		engine.WithLogger(logger),
		engine.WithConcurrency(cfg.Engine.Concurrency),
		engine.WithMiddleware(middleware.Timeout(0)),
	}
	if cfg.Engine.MaxRate > 0 {
		burst := max(cfg.Engine.Burst, 1)
		engOpts = append(engOpts, engine.WithMiddleware(middleware.Throttle(rate.Limit(cfg.Engine.MaxRate), burst)))
	}
	if cfg.Log.Audit {
		engOpts = append(engOpts, engine.WithExtension(
			audithook.New(audithook.SlogRecorder(logger), audithook.WithLogger(logger)),
		))
	}
	eng, err := engine.New(s, engOpts...)
	if err != nil {
		return err
	}

	switch {
	case *demand != "":
		return eng.Demand(ctx, *demand)
	case *fire != "":
		return eng.Fire(ctx, *fire)
	}

	if err := eng.Start(ctx); err != nil {
		return err
	}
	for _, jc := range cfg.Jobs {
		def := job.Definition{
			Name:     jc.Name,
			Trigger:  jc.Trigger(),
			Work:     commandWork(jc.Command),
			Metadata: jc.Metadata(),
		}
		if err := eng.Hire(ctx, def); err != nil {
			_ = eng.Stop(context.Background())
			return err
		}
	}

	logger.Info("bossbat running", slog.Int("jobs", len(cfg.Jobs)))
	<-ctx.Done()
	logger.Info("shutting down")

	return eng.Stop(context.Background())
}

// commandWork runs argv with the process's stdout and stderr.
func commandWork(argv []string) job.WorkFunc {
	return func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // commands come from the operator's config
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Env = os.Environ()
		if occ, ok := job.OccurrenceFrom(ctx); ok {
			cmd.Env = append(cmd.Env,
				"BOSSBAT_JOB="+occ.Name,
				"BOSSBAT_OCCURRENCE="+occ.ID.String(),
			)
		}
		return cmd.Run()
	}
}
