// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"
	"fmt"
	rawLog "log"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/xcherryio/ticksched/common/log"
	"github.com/xcherryio/ticksched/common/log/tag"
	"github.com/xcherryio/ticksched/config"
	"github.com/xcherryio/ticksched/engine"
	"github.com/xcherryio/ticksched/persistence"
	"github.com/xcherryio/ticksched/persistence/data_models"
	persistencesql "github.com/xcherryio/ticksched/persistence/sql"
)

const FlagConfig = "config"

func StartTickSchedCli(c *cli.Context) {
	// register interrupt signal for graceful shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	configPath := c.String(FlagConfig)
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		rawLog.Fatalf("Unable to load config for path %v because of error %v", configPath, err)
	}

	shutdownFunc := StartTickSched(rootCtx, cfg)
	// wait for os signals
	<-rootCtx.Done()

	ctx, cancF := context.WithTimeout(context.Background(), time.Second*10)
	defer cancF()
	err = shutdownFunc(ctx)
	if err != nil {
		fmt.Println("shutdown error:", err)
	}
}

type GracefulShutdown func(ctx context.Context) error

func StartTickSched(rootCtx context.Context, cfg *config.Config) GracefulShutdown {
	zapLogger, err := cfg.Log.NewZapLogger()
	if err != nil {
		rawLog.Fatalf("Unable to create a new zap logger %v", err)
	}
	logger := log.NewLogger(zapLogger)
	logger.Info("config is loaded", tag.Value(cfg.String()))
	err = cfg.ValidateAndSetDefaults()
	if err != nil {
		logger.Fatal("config is invalid", tag.Error(err))
	}

	var store persistence.SchedulerStore
	var state *data_models.SchedulerState
	if cfg.Database != nil {
		store, err = persistencesql.NewSQLSchedulerStore(*cfg.Database.SQL, logger)
		if err != nil {
			logger.Fatal("error on persistence setup", tag.Error(err))
		}
		state, err = store.LoadSnapshot(rootCtx)
		if err != nil {
			logger.Fatal("error on loading persisted scheduler state", tag.Error(err))
		}
	}

	sched := engine.NewSchedulerFromState(cfg.Scheduler, engine.Collaborators{
		Preimages:  emptyPreimageStore{},
		Dispatcher: newLoggingDispatcher(logger),
		Authorizer: engine.NewAllowAllAuthorizer(),
	}, logger, state)

	driver := newTickDriver(sched, store, cfg.Scheduler, logger.WithTags(tag.Service("tick-driver")))
	driver.Start(rootCtx)

	return func(ctx context.Context) error {
		var errs error
		if err := driver.Stop(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
		if store != nil {
			if err := store.Close(); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		return errs
	}
}
