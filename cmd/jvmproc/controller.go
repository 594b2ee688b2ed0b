package main

import (
	"context"
	"time"

	"jvmproc/internal/app"
)

// controllerAPI is what the commands need from app.App.
type controllerAPI interface {
	Ping(ctx context.Context, timeout time.Duration) (string, error)
	List(ctx context.Context, params app.ListParams) ([]app.Process, error)
	Lookup(ctx context.Context, params app.LookupParams) (app.Process, error)
	Connect(ctx context.Context, params app.ConnectParams) (app.Process, error)
	Status() (app.DaemonStatus, error)
	StopDaemon(force bool) error
	StartDaemon() (*app.DaemonHandle, error)
}

var controllerFactory = func() controllerAPI {
	return app.New(app.Options{ConfigPath: configPath})
}

func controller() controllerAPI {
	return controllerFactory()
}
