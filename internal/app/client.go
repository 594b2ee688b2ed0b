package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc/status"

	"jvmproc/internal/daemon"
)

var (
	daemonIsRunning  = daemon.IsRunning
	dialDaemonClient = defaultDial
)

func defaultDial(ctx context.Context) (daemon.JVMProcClient, io.Closer, error) {
	client, conn, err := daemon.Dial(ctx)
	if err != nil {
		return nil, nil, err
	}
	return client, conn, nil
}

func resetDaemonDeps() {
	daemonIsRunning = daemon.IsRunning
	dialDaemonClient = defaultDial
}

func (a *App) withClient(ctx context.Context, timeout time.Duration, fn func(context.Context, daemon.JVMProcClient) error) error {
	if timeout <= 0 {
		return errors.New("timeout must be greater than 0")
	}
	if !daemonIsRunning() {
		return errors.New("daemon is not running")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, conn, err := dialDaemonClient(ctx)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	if conn != nil {
		defer conn.Close()
	}

	return fn(ctx, client)
}

// rpcError turns a gRPC status back into a readable error.
func rpcError(op string, err error) error {
	if st, ok := status.FromError(err); ok {
		return fmt.Errorf("daemon %s RPC failed: %s", op, st.Message())
	}
	return fmt.Errorf("daemon %s RPC failed: %w", op, err)
}
