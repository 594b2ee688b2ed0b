package app

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/emptypb"

	"jvmproc/internal/daemon"
)

// Ping contacts the daemon and returns its health response.
func (a *App) Ping(ctx context.Context, timeout time.Duration) (string, error) {
	var msg string
	err := a.withClient(ctx, timeout, func(ctx context.Context, client daemon.JVMProcClient) error {
		resp, err := client.Ping(ctx, &emptypb.Empty{})
		if err != nil {
			return rpcError("ping", err)
		}
		msg = resp.GetValue()
		return nil
	})
	return msg, err
}
