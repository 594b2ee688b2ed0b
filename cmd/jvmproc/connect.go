package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jvmproc/internal/app"
)

var (
	connectLocal   bool
	connectTimeout int
)

func init() {
	rootCmd.AddCommand(cmdConnect)

	cmdConnect.Flags().BoolVar(&connectLocal, "local", false, "Bootstrap in-process instead of asking the daemon")
	cmdConnect.Flags().IntVar(&connectTimeout, "timeout", 20, "Timeout in seconds")
}

var cmdConnect = &cobra.Command{
	Use:   "connect <pid>",
	Short: "Start the JMX management agent in a JVM and print its connector address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePIDArg(args[0])
		if err != nil {
			return err
		}
		p, err := controller().Connect(cmd.Context(), app.ConnectParams{
			PID:     pid,
			Timeout: time.Duration(connectTimeout) * time.Second,
			Local:   connectLocal,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p.Address)
		return nil
	},
}
