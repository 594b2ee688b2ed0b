package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stopForce bool

func init() {
	rootCmd.AddCommand(cmdStop, cmdStatus)
	cmdStop.Flags().BoolVarP(&stopForce, "force", "f", false, "Kill the daemon if it does not exit in time")
}

var cmdStop = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := controller().StopDaemon(stopForce); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped")
		return nil
	},
}

var cmdStatus = &cobra.Command{
	Use:   "status",
	Short: "Show whether the daemon is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := controller().Status()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !st.Running {
			fmt.Fprintf(out, "Daemon is not running (socket %s)\n", st.Socket)
			return nil
		}
		fmt.Fprintf(out, "Daemon running pid=%d socket=%s\n", st.PID, st.Socket)
		return nil
	},
}
