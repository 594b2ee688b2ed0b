package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"jvmproc/internal/app"
)

var (
	lookupLocal   bool
	lookupTimeout int
)

func init() {
	rootCmd.AddCommand(cmdLookup)

	cmdLookup.Flags().BoolVar(&lookupLocal, "local", false, "Look up in-process instead of asking the daemon")
	cmdLookup.Flags().IntVar(&lookupTimeout, "timeout", 10, "Timeout in seconds")
}

var cmdLookup = &cobra.Command{
	Use:   "lookup <pid>",
	Short: "Show one JVM, attaching to it directly if discovery misses it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePIDArg(args[0])
		if err != nil {
			return err
		}
		p, err := controller().Lookup(cmd.Context(), app.LookupParams{
			PID:     pid,
			Timeout: time.Duration(lookupTimeout) * time.Second,
			Local:   lookupLocal,
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printProcess(out, p)
		fmt.Fprintf(out, "cmd=%s\n", p.Command)
		return nil
	},
}

func parsePIDArg(arg string) (int, error) {
	pid, err := strconv.Atoi(arg)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid %q", arg)
	}
	return pid, nil
}
