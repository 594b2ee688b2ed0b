package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"jvmproc/internal/app"
)

var (
	listPIDs           []int
	listAttachableOnly bool
	listManageableOnly bool
	listSearch         string
	listRefresh        bool
	listLocal          bool
	listTimeout        int
)

func init() {
	rootCmd.AddCommand(cmdList)

	cmdList.Flags().IntSliceVar(&listPIDs, "pid", nil, "Only show these pids (repeatable)")
	cmdList.Flags().BoolVar(&listAttachableOnly, "attachable", false, "Only show JVMs that accept dynamic attach")
	cmdList.Flags().BoolVar(&listManageableOnly, "manageable", false, "Only show JVMs with a running management agent")
	cmdList.Flags().StringVar(&listSearch, "search", "", "Substring of the command line or display name")
	cmdList.Flags().BoolVar(&listRefresh, "refresh", false, "Ask the daemon for a full discovery pass")
	cmdList.Flags().BoolVar(&listLocal, "local", false, "Discover in-process instead of asking the daemon")
	cmdList.Flags().IntVar(&listTimeout, "timeout", 10, "Timeout in seconds")
}

var cmdList = &cobra.Command{
	Use:   "list",
	Short: "List the JVMs running on this host",
	RunE: func(cmd *cobra.Command, args []string) error {
		procs, err := controller().List(cmd.Context(), app.ListParams{
			Filters: app.ListFilters{
				PIDs:           listPIDs,
				AttachableOnly: listAttachableOnly,
				ManageableOnly: listManageableOnly,
				TextSearch:     listSearch,
			},
			Timeout: time.Duration(listTimeout) * time.Second,
			Refresh: listRefresh,
			Local:   listLocal,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(procs) == 0 {
			fmt.Fprintln(out, "No JVMs found")
			return nil
		}
		for _, p := range procs {
			printProcess(out, p)
		}
		return nil
	},
}

func printProcess(w io.Writer, p app.Process) {
	fmt.Fprintf(w, "pid=%d attachable=%t name=%s", p.PID, p.Attachable, p.Display)
	if p.Manageable() {
		fmt.Fprintf(w, " address=%s", p.Address)
	}
	fmt.Fprintln(w)
}
