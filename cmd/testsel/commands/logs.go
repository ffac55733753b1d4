package commands

import (
	"fmt"

	"github.com/netxfw/testsel/internal/logview"
	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	var opts logview.Options
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the file sink's log",
		// Short: 查看文件日志
		Long: `Print the file sink's log (log_file.path). With -f, keep following it
across rotations until interrupted.
打印文件日志接收端的日志；指定 -f 时持续跟随直到中断。`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationDataOutput: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			e := NewCommandExecutor(cmd)
			return e.Do(func() error {
				sink := e.Config().LogFile
				if sink.Path == "" {
					return fmt.Errorf("log_file.path is not set")
				}
				if !sink.Enabled {
					e.PrintWarning("File sink is disabled; showing " + sink.Path + " anyway")
				}

				out := cmd.OutOrStdout()
				return logview.Tail(cmd.Context(), sink.Path, opts, func(l logview.Line) error {
					_, err := fmt.Fprintln(out, l.Text)
					return err
				})
			})
		},
	}
	cmd.Flags().BoolVarP(&opts.Follow, "follow", "f", false, "Follow the log as it grows")
	cmd.Flags().BoolVar(&opts.FromEnd, "new", false, "Only show lines written from now on")
	cmd.Flags().BoolVar(&opts.Poll, "poll", false, "Poll for changes instead of using inotify")
	return cmd
}
