package commands

import (
	"fmt"
	"time"

	"github.com/netxfw/testsel/internal/session"
	"github.com/spf13/cobra"
)

// newReportCmd lets a runner hook log session and per-test banners through
// the configured sinks.
func newReportCmd() *cobra.Command {
	report := &cobra.Command{
		Use:   "report",
		Short: "Log run banners through the configured sinks",
		// Short: 通过已配置的日志接收端记录运行横幅
	}

	report.AddCommand(&cobra.Command{
		Use:   "session <name> <path>",
		Short: "Log the session start line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewCommandExecutor(cmd).Session()
			if err != nil {
				return err
			}
			s.SessionStart(args[0], args[1])
			return nil
		},
	})

	report.AddCommand(&cobra.Command{
		Use:   "start <node-id>",
		Short: "Log the start banner of a test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewCommandExecutor(cmd).Session()
			if err != nil {
				return err
			}
			s.Start(args[0])
			return nil
		},
	})

	var (
		outcome  string
		duration time.Duration
	)
	finish := &cobra.Command{
		Use:   "finish <node-id>",
		Short: "Log the completion banner of a test",
		Example: `  testsel report finish "tests/test_fs.py::test_mount" --outcome passed --duration 1.24s`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, ok := session.ParseOutcome(outcome)
			if !ok {
				return fmt.Errorf("invalid outcome %q: want passed, failed, setup_failed or skipped", outcome)
			}
			s, err := NewCommandExecutor(cmd).Session()
			if err != nil {
				return err
			}
			s.Finish(args[0], o, duration)
			return nil
		},
	}
	finish.Flags().StringVar(&outcome, "outcome", "passed", "Test outcome: passed, failed, setup_failed or skipped")
	finish.Flags().DurationVar(&duration, "duration", 0, "How long the test took")
	report.AddCommand(finish)

	return report
}
