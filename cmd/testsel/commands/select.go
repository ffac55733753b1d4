package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/netxfw/testsel/internal/metrics"
	"github.com/netxfw/testsel/internal/session"
	"github.com/spf13/cobra"
)

func newSelectCmd() *cobra.Command {
	var (
		casesPath   string
		tags        []string
		outputPath  string
		metricsFile string
		deselected  bool
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select test cases by marker expression",
		// Short: 按标记表达式选择测试用例
		Long: `Select test cases by marker expression.
Cases come from a YAML manifest (--cases, "-" for stdin) of the form
  cases:
    - id: tests/test_fs.py::test_mount
      tags: [smoke]
or a single tag set (--tags smoke,nfs). Selected ids are printed one per line.
Exits with status 5 when nothing is selected.
按标记表达式选择测试用例；未选中任何用例时以状态码 5 退出。`,
		Example: `  testsel select -m "smoke and not slow" --cases cases.yaml
  testsel select -m nfs --tags smoke,nfs`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationDataOutput: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			e := NewCommandExecutor(cmd)
			return e.Do(func() error {
				s, err := e.Session()
				if err != nil {
					return err
				}

				var cases []session.TestCase
				if cmd.Flags().Changed("tags") {
					cases = []session.TestCase{{ID: strings.Join(tags, ","), Tags: tags}}
				} else {
					cases, err = readCases(cmd, casesPath)
					if err != nil {
						return err
					}
				}

				result, err := s.Collect(cases)
				if err != nil {
					return err
				}

				list := result.Selected
				if deselected {
					list = result.Deselected
				}
				if err := writeIDs(cmd.OutOrStdout(), outputPath, list); err != nil {
					return err
				}

				if metricsFile == "" {
					metricsFile = e.Config().MetricsFile
				}
				if metricsFile != "" {
					if err := metrics.WriteTextfile(metricsFile); err != nil {
						e.PrintWarning(fmt.Sprintf("Failed to write metrics to %s: %v", metricsFile, err))
					}
				}

				if len(result.Selected) == 0 {
					return withExitCode(ExitNoSelection, fmt.Errorf("no tests selected: %d collected / %d deselected",
						result.Total(), len(result.Deselected)))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&casesPath, "cases", "", `YAML manifest of test cases ("-" reads stdin)`)
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Evaluate a single tag set instead of a manifest")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write ids to a file instead of stdout")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus textfile metrics after selecting")
	cmd.Flags().BoolVar(&deselected, "deselected", false, "Print deselected ids instead of selected ones")
	cmd.MarkFlagsMutuallyExclusive("cases", "tags")
	cmd.MarkFlagsOneRequired("cases", "tags")
	return cmd
}

func readCases(cmd *cobra.Command, path string) ([]session.TestCase, error) {
	if path != "-" {
		return session.LoadCases(path)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	return session.ParseCases(data)
}

// writeIDs prints one id per line to stdout, or to path when set.
func writeIDs(stdout io.Writer, path string, cases []session.TestCase) (err error) {
	out := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close %s: %w", path, cerr)
			}
		}()
		out = f
	}

	w := bufio.NewWriter(out)
	for _, tc := range cases {
		if _, err := fmt.Fprintln(w, tc.ID); err != nil {
			return err
		}
	}
	return w.Flush()
}
