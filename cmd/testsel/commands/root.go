package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/netxfw/testsel/internal/config"
	"github.com/netxfw/testsel/internal/runtime"
	"github.com/netxfw/testsel/internal/utils/logger"
	"github.com/spf13/cobra"
)

// Command annotations read by the root command.
const (
	// annotationNoConfig marks commands that must run without a loadable config.
	annotationNoConfig = "testsel/no-config"
	// annotationDataOutput marks commands whose stdout is machine-readable;
	// their console log records go to stderr.
	annotationDataOutput = "testsel/data-output"
)

type app struct {
	policy *logger.Policy
}

func (a *app) close() {
	if a.policy != nil {
		_ = a.policy.Close()
		a.policy = nil
	}
}

// resolvePolicy builds the logging policy for cfg. Console sinks write to the
// command's streams so output can be captured, and never to the stdout of a
// data-output command.
func resolvePolicy(cmd *cobra.Command, cfg *config.Config) (*logger.Policy, error) {
	filters, err := logger.ParseFilters(cfg.FilterWarnings)
	if err != nil {
		return nil, err
	}

	console := cfg.LogCLI
	switch console.Destination {
	case "", logger.DestinationConsole:
		console.Writer = cmd.OutOrStdout()
		if cmd.Annotations[annotationDataOutput] == "true" {
			console.Writer = cmd.ErrOrStderr()
		}
	case logger.DestinationStderr:
		console.Writer = cmd.ErrOrStderr()
	}

	p, err := logger.Resolve(console, cfg.LogFile, filters)
	if err != nil {
		return nil, err
	}
	if err := p.CheckFormats(); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

// NewRootCmd builds the testsel command tree.
// NewRootCmd 构建 testsel 命令树。
func NewRootCmd() *cobra.Command {
	root, _ := newRootCmd()
	return root
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:   "testsel",
		Short: "Marker registry, selection expressions and logging policy for test runs",
		// Short: 测试运行的标记注册表、选择表达式与日志策略
		Long: `testsel sits in front of a test runner. It owns the declared test markers,
parses selection expressions such as "smoke and not slow" and decides which
collected cases run, and resolves the console and file logging sinks behind a
warning-filter list.
testsel 位于测试运行器之前：管理测试标记，解析选择表达式并决定运行哪些用例，
同时解析控制台与文件日志接收端及警告过滤规则。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoConfig] == "true" {
				cmd.SetContext(logger.WithContext(cmd.Context(), logger.Bootstrap()))
				return nil
			}

			// Load configuration, then resolve logging from it
			// 加载配置，然后据此解析日志策略
			cfg, err := config.LoadOrDefault(config.GetConfigPath(), runtime.ConfigPath != "")
			if err != nil {
				return err
			}
			p, err := resolvePolicy(cmd, cfg)
			if err != nil {
				return err
			}
			a.policy = p

			ctx := logger.WithContext(cmd.Context(), p)
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	// Config file path
	// 配置文件路径
	root.PersistentFlags().StringVarP(&runtime.ConfigPath, "config", "c", "",
		fmt.Sprintf("Path to configuration file (default: %s)", config.DefaultConfigPath))

	// Selection expression, overrides markexpr from the config
	// 选择表达式，覆盖配置中的 markexpr
	root.PersistentFlags().StringVarP(&runtime.MarkExpr, "markexpr", "m", "",
		`Only select tests matching the marker expression, e.g. "smoke and not slow"`)

	root.AddCommand(newMarkersCmd())
	root.AddCommand(newSelectCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newLogsCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newWarnCmd())
	root.AddCommand(newVersionCmd())

	root.CompletionOptions.DisableDescriptions = true
	return root, a
}

// Execute runs the CLI and exits with the command's status.
// Execute 运行命令行并以命令状态退出。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root, a := newRootCmd()
	err := root.ExecuteContext(ctx)
	a.close()
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(ExitCode(err))
}
