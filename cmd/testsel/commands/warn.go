package commands

import (
	"strings"

	"github.com/netxfw/testsel/internal/utils/logger"
	"github.com/spf13/cobra"
)

func newWarnCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "warn <message>...",
		Short: "Route a runtime warning through the warning filters",
		// Short: 让运行时警告经过警告过滤规则
		Long: `Emit a runtime warning. filterwarnings decides its fate: ignored warnings
are dropped, escalated ones are logged at ERROR and exit with status 1,
everything else is logged at WARNING.
发出运行时警告：被忽略则丢弃；被升级为错误则以 ERROR 记录并以状态码 1 退出；否则以 WARNING 记录。`,
		Example: `  testsel warn --category DeprecationWarning "fixture tmpdir is deprecated"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := NewCommandExecutor(cmd)
			return e.Policy().Warn(logger.Warning{
				Category: category,
				Message:  strings.Join(args, " "),
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "UserWarning", "Warning category")
	return cmd
}
