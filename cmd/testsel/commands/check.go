package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/netxfw/testsel/internal/config"
	"github.com/netxfw/testsel/internal/runtime"
	"github.com/netxfw/testsel/internal/session"
	apperrors "github.com/netxfw/testsel/pkg/errors"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Test configuration",
		// Short: 测试配置
		Long: `Validate the configuration file: YAML syntax, marker declarations,
unknown-marker policy, logging sinks and their formats, warning filters and the
selection expression (markexpr, or -m when given).
验证配置文件：YAML 语法、标记声明、未知标记策略、日志接收端及格式、警告过滤规则和选择表达式。`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			e := NewCommandExecutor(cmd)
			return e.Do(func() error {
				path := config.GetConfigPath()
				data, err := os.ReadFile(filepath.Clean(path))
				if err != nil {
					if errors.Is(err, os.ErrNotExist) {
						return fmt.Errorf("%w: %s", apperrors.ErrConfigNotFound, path)
					}
					return err
				}

				result, err := config.ValidateConfig(data)
				if err != nil {
					return err
				}
				for _, w := range result.Warnings {
					e.PrintWarning(w.Field + ": " + w.Message)
				}
				for _, issue := range result.Errors {
					e.PrintError(issue.String())
				}
				if !result.Valid() {
					return result.Err()
				}

				cfg, err := config.Parse(data)
				if err != nil {
					return err
				}
				policy, err := resolvePolicy(cmd, cfg)
				if err != nil {
					return err
				}
				defer policy.Close()

				s, err := session.New(cfg, runtime.MarkExpr, policy)
				if err != nil {
					return err
				}

				e.PrintSuccess(fmt.Sprintf("Configuration test passed: %s (%d markers, %d filters, sinks: %v)",
					path, s.Registry().Len(), len(policy.Filters()), policy.Sinks()))
				return nil
			})
		},
	}
}
