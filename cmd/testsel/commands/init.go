package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/netxfw/testsel/internal/config"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var force, upgrade bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration",
		// Short: 初始化配置
		Long: `Write the default configuration file, with comments, to the config path.
An existing file is kept unless --force is given. --upgrade rewrites an existing
file as the current template while keeping its values.
写入带注释的默认配置文件；已存在时保留，除非指定 --force。
--upgrade 将已有文件升级为当前模板并保留其中的值。`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			e := NewCommandExecutor(cmd)
			return e.Do(func() error {
				path := config.GetConfigPath()
				if upgrade {
					return upgradeConfig(e, path)
				}
				if force {
					if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
						return err
					}
				}
				created, err := config.InitConfig(path)
				if err != nil {
					return err
				}
				if !created {
					e.PrintWarning(fmt.Sprintf("Configuration already exists: %s (use --force to overwrite or --upgrade to refresh)", path))
					return nil
				}
				e.PrintSuccess("Configuration initialized: " + path)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	cmd.Flags().BoolVar(&upgrade, "upgrade", false, "Rewrite an existing file as the current template, keeping its values")
	cmd.MarkFlagsMutuallyExclusive("force", "upgrade")
	return cmd
}

func upgradeConfig(e *CommandExecutor, path string) error {
	// Keys outside the schema are dropped by the rewrite; say which.
	if data, err := os.ReadFile(filepath.Clean(path)); err == nil {
		if syntax := config.NewConfigValidator().ValidateSyntax(data); syntax.Valid() {
			for _, w := range syntax.Warnings {
				e.PrintWarning(fmt.Sprintf("Dropping %s: %s", w.Field, w.Message))
			}
		}
	}
	if _, err := config.Upgrade(path); err != nil {
		return err
	}
	e.PrintSuccess("Configuration upgraded: " + path)
	return nil
}
