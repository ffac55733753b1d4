package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/netxfw/testsel/internal/config"
	"github.com/netxfw/testsel/internal/runtime"
	"github.com/netxfw/testsel/internal/session"
	"github.com/netxfw/testsel/internal/utils/logger"
	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitError       = 1 // configuration or usage error
	ExitNoSelection = 5 // the selection matched no test case
)

// exitError carries a non-default exit status out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// withExitCode attaches an exit status to err.
func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// ExitCode maps an error returned by a command to the process exit status.
// ExitCode 将命令返回的错误映射为进程退出码。
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitError
}

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// CommandExecutor 统一的命令执行器，处理所有命令的通用逻辑
// CommandExecutor bundles what every command needs: config, policy and output.
type CommandExecutor struct {
	cmd *cobra.Command
}

// NewCommandExecutor 创建新的命令执行器
// NewCommandExecutor creates a new command executor
func NewCommandExecutor(cmd *cobra.Command) *CommandExecutor {
	return &CommandExecutor{cmd: cmd}
}

// Config returns the configuration loaded by the root command.
// Config 返回根命令加载的配置。
func (e *CommandExecutor) Config() *config.Config {
	if cfg, ok := e.cmd.Context().Value(configKey{}).(*config.Config); ok && cfg != nil {
		return cfg
	}
	return config.DefaultConfig()
}

// Policy returns the resolved logging policy.
func (e *CommandExecutor) Policy() *logger.Policy {
	return logger.Get(e.cmd.Context())
}

// Session builds a session from the loaded config and the -m flag.
// Session 根据配置和 -m 标志创建会话。
func (e *CommandExecutor) Session() (*session.Session, error) {
	return session.New(e.Config(), runtime.MarkExpr, e.Policy())
}

// Do 执行核心逻辑
// Do executes the core logic
func (e *CommandExecutor) Do(f func() error) error {
	return f()
}

// PrintSuccess 打印成功消息
// PrintSuccess prints success message
func (e *CommandExecutor) PrintSuccess(msg string) {
	e.cmd.Println("[OK] " + msg)
}

// PrintError 打印错误消息
// PrintError prints error message
func (e *CommandExecutor) PrintError(msg string) {
	e.cmd.PrintErrln("[ERROR] " + msg)
}

// PrintWarning 打印警告消息
// PrintWarning prints warning message
func (e *CommandExecutor) PrintWarning(msg string) {
	e.cmd.PrintErrln("[WARN]  " + msg)
}

// Printf writes to the command's standard output.
func (e *CommandExecutor) Printf(format string, args ...interface{}) {
	fmt.Fprintf(e.cmd.OutOrStdout(), format, args...)
}
