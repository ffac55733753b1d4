package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type contextKey string

const PolicyKey = contextKey("logging-policy")

var (
	bootstrapOnce   sync.Once
	bootstrapPolicy *Policy
)

// Bootstrap returns the console-only INFO policy used before configuration
// is loaded, or when it cannot be.
// Bootstrap 返回加载配置前使用的仅控制台日志策略。
func Bootstrap() *Policy {
	bootstrapOnce.Do(func() {
		p, err := Resolve(DefaultConsoleSink(), SinkConfig{}, nil)
		if err != nil {
			// Console sinks cannot fail to open; keep a usable handle anyway.
			p = &Policy{logger: zap.NewExample()}
			p.direct = p.logger.Sugar()
			p.sugar = p.direct
		}
		bootstrapPolicy = p
	})
	return bootstrapPolicy
}

// Get returns the policy from context, falling back to the bootstrap policy.
// Get 从 Context 返回日志策略，未设置时返回引导策略。
func Get(ctx context.Context) *Policy {
	if ctx != nil {
		if p, ok := ctx.Value(PolicyKey).(*Policy); ok && p != nil {
			return p
		}
	}
	return Bootstrap()
}

// WithContext adds the policy to context
// WithContext 将日志策略添加到 Context。
func WithContext(ctx context.Context, p *Policy) context.Context {
	return context.WithValue(ctx, PolicyKey, p)
}
