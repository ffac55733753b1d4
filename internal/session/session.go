package session

import (
	"fmt"
	"sync"

	"github.com/netxfw/testsel/internal/config"
	"github.com/netxfw/testsel/internal/marker"
	"github.com/netxfw/testsel/internal/metrics"
	"github.com/netxfw/testsel/internal/selection"
	"github.com/netxfw/testsel/internal/utils/logger"
	apperrors "github.com/netxfw/testsel/pkg/errors"
)

// UnknownMarkerCategory is the warning category used for undeclared markers
// under the warn policy, so filterwarnings entries can silence or escalate it.
const UnknownMarkerCategory = "UnknownMarkerWarning"

// Session ties the configured registry, selector and logging policy together
// for one invocation.
// Session 将标记注册表、选择器与日志策略组合为一次运行会话。
type Session struct {
	registry      *marker.Registry
	selector      *selection.Selector
	program       *selection.Program
	policy        *logger.Policy
	unknownPolicy string

	mu      sync.Mutex
	current string
}

// New builds a session from cfg. markExpr overrides cfg.MarkExpr when non-empty.
// New 根据配置创建会话；markExpr 非空时覆盖配置中的 markexpr。
func New(cfg *config.Config, markExpr string, policy *logger.Policy) (*Session, error) {
	registry, err := marker.LoadDeclarations(cfg.Markers)
	if err != nil {
		return nil, err
	}
	if markExpr == "" {
		markExpr = cfg.MarkExpr
	}
	selector, err := selection.NewSelector(markExpr, registry)
	if err != nil {
		return nil, err
	}
	program, err := selection.Compile(selector.Expression())
	if err != nil {
		return nil, err
	}
	if policy == nil {
		policy = logger.Bootstrap()
	}
	unknown := cfg.UnknownMarkerPolicy
	if unknown == "" {
		unknown = config.PolicyReject
	}
	return &Session{
		registry:      registry,
		selector:      selector,
		program:       program,
		policy:        policy,
		unknownPolicy: unknown,
	}, nil
}

// Registry returns the sealed marker registry.
func (s *Session) Registry() *marker.Registry { return s.registry }

// Selector returns the parsed selection.
func (s *Session) Selector() *selection.Selector { return s.selector }

// Policy returns the logging policy the session reports through.
func (s *Session) Policy() *logger.Policy { return s.policy }

// SessionStart logs the session start line.
func (s *Session) SessionStart(name, path string) {
	s.policy.Info("session start: name: %s, path: %s", name, path)
}

// CollectResult is the outcome of Collect, in input order.
// CollectResult 是 Collect 的结果，保持输入顺序。
type CollectResult struct {
	Selected   []TestCase
	Deselected []TestCase
}

// Total returns the number of collected cases.
func (r CollectResult) Total() int { return len(r.Selected) + len(r.Deselected) }

// Collect validates every case's tags against the registry and splits the
// cases by the selection expression.
// Collect 校验每个用例的标记，并按选择表达式划分用例。
func (s *Session) Collect(cases []TestCase) (CollectResult, error) {
	var result CollectResult
	for _, tc := range cases {
		if err := s.checkTags(tc); err != nil {
			return CollectResult{}, err
		}
		ok, err := s.program.Run(selection.NewTagSet(tc.Tags...))
		if err != nil {
			return CollectResult{}, fmt.Errorf("evaluate %s: %w", tc.ID, err)
		}
		if ok {
			result.Selected = append(result.Selected, tc)
		} else {
			result.Deselected = append(result.Deselected, tc)
		}
	}

	metrics.TestsCollected.Add(float64(result.Total()))
	metrics.TestsSelected.Add(float64(len(result.Selected)))
	metrics.TestsDeselected.Add(float64(len(result.Deselected)))

	s.policy.Info("collected %d items / %d deselected / %d selected",
		result.Total(), len(result.Deselected), len(result.Selected))
	return result, nil
}

func (s *Session) checkTags(tc TestCase) error {
	for _, tag := range tc.Tags {
		if s.registry.IsKnown(tag) {
			continue
		}
		metrics.UnknownMarkers.WithLabelValues(s.unknownPolicy).Inc()

		if s.unknownPolicy != config.PolicyWarn {
			return fmt.Errorf("%s: %w", tc.ID, &apperrors.UnknownMarkerError{
				Name:       tag,
				Suggestion: s.registry.Suggest(tag),
			})
		}
		msg := fmt.Sprintf("Unknown marker %q on %s - is this a typo? Declare it under markers to silence this warning", tag, tc.ID)
		if err := s.policy.Warn(logger.Warning{Category: UnknownMarkerCategory, Message: msg}); err != nil {
			return err
		}
	}
	return nil
}
