package runtime

// ConfigPath stores the path to the configuration file provided via CLI flags.
// ConfigPath 存储通过 CLI 标志提供的配置文件路径。
var ConfigPath string

// MarkExpr stores the selection expression given with -m/--markexpr. When
// empty, the markexpr key from the configuration file applies.
// MarkExpr 存储通过 -m/--markexpr 提供的选择表达式。
var MarkExpr string
