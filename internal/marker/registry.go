package marker

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/netxfw/testsel/pkg/errors"
)

// Marker is a named test tag with a human-readable description.
// Marker 是带有描述的测试标签。
type Marker struct {
	Name        string
	Description string
}

// Registry holds the known markers. It is filled during config load and
// sealed before any selection is parsed; after Seal it is read-only.
// Registry 保存所有已知标记。加载配置时填充，封存后只读。
type Registry struct {
	mu      sync.RWMutex
	markers map[string]Marker
	order   []string
	sealed  bool
}

// NewRegistry creates an empty, unsealed registry.
// NewRegistry 创建一个空的、未封存的注册表。
func NewRegistry() *Registry {
	return &Registry{
		markers: make(map[string]Marker),
	}
}

// ValidateName checks that name can be used as a marker and as a selection identifier.
// ValidateName 检查名称是否可作为标记和选择表达式中的标识符。
func ValidateName(name string) error {
	if name == "" {
		return apperrors.NewMarkerNameError(name, "name is empty")
	}
	if !utf8.ValidString(name) {
		return apperrors.NewMarkerNameError(name, "name is not valid UTF-8")
	}
	for _, r := range name {
		if unicode.IsSpace(r) {
			return apperrors.NewMarkerNameError(name, "name contains whitespace")
		}
		if r == '(' || r == ')' {
			return apperrors.NewMarkerNameError(name, "name contains a parenthesis")
		}
	}
	switch name {
	case "and", "or", "not":
		return apperrors.NewMarkerNameError(name, "name is a selection keyword")
	}
	return nil
}

// Register adds a marker. Registering an existing name fails with
// DuplicateMarkerError; any call after Seal fails with RegistrySealedError.
// Register 添加标记。
func (r *Registry) Register(name, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return &apperrors.RegistrySealedError{Name: name}
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, ok := r.markers[name]; ok {
		return &apperrors.DuplicateMarkerError{Name: name}
	}
	r.markers[name] = Marker{Name: name, Description: description}
	r.order = append(r.order, name)
	return nil
}

// Seal makes the registry immutable. Sealing twice is a no-op.
// Seal 使注册表不可变。
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// IsKnown reports whether name is registered.
// IsKnown 判断名称是否已注册。
func (r *Registry) IsKnown(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.markers[name]
	return ok
}

// Describe returns the description of a registered marker.
// Describe 返回已注册标记的描述。
func (r *Registry) Describe(name string) (string, error) {
	r.mu.RLock()
	m, ok := r.markers[name]
	r.mu.RUnlock()
	if !ok {
		return "", &apperrors.UnknownMarkerError{Name: name, Suggestion: r.Suggest(name)}
	}
	return m.Description, nil
}

// Markers returns all markers in registration order.
func (r *Registry) Markers() []Marker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Marker, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.markers[name])
	}
	return out
}

// Len returns the number of registered markers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// CheckKnown returns an UnknownMarkerError when name is not registered.
// CheckKnown 在名称未注册时返回 UnknownMarkerError。
func (r *Registry) CheckKnown(name string) error {
	if r.IsKnown(name) {
		return nil
	}
	return &apperrors.UnknownMarkerError{Name: name, Suggestion: r.Suggest(name)}
}

// Suggest returns the registered marker closest to name, or "" when none is
// within an edit distance of 2.
// Suggest 返回与名称最接近的已注册标记（编辑距离不超过 2）。
func (r *Registry) Suggest(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	best, bestDist := "", 3
	for _, candidate := range r.order {
		if d := editDistance(name, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// ParseDeclaration splits a "name: description" declaration. The name is the
// text before the first colon; the description is the trimmed remainder.
// ParseDeclaration 解析 "name: description" 形式的声明。
func ParseDeclaration(decl string) (Marker, error) {
	name, desc, _ := strings.Cut(decl, ":")
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return Marker{}, err
	}
	return Marker{Name: name, Description: strings.TrimSpace(desc)}, nil
}

// LoadDeclarations builds a sealed registry from an ordered list of declarations.
// LoadDeclarations 从有序声明列表构建已封存的注册表。
func LoadDeclarations(decls []string) (*Registry, error) {
	r := NewRegistry()
	for _, decl := range decls {
		m, err := ParseDeclaration(decl)
		if err != nil {
			return nil, err
		}
		if err := r.Register(m.Name, m.Description); err != nil {
			return nil, err
		}
	}
	r.Seal()
	return r, nil
}

// editDistance is the Levenshtein distance over runes.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
