package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/netxfw/testsel/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TestCase is one collected test: a node id plus the markers applied to it.
// TestCase 表示一个收集到的测试用例。
type TestCase struct {
	ID   string   `yaml:"id"`
	Tags []string `yaml:"tags"`
}

// Manifest is the on-disk list of test cases fed to "testsel select".
type Manifest struct {
	Cases []TestCase `yaml:"cases"`
}

// ParseCases decodes a manifest. Every case needs an id and ids must be unique.
// ParseCases 解析测试用例清单。
func ParseCases(data []byte) ([]TestCase, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: cases: %v", apperrors.ErrConfigInvalid, err)
	}

	seen := make(map[string]bool, len(m.Cases))
	for i := range m.Cases {
		tc := &m.Cases[i]
		tc.ID = strings.TrimSpace(tc.ID)
		if tc.ID == "" {
			return nil, apperrors.NewConfigError(fmt.Sprintf("cases[%d].id", i), `""`)
		}
		if seen[tc.ID] {
			return nil, apperrors.NewConfigError(fmt.Sprintf("cases[%d].id", i), tc.ID+" (duplicate)")
		}
		seen[tc.ID] = true
		for j, tag := range tc.Tags {
			tc.Tags[j] = strings.TrimSpace(tag)
		}
	}
	return m.Cases, nil
}

// LoadCases reads a manifest file.
// LoadCases 读取测试用例清单文件。
func LoadCases(path string) ([]TestCase, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	cases, err := ParseCases(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}
