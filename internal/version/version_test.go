package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestVersion tests the default build version.
// TestVersion 测试默认构建版本。
func TestVersion(t *testing.T) {
	assert.NotEmpty(t, Version)
	if Version != "dev" {
		t.Logf("Version is: %s (expected 'dev' without -ldflags)", Version)
	}
}
