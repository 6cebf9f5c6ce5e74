package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestOutputPaths(t *testing.T) {
	out, errOut := outputPaths("stdout")
	assert.Equal(t, []string{"stdout"}, out)
	assert.Equal(t, []string{"stderr"}, errOut)

	out, _ = outputPaths("")
	assert.Equal(t, []string{"stdout"}, out)

	file := filepath.Join(t.TempDir(), "logs", "promotion.log")
	out, errOut = outputPaths(file)
	assert.Equal(t, []string{file, "stdout"}, out)
	assert.Equal(t, []string{file, "stderr"}, errOut)
}

func TestNamedAndWithKeepConfig(t *testing.T) {
	l := NewNop()
	child := l.Named("sweep").With(zap.String("listing_id", "1"))
	assert.Same(t, l.config, child.config)
	assert.NotNil(t, child.Logger)
}
