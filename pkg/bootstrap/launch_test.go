package bootstrap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUvicornArgs(t *testing.T) {
	args := uvicornArgs("main:app", nil)
	joined := strings.Join(args, " ")

	assert.Equal(t, "-m uvicorn main:app --host 0.0.0.0 --port 8000 --reload", joined)
}

func TestUvicornArgsFixedAcrossProjects(t *testing.T) {
	// the module reference and reload dirs are the only degrees of
	// freedom; address and reload mode never move
	for _, module := range []string{"main:app", "app.main:app", "backend.api:application"} {
		args := strings.Join(uvicornArgs(module, []string{"shared"}), " ")
		assert.Contains(t, args, "--host 0.0.0.0")
		assert.Contains(t, args, "--port 8000")
		assert.Contains(t, args, "--reload")
		assert.Contains(t, args, "--reload-dir shared")
		assert.Equal(t, 1, strings.Count(args, "--host"))
		assert.Equal(t, 1, strings.Count(args, "--port"))
	}
}
