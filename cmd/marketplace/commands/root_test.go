package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubcommandsRegistered(t *testing.T) {
	for _, path := range [][]string{{"serve"}, {"migrate"}, {"users", "add"}} {
		cmd, _, err := rootCmd.Find(path)
		assert.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestBadConfigStopsBeforeDatabase(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	rootCmd.SetArgs([]string{"migrate", "--config", missing})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configPath = ""
	})

	err := rootCmd.Execute()

	assert.ErrorContains(t, err, "read config file")
}
