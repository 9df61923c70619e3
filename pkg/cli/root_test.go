package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idforge/idforge/pkg/cliconfig"
	"github.com/idforge/idforge/pkg/idgen"
)

func TestNewGenerator_Defaults(t *testing.T) {
	gen, cleanup, err := newGenerator(&cliconfig.Env{})
	require.NoError(t, err)
	defer cleanup()

	id, err := gen.Generate(context.Background(), idgen.DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, id, 24)
}

func TestNewGenerator_AuditAndLogFiles(t *testing.T) {
	dir := t.TempDir()
	env := &cliconfig.Env{
		AuditLog: filepath.Join(dir, "audit.jsonl"),
		LogFile:  filepath.Join(dir, "idforge.log"),
		LogLevel: "info",
	}

	gen, cleanup, err := newGenerator(env)
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), idgen.DefaultConfig())
	require.NoError(t, err)
	cleanup()

	data, err := os.ReadFile(env.AuditLog)
	require.NoError(t, err)
	var event map[string]any
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "generate", event["action"])
	assert.Equal(t, true, event["success"])

	_, err = os.Stat(env.LogFile)
	assert.NoError(t, err, "log file must be created")
}

func TestNewGenerator_DebugLevelAuditSink(t *testing.T) {
	// At debug verbosity audit events fan out to the log stream next to the
	// file sink; both paths must wire without error.
	env := &cliconfig.Env{
		AuditLog: filepath.Join(t.TempDir(), "audit.jsonl"),
		LogLevel: "debug",
	}
	gen, cleanup, err := newGenerator(env)
	require.NoError(t, err)
	defer cleanup()

	_, err = gen.Generate(context.Background(), idgen.DefaultConfig())
	require.NoError(t, err)

	data, err := os.ReadFile(env.AuditLog)
	require.NoError(t, err)
	assert.NotEmpty(t, data, "file sink must still record behind the fan-out")
}

func TestNewGenerator_RateLimit(t *testing.T) {
	gen, cleanup, err := newGenerator(&cliconfig.Env{RateLimit: 1})
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	cfg := idgen.DefaultConfig()
	_, err = gen.Generate(ctx, cfg)
	require.NoError(t, err)

	_, err = gen.Generate(ctx, cfg)
	assert.ErrorIs(t, err, idgen.ErrRateLimited)
}
