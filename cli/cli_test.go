package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/mvref/internal/config"
	"github.com/sokinpui/mvref/internal/fs"
	"github.com/sokinpui/mvref/internal/model"
)

func parse(t *testing.T, args ...string) (*pflag.FlagSet, *Flags) {
	t.Helper()
	f := &Flags{}
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags, f)
	BindMoveFlags(flags, f)
	require.NoError(t, flags.Parse(args))
	return flags, f
}

func TestParseMove(t *testing.T) {
	resolver, err := fs.NewPathResolver("/project")
	require.NoError(t, err)

	tests := []struct {
		arg     string
		want    model.Move
		wantErr bool
	}{
		{"lib/test.js::lib/test/test.js", model.Move{Source: "/project/lib/test.js", Destination: "/project/lib/test/test.js"}, false},
		{"/abs/a::b", model.Move{Source: "/abs/a", Destination: "/project/b"}, false},
		{"a::b::c", model.Move{Source: "/project/a", Destination: "/project/b::c"}, false},
		{"a.js", model.Move{}, true},
		{"::b", model.Move{}, true},
		{"a::", model.Move{}, true},
	}
	for _, tt := range tests {
		got, err := ParseMove(tt.arg, resolver)
		if tt.wantErr {
			assert.Error(t, err, tt.arg)
			continue
		}
		require.NoError(t, err, tt.arg)
		assert.Equal(t, tt.want, got, tt.arg)
	}
}

func TestParseMoves(t *testing.T) {
	resolver, err := fs.NewPathResolver("/project")
	require.NoError(t, err)

	moves, err := ParseMoves([]string{"a::b", "c::d"}, resolver)
	require.NoError(t, err)
	assert.Len(t, moves, 2)

	_, err = ParseMoves([]string{"a::b", "broken"}, resolver)
	assert.Error(t, err)
}

func TestResolveDefaults(t *testing.T) {
	root := t.TempDir()
	flags, f := parse(t, "--root", root)

	cfg, err := Resolve(flags, f)
	require.NoError(t, err)
	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, config.Default().ContextRadius, cfg.ContextRadius)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Yes)
}

func TestResolveFlagsOverrideFile(t *testing.T) {
	root := t.TempDir()
	yaml := "context_radius: 3\nhidden: true\nignore:\n  - \"*.snap\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte(yaml), 0o644))

	flags, f := parse(t, "-C", root)
	cfg, err := Resolve(flags, f)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.ContextRadius)
	assert.True(t, cfg.Hidden)

	flags, f = parse(t, "-C", root, "-U", "5", "--hidden=false", "-i", "dist/", "-v", "-y")
	cfg, err = Resolve(flags, f)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.ContextRadius)
	assert.False(t, cfg.Hidden)
	assert.Equal(t, []string{"*.snap", "dist/"}, cfg.Ignore)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Yes)
}

func TestResolveRejects(t *testing.T) {
	root := t.TempDir()

	flags, f := parse(t, "-C", root, "--no-rewrite", "--rewrite-only")
	_, err := Resolve(flags, f)
	assert.Error(t, err)

	flags, f = parse(t, "-C", root, "--stdin")
	_, err = Resolve(flags, f)
	assert.Error(t, err)

	flags, f = parse(t, "-C", root, "-U", "-1")
	_, err = Resolve(flags, f)
	assert.Error(t, err)

	flags, f = parse(t, "-C", root, "--config", filepath.Join(root, "missing.yaml"))
	_, err = Resolve(flags, f)
	assert.Error(t, err)
}
