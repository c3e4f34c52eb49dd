package mvref

import (
	"fmt"

	"github.com/sokinpui/mvref/cli"
	"github.com/sokinpui/mvref/internal/config"
	"github.com/sokinpui/mvref/internal/model"
	"github.com/sokinpui/mvref/internal/review"
)

// Config for using mvref as a library. Every rewrite is accepted without
// review.
type Config struct {
	// Working root; empty means the current directory.
	Root string
	// Extra gitignore-style patterns to skip.
	Ignore []string
	// Also scan hidden files and directories.
	Hidden bool
	// Only rewrite references for moves that were already made.
	RewriteOnly bool
}

// Move moves every source in moves to its destination and rewrites the
// references to them below the root. Relative paths are resolved against
// the root. It returns a summary of the operations in a map.
func Move(moves map[string]string, config Config) (map[string][]string, error) {
	cliCfg := &cli.Config{
		Config:      defaultConfig(config),
		Root:        config.Root,
		Yes:         true,
		RewriteOnly: config.RewriteOnly,
	}

	app, err := New(cliCfg, WithReviewer(review.AcceptAll{}))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mvref app: %w", err)
	}
	defer app.Close()

	resolved := make([]model.Move, 0, len(moves))
	for src, dst := range moves {
		resolved = append(resolved, model.Move{
			Source:      app.Resolver().Resolve(src),
			Destination: app.Resolver().Resolve(dst),
		})
	}

	summary, err := app.Execute(resolved)
	if err != nil {
		return nil, err
	}

	result := map[string][]string{
		"Moved":     summary.Moved,
		"Rewritten": summary.Rewritten,
		"Failed":    summary.Failed,
	}

	return result, nil
}

func defaultConfig(c Config) config.Config {
	cfg := config.Default()
	cfg.Ignore = c.Ignore
	cfg.Hidden = c.Hidden
	return cfg
}
