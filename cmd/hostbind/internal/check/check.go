package check

import (
	"context"
	"fmt"

	"github.com/broady/hostbind/bindgen"
	"github.com/broady/hostbind/cmd/hostbind/internal/config"
)

type Cmd struct {
	Packages []string `arg:"" optional:"" help:"Package patterns to scan (default: from config, or the current directory)."`
}

func (c *Cmd) Run(ctx context.Context, g *config.Globals) error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return err
	}
	cfg = config.Merge(cfg, config.Flags{Packages: c.Packages})

	stale, err := bindgen.FromConfig(cfg).WithLogger(g.Logger()).Check(ctx)
	if err != nil {
		return err
	}
	if len(stale) > 0 {
		for _, path := range stale {
			fmt.Printf("✗ %s\n", path)
		}
		return fmt.Errorf("%d generated files out of date; run hostbind gen", len(stale))
	}

	fmt.Println("✓ Generated files up to date")
	return nil
}
