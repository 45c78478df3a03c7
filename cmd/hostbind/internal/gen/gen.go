package gen

import (
	"context"
	"fmt"

	"github.com/broady/hostbind/bindgen"
	"github.com/broady/hostbind/cmd/hostbind/internal/config"
)

type Cmd struct {
	Packages []string `arg:"" optional:"" help:"Package patterns to scan (default: from config, or the current directory)."`
	Manifest bool     `help:"Write hostbind.json next to the generated files." short:"m"`
	Suffix   string   `help:"Generated file suffix (default: _hostbind.go)."`
	Marker   string   `help:"Directive prefix (default: hostbind)."`
	Tags     []string `help:"Build tags used when loading packages." sep:","`
}

func (c *Cmd) Run(ctx context.Context, g *config.Globals) error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return err
	}
	cfg = config.Merge(cfg, config.Flags{
		Packages: c.Packages,
		Suffix:   c.Suffix,
		Marker:   c.Marker,
		Tags:     c.Tags,
		Manifest: c.Manifest,
	})

	res, err := bindgen.FromConfig(cfg).WithLogger(g.Logger()).Write(ctx)
	if err != nil {
		return err
	}

	var files, unchanged int
	for _, p := range res.Packages {
		files += len(p.Output.Paths())
		unchanged += len(p.Unchanged)
	}
	fmt.Printf("✓ %d namespaces, %d bindings\n", res.Namespaces(), res.Bindings())
	fmt.Printf("✓ %d files written, %d unchanged\n", files-unchanged, unchanged)
	return nil
}
