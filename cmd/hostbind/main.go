package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/broady/hostbind/bindgen"
	"github.com/broady/hostbind/cmd/hostbind/internal/check"
	"github.com/broady/hostbind/cmd/hostbind/internal/config"
	"github.com/broady/hostbind/cmd/hostbind/internal/gen"
)

type CLI struct {
	config.Globals

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate binding files for annotated types."`
	Check   check.Cmd  `cmd:"" help:"Report generated files that are missing or out of date."`
	Init    InitCmd    `cmd:"" help:"Write a hostbind.toml for the given packages."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

type InitCmd struct {
	Packages []string `arg:"" optional:"" help:"Package patterns to scan." default:"./..."`
	Manifest bool     `help:"Enable hostbind.json output." short:"m"`
}

func (c *InitCmd) Run(g *config.Globals) error {
	cfg := bindgen.Config{Packages: c.Packages, Manifest: c.Manifest}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(g.Config, cfg); err != nil {
		return err
	}
	fmt.Printf("✓ Wrote %s\n", g.Config)
	return nil
}

func main() {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("hostbind"),
		kong.Description("Generate script bindings for annotated Go types."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
		kong.BindTo(sigCtx, (*context.Context)(nil)),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
