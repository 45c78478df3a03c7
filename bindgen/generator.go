package bindgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/broady/hostbind"
	"github.com/broady/hostbind/bindgen/decl"
	"github.com/broady/hostbind/bindgen/golang"
	"github.com/broady/hostbind/bindgen/ir"
	"github.com/broady/hostbind/bindgen/provider"
	"github.com/broady/hostbind/bindgen/sink"
)

// Generator provides a fluent API for binding generation.
// Create with FromPackages() or FromConfig() and configure with method chaining.
//
// Example:
//
//	res, err := bindgen.FromPackages("./scripting/...").
//	    WithManifest().
//	    Write(ctx)
type Generator struct {
	cfg    Config
	logger *slog.Logger
}

// FromPackages creates a Generator for the given package patterns.
func FromPackages(patterns ...string) *Generator {
	return &Generator{cfg: Config{Packages: patterns}}
}

// FromConfig creates a Generator from a complete configuration.
func FromConfig(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// Dir sets the directory package patterns are resolved in.
func (g *Generator) Dir(dir string) *Generator {
	g.cfg.Dir = dir
	return g
}

// Suffix sets the generated file suffix.
func (g *Generator) Suffix(suffix string) *Generator {
	g.cfg.Suffix = suffix
	return g
}

// Marker sets the directive prefix.
func (g *Generator) Marker(marker string) *Generator {
	g.cfg.Marker = marker
	return g
}

// PermissionMarker sets the directive holding permission expressions.
func (g *Generator) PermissionMarker(marker string) *Generator {
	g.cfg.PermissionMarker = marker
	return g
}

// Tags adds build tags used when loading packages.
func (g *Generator) Tags(tags ...string) *Generator {
	g.cfg.Tags = append(g.cfg.Tags, tags...)
	return g
}

// WithManifest enables hostbind.json output.
func (g *Generator) WithManifest() *Generator {
	g.cfg.Manifest = true
	return g
}

// WithLogger sets the logger for progress messages.
// If not set, slog.Default() will be used.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.logger = logger
	return g
}

// Config returns the configuration built so far.
func (g *Generator) Config() Config {
	return g.cfg
}

func (g *Generator) log() *slog.Logger {
	if g.logger == nil {
		return slog.Default()
	}
	return g.logger
}

// Result is the outcome of a generation run.
type Result struct {
	Packages []PackageResult
}

// PackageResult is the output for one package.
type PackageResult struct {
	Package decl.PackageInfo

	// Output holds the generated files, named relative to Package.Dir.
	Output *sink.MemorySink

	// Files describes the generated Go files.
	Files []golang.OutputFile

	// Manifest is the hostbind.json content; nil unless enabled and the
	// package has namespaces.
	Manifest *hostbind.Manifest

	// Orphans are previously generated files in Package.Dir whose source
	// no longer declares a namespace.
	Orphans []string

	// Unchanged lists the files Write found up to date.
	Unchanged []string

	Namespaces int
	Bindings   int
}

// Namespaces returns the number of namespaces generated.
func (r *Result) Namespaces() int {
	n := 0
	for _, p := range r.Packages {
		n += p.Namespaces
	}
	return n
}

// Bindings returns the number of bindings generated.
func (r *Result) Bindings() int {
	n := 0
	for _, p := range r.Packages {
		n += p.Bindings
	}
	return n
}

// Generate runs generation in memory without writing to disk.
// The first error aborts the run.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}
	cfg := g.cfg.withDefaults()
	logger := g.log()

	p := &provider.SourceProvider{
		Marker:           cfg.Marker,
		Suffix:           cfg.Suffix,
		Dir:              cfg.Dir,
		Tags:             cfg.Tags,
		PermissionMarker: cfg.PermissionMarker,
	}

	start := time.Now()
	pkgs, err := p.Load(ctx, cfg.Packages...)
	if err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "packages loaded",
		slog.Int("packages", len(pkgs)),
		slog.Duration("duration", time.Since(start)))

	res := &Result{}
	for _, pkg := range pkgs {
		pr, err := generatePackage(ctx, cfg, pkg)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg.Info.Path, err)
		}
		logger.DebugContext(ctx, "package generated",
			slog.String("package", pkg.Info.Path),
			slog.Int("namespaces", pr.Namespaces),
			slog.Int("bindings", pr.Bindings),
			slog.Int("orphans", len(pr.Orphans)))
		res.Packages = append(res.Packages, pr)
	}
	return res, nil
}

func generatePackage(ctx context.Context, cfg Config, pkg provider.Package) (PackageResult, error) {
	pr := PackageResult{
		Package: pkg.Info,
		Output:  sink.NewMemorySink(),
	}

	schema, err := BuildSchema(pkg.Info, pkg.Namespaces, BuildOptions{PermissionMarker: cfg.PermissionMarker})
	if err != nil {
		return pr, err
	}

	gen, err := golang.Generate(ctx, schema, golang.GenerateOptions{Sink: pr.Output, Suffix: cfg.Suffix})
	if err != nil {
		return pr, err
	}
	pr.Files = gen.Files
	pr.Namespaces = gen.Namespaces
	pr.Bindings = gen.Bindings

	if cfg.Manifest && gen.Namespaces > 0 {
		pr.Manifest = NewManifest(schema)
		data, err := pr.Manifest.JSON()
		if err != nil {
			return pr, fmt.Errorf("encode manifest: %w", err)
		}
		if err := pr.Output.WriteFile(ctx, ManifestName, data); err != nil {
			return pr, err
		}
	}

	pr.Orphans, err = orphans(pkg.Info.Dir, cfg.Suffix, pr.Output.Paths())
	if err != nil {
		return pr, err
	}
	return pr, nil
}

// NewManifest describes the namespaces of schema, in file order.
func NewManifest(schema *ir.Schema) *hostbind.Manifest {
	m := &hostbind.Manifest{Version: hostbind.ManifestVersion}
	for _, ns := range schema.Namespaces() {
		bindings := make([]hostbind.MethodBinding, len(ns.Bindings))
		for i, b := range ns.Bindings {
			bindings[i] = b.Descriptor
		}
		m.Namespaces = append(m.Namespaces, hostbind.DescribeNamespace(ns.Name, ns.Description, bindings))
	}
	return m
}

// orphans lists the generated files in dir that are not in produced.
func orphans(dir, suffix string, produced []string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read package directory: %w", err)
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, suffix) || slices.Contains(produced, name) {
			continue
		}
		src, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if golang.IsGenerated(src) {
			out = append(out, name)
		}
	}
	return out, nil
}

// Write generates and writes the output next to each package's sources.
// Orphaned generated files are removed. Nothing is written when generation
// fails.
func (g *Generator) Write(ctx context.Context) (*Result, error) {
	res, err := g.Generate(ctx)
	if err != nil {
		return nil, err
	}
	logger := g.log()

	for i := range res.Packages {
		pr := &res.Packages[i]
		fs := sink.NewFilesystemSink(pr.Package.Dir)
		for _, path := range pr.Output.Paths() {
			if err := fs.WriteFile(ctx, path, pr.Output.Get(path)); err != nil {
				return nil, fmt.Errorf("write %s: %w", filepath.Join(pr.Package.Dir, path), err)
			}
		}
		pr.Unchanged = fs.Unchanged()

		for _, name := range pr.Orphans {
			path := filepath.Join(pr.Package.Dir, name)
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("remove orphaned file: %w", err)
			}
			logger.InfoContext(ctx, "removed orphaned file", slog.String("path", path))
		}

		logger.InfoContext(ctx, "bindings generated",
			slog.String("package", pr.Package.Path),
			slog.Int("files", len(pr.Output.Paths())),
			slog.Int("unchanged", len(pr.Unchanged)),
			slog.Int("namespaces", pr.Namespaces),
			slog.Int("bindings", pr.Bindings))
	}
	return res, nil
}

// Check generates in memory and returns the paths of generated files that
// are missing, out of date or orphaned. It writes nothing.
func (g *Generator) Check(ctx context.Context) ([]string, error) {
	res, err := g.Generate(ctx)
	if err != nil {
		return nil, err
	}

	var stale []string
	for _, pr := range res.Packages {
		cs := sink.NewCheckSink(pr.Package.Dir)
		for _, path := range pr.Output.Paths() {
			if err := cs.WriteFile(ctx, path, pr.Output.Get(path)); err != nil {
				return nil, err
			}
		}
		for _, path := range cs.Stale() {
			stale = append(stale, filepath.Join(pr.Package.Dir, path))
		}
		for _, name := range pr.Orphans {
			stale = append(stale, filepath.Join(pr.Package.Dir, name))
		}
	}
	slices.Sort(stale)

	if len(stale) > 0 {
		g.log().DebugContext(ctx, "generated files out of date", slog.Any("paths", stale))
	}
	return stale, nil
}
