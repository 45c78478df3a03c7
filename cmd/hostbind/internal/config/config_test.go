package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/broady/hostbind/bindgen"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
packages = ["./scripting/...", "./plugins"]
dir = "app"
suffix = ".bind.go"
permission_marker = "requires"
tags = ["integration"]
manifest = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !slices.Equal(cfg.Packages, []string{"./scripting/...", "./plugins"}) {
		t.Errorf("Packages = %v", cfg.Packages)
	}
	if want := filepath.Join(filepath.Dir(path), "app"); cfg.Dir != want {
		t.Errorf("Dir = %q, want %q", cfg.Dir, want)
	}
	if cfg.Suffix != ".bind.go" || cfg.PermissionMarker != "requires" || !cfg.Manifest {
		t.Errorf("cfg = %+v", cfg)
	}
	if !slices.Equal(cfg.Tags, []string{"integration"}) {
		t.Errorf("Tags = %v", cfg.Tags)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config does not validate: %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Load of missing file failed: %v", err)
	}
	if len(cfg.Packages) != 0 || cfg.Manifest {
		t.Errorf("cfg = %+v, want zero", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"unknown key", "packages = [\".\"]\noutput = \"gen\"\n", "output"},
		{"wrong type", "packages = \".\"\n", FileName},
		{"syntax", "packages = [\n", FileName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	in := bindgen.Config{Packages: []string{"./..."}, Manifest: true}
	if err := Save(path, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte("suffix")) {
		t.Errorf("empty fields were written:\n%s", data)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(out.Packages, in.Packages) || out.Manifest != in.Manifest {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}

	if err := Save(path, in); err == nil {
		t.Error("Save overwrote an existing file")
	}
}

func TestMerge(t *testing.T) {
	base := bindgen.Config{Packages: []string{"./a"}, Suffix: ".bind.go", Tags: []string{"x"}}

	got := Merge(base, Flags{})
	if !slices.Equal(got.Packages, []string{"./a"}) || got.Suffix != ".bind.go" || got.Manifest {
		t.Errorf("Merge without flags = %+v", got)
	}

	got = Merge(base, Flags{Packages: []string{"./b"}, Marker: "bind", Tags: []string{"y"}, Manifest: true})
	if !slices.Equal(got.Packages, []string{"./b"}) || got.Marker != "bind" || !got.Manifest {
		t.Errorf("Merge with flags = %+v", got)
	}
	if !slices.Equal(got.Tags, []string{"y"}) {
		t.Errorf("Tags = %v, want flag value", got.Tags)
	}

	if got := Merge(bindgen.Config{}, Flags{}); !slices.Equal(got.Packages, []string{"."}) {
		t.Errorf("default Packages = %v, want [.]", got.Packages)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug message logged without verbose: %s", buf.String())
	}
	NewLogger(&buf, true).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug message not logged with verbose: %q", buf.String())
	}
}
