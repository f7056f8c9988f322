package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, source string
		want           string
	}{
		{"", "/var/log", "log"},
		{"", "/var/log/", "log"},
		{"", "home.tree.json", "home"},
		{"", "home.layout.json", "home"},
		{"", ".", appName},
		{"out/map.svg", "/var/log", "out/map"},
		{"out/map", "/var/log", "out/map"},
		{"out/map.v2", "/var/log", "out/map.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.source); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.source, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "json": []byte("{}")}

	paths, err := writeArtifacts(artifacts, []string{"svg", "json"}, filepath.Join(dir, "map"), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || paths[0] != filepath.Join(dir, "map.svg") || paths[1] != filepath.Join(dir, "map.json") {
		t.Errorf("paths = %v", paths)
	}

	single := filepath.Join(dir, "exact.out")
	paths, err = writeArtifacts(artifacts, []string{"svg"}, filepath.Join(dir, "ignored"), single)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != single {
		t.Errorf("single output paths = %v", paths)
	}
	if data, _ := os.ReadFile(single); string(data) != "<svg/>" {
		t.Errorf("written data = %q", data)
	}
}

func newTestCLI() *CLI {
	var buf bytes.Buffer
	return New(&buf, log.InfoLevel)
}

func TestBaseOptionsFromConfig(t *testing.T) {
	c := newTestCLI()
	c.Config.Width = 1200
	c.Config.Depth = 0
	c.Config.Palette = "depth"

	opts := c.baseOptions()
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatal(err)
	}
	if opts.Width != 1200 || opts.Palette != "depth" {
		t.Errorf("opts = %gx%g %q", opts.Width, opts.Height, opts.Palette)
	}
	if opts.Depth != 0 {
		t.Errorf("configured depth 0 should be kept, got %d", opts.Depth)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	c := newTestCLI()
	c.Config.Width = 1200
	c.Config.Height = 900
	c.Config.Exclude = []string{"node_modules/"}

	var (
		sf scanFlags
		lf layoutFlags
		rf renderFlags
	)
	cmd := &cobra.Command{Use: "test"}
	sf.register(cmd)
	lf.register(cmd)
	rf.register(cmd)
	if err := cmd.Flags().Parse([]string{"--height", "300", "--depth", "3", "-x", "*.tmp", "-f", "svg,png", "--focus", "src"}); err != nil {
		t.Fatal(err)
	}

	opts := c.baseOptions()
	sf.apply(cmd, &opts, []string{"/data"})
	lf.apply(cmd, &opts)
	rf.apply(cmd, &opts)

	if opts.Root != "/data" || opts.Input != "" {
		t.Errorf("input = %q/%q", opts.Root, opts.Input)
	}
	if opts.Width != 1200 {
		t.Errorf("unset --width should keep config, got %g", opts.Width)
	}
	if opts.Height != 300 || opts.Depth != 3 || opts.Focus != "src" {
		t.Errorf("flags not applied: %gx%g depth=%d focus=%q", opts.Width, opts.Height, opts.Depth, opts.Focus)
	}
	if len(opts.Exclude) != 1 || opts.Exclude[0] != "*.tmp" {
		t.Errorf("Exclude = %v", opts.Exclude)
	}
	if len(opts.Formats) != 2 || opts.Formats[1] != "png" {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.Style != c.Config.Style {
		t.Errorf("Style = %q, want config %q", opts.Style, c.Config.Style)
	}
}

func TestInputFlagWins(t *testing.T) {
	var opts pipeline.Options
	inputOptions(&opts, []string{"/data"}, "tree.json")
	if opts.Input != "tree.json" || opts.Root != "" {
		t.Errorf("inputOptions = %q/%q", opts.Root, opts.Input)
	}
}

func TestRootCommandRegistersCommands(t *testing.T) {
	root := newTestCLI().RootCommand()
	want := []string{"scan", "verify", "layout", "visualize", "render", "view", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("width: 800\npalette: depth\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := newTestCLI()
	c.configPath = path
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig() = %v", err)
	}
	if c.Config.Width != 800 || c.Config.Palette != "depth" {
		t.Errorf("config = %+v", c.Config)
	}
	if c.Config.Height != 400 {
		t.Errorf("unset height should keep default, got %g", c.Config.Height)
	}
}
