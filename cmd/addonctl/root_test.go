// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/addonctl/addonctl/internal/issue"
	"github.com/addonctl/addonctl/internal/testutil"
	"github.com/addonctl/addonctl/internal/worlddir"
	"github.com/addonctl/addonctl/pkg/addon"
)

const (
	behaviorUUID = "11111111-1111-1111-1111-111111111111"
	resourceUUID = "22222222-2222-2222-2222-222222222222"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the command tree with an isolated config directory and
// environment.
func runCLI(t *testing.T, cfgDir string, env map[string]string, args ...string) cliResult {
	t.Helper()

	if env == nil {
		env = map[string]string{}
	}
	var stdout, stderr bytes.Buffer
	app, err := NewApp(Dependencies{
		Stdout:      &stdout,
		Stderr:      &stderr,
		Environment: env,
		ConfigDir:   cfgDir,
	})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err = root.ExecuteContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func behaviorPack(version any) testutil.Pack {
	return testutil.Pack{Name: "Mobs", UUID: behaviorUUID, Version: version, Modules: []string{"data"}}
}

func resourcePack(version any) testutil.Pack {
	return testutil.Pack{Name: "Textures", UUID: resourceUUID, Version: version, Modules: []string{"resources"}}
}

func listJSON(t *testing.T, cfgDir, world string, extra ...string) []packRecord {
	t.Helper()
	args := append([]string{"-C", world, "list", "-o", "json"}, extra...)
	res := runCLI(t, cfgDir, nil, args...)
	if res.err != nil {
		t.Fatalf("list: %v\n%s", res.err, res.stderr)
	}
	var records []packRecord
	if err := json.Unmarshal([]byte(res.stdout), &records); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, res.stdout)
	}
	return records
}

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got := getVersionString(); got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestInstallPositionalAndList(t *testing.T) {
	t.Parallel()

	world := testutil.NewWorld(t)
	cfgDir := t.TempDir()
	src := testutil.WriteMcpack(t, filepath.Join(t.TempDir(), "mobs.mcpack"), behaviorPack("1.0.0"))

	res := runCLI(t, cfgDir, nil, "-C", world, src)
	if res.err != nil {
		t.Fatalf("install: %v\n%s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "installed Mobs [1.0.0]") {
		t.Errorf("stdout = %q, want install report", res.stdout)
	}

	records := listJSON(t, cfgDir, world)
	if len(records) != 1 {
		t.Fatalf("records = %+v, want one pack", records)
	}
	if records[0].Kind != "behavior" || records[0].UUID != behaviorUUID || records[0].Version != "1.0.0" {
		t.Errorf("record = %+v", records[0])
	}

	// Re-running converges on a skip.
	res = runCLI(t, cfgDir, nil, "-C", world, "install", src)
	if res.err != nil {
		t.Fatalf("second install: %v", res.err)
	}
	if !strings.Contains(res.stdout, "already installed") {
		t.Errorf("stdout = %q, want skip report", res.stdout)
	}
}

func TestInstallAddonAndFilterList(t *testing.T) {
	t.Parallel()

	world := testutil.NewWorld(t)
	cfgDir := t.TempDir()
	src := testutil.WriteMcaddon(t, filepath.Join(t.TempDir(), "bundle.mcaddon"), map[string]testutil.Pack{
		"bp": behaviorPack([]int{1, 0, 0}),
		"rp": resourcePack([]int{1, 0, 0}),
	})

	if res := runCLI(t, cfgDir, nil, "-C", world, "install", src); res.err != nil {
		t.Fatalf("install: %v\n%s", res.err, res.stderr)
	}

	all := listJSON(t, cfgDir, world)
	if len(all) != 2 || all[0].Kind != "resource" || all[1].Kind != "behavior" {
		t.Errorf("list = %+v, want resource then behavior", all)
	}

	onlyBehavior := listJSON(t, cfgDir, world, "-b")
	if len(onlyBehavior) != 1 || onlyBehavior[0].Name != "Mobs" {
		t.Errorf("list -b = %+v", onlyBehavior)
	}

	onlyResource := listJSON(t, cfgDir, world, "-r")
	if len(onlyResource) != 1 || onlyResource[0].Name != "Textures" {
		t.Errorf("list -r = %+v", onlyResource)
	}
}

func TestBatchFailureExitsWithError(t *testing.T) {
	t.Parallel()

	world := testutil.NewWorld(t)
	batch := t.TempDir()
	testutil.WritePack(t, filepath.Join(batch, "good"), behaviorPack("1.0.0"))
	testutil.MustWriteFile(t, filepath.Join(batch, "bad", "manifest.json"), `{"header": {}}`)

	res := runCLI(t, t.TempDir(), nil, "-C", world, "install", "--batch", batch)
	if res.err == nil {
		t.Fatal("expected the batch to fail")
	}
	if !addon.IsBatchError(res.err) {
		t.Errorf("err = %v, want a batch error", res.err)
	}
	var svcErr *ServiceError
	if !errors.As(res.err, &svcErr) || svcErr.IssueID != issue.BatchInstallFailedId {
		t.Errorf("err = %#v, want ServiceError with BatchInstallFailedId", res.err)
	}
	if !strings.Contains(res.stdout, "installed Mobs") {
		t.Errorf("stdout = %q, the good pack should still be installed", res.stdout)
	}
}

func TestListOutputFormats(t *testing.T) {
	t.Parallel()

	world := testutil.NewWorld(t)
	cfgDir := t.TempDir()
	src := testutil.WritePack(t, t.TempDir(), resourcePack("2.1.0"))
	if res := runCLI(t, cfgDir, nil, "-C", world, "install", src); res.err != nil {
		t.Fatalf("install: %v", res.err)
	}

	tests := []struct {
		format string
		want   []string
	}{
		{"table", []string{"Textures", "2.1.0", "resource", "1 pack(s)"}},
		{"yaml", []string{"- kind: resource", "name: Textures", "version: 2.1.0"}},
		{"toml", []string{"[[packs]]", "kind = ", "Textures"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			res := runCLI(t, cfgDir, nil, "-C", world, "list", "-o", tt.format)
			if res.err != nil {
				t.Fatalf("list: %v", res.err)
			}
			for _, w := range tt.want {
				if !strings.Contains(res.stdout, w) {
					t.Errorf("output missing %q:\n%s", w, res.stdout)
				}
			}
		})
	}

	if res := runCLI(t, cfgDir, nil, "-C", world, "list", "-o", "xml"); res.err == nil {
		t.Error("expected an unknown format to fail")
	}
}

func TestListFormatFromEnvironment(t *testing.T) {
	t.Parallel()

	world := testutil.NewWorld(t)
	res := runCLI(t, t.TempDir(), map[string]string{"ADDONCTL_OUTPUT": "json"}, "-C", world, "list")
	if res.err != nil {
		t.Fatalf("list: %v", res.err)
	}
	if strings.TrimSpace(res.stdout) != "[]" {
		t.Errorf("stdout = %q, want an empty JSON array", res.stdout)
	}
}

func TestRemoveCrossKindCollision(t *testing.T) {
	t.Parallel()

	world := testutil.NewWorld(t)
	cfgDir := t.TempDir()
	bp := behaviorPack("1.0.0")
	rp := resourcePack("1.0.0")
	rp.Name = bp.Name
	for _, p := range []testutil.Pack{bp, rp} {
		if res := runCLI(t, cfgDir, nil, "-C", world, "install", testutil.WritePack(t, t.TempDir(), p)); res.err != nil {
			t.Fatalf("install: %v", res.err)
		}
	}

	res := runCLI(t, cfgDir, nil, "-C", world, "remove", "Mobs")
	if !errors.Is(res.err, addon.ErrCrossKindNameCollision) {
		t.Fatalf("err = %v, want cross-kind collision", res.err)
	}
	if classifyError(res.err) != issue.CrossKindNameCollisionId {
		t.Errorf("classifyError = %d", classifyError(res.err))
	}

	res = runCLI(t, cfgDir, nil, "-C", world, "remove", "Mobs", "--all")
	if res.err != nil {
		t.Fatalf("remove --all: %v", res.err)
	}
	if strings.Count(res.stdout, "removed") != 2 {
		t.Errorf("stdout = %q, want two removals", res.stdout)
	}
	if got := listJSON(t, cfgDir, world); len(got) != 0 {
		t.Errorf("list after remove = %+v", got)
	}
}

func TestShowRaw(t *testing.T) {
	t.Parallel()

	world := testutil.NewWorld(t)
	cfgDir := t.TempDir()
	p := behaviorPack("3.0.0")
	p.Description = "Adds more mobs"
	if res := runCLI(t, cfgDir, nil, "-C", world, "install", testutil.WritePack(t, t.TempDir(), p)); res.err != nil {
		t.Fatalf("install: %v", res.err)
	}

	res := runCLI(t, cfgDir, nil, "-C", world, "show", "--raw", behaviorUUID)
	if res.err != nil {
		t.Fatalf("show: %v", res.err)
	}
	for _, want := range []string{"# Mobs", "Adds more mobs", "| Version | 3.0.0 |", "| Kind | behavior |", "data"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("show output missing %q:\n%s", want, res.stdout)
		}
	}

	res = runCLI(t, cfgDir, nil, "-C", world, "show", "Nope")
	if !errors.Is(res.err, addon.ErrPackNotFound) {
		t.Errorf("show unknown = %v, want ErrPackNotFound", res.err)
	}
}

func TestExport(t *testing.T) {
	t.Parallel()

	world := testutil.NewWorld(t)
	cfgDir := t.TempDir()
	if res := runCLI(t, cfgDir, nil, "-C", world, "install", testutil.WritePack(t, t.TempDir(), resourcePack("1.0.0"))); res.err != nil {
		t.Fatalf("install: %v", res.err)
	}

	out := filepath.Join(t.TempDir(), "textures.mcpack")
	res := runCLI(t, cfgDir, nil, "-C", world, "export", "Textures", "-o", out)
	if res.err != nil {
		t.Fatalf("export: %v", res.err)
	}
	if !testutil.Exists(out) {
		t.Fatal("archive not written")
	}

	// The exported archive installs into another world.
	other := testutil.NewWorld(t)
	if res := runCLI(t, cfgDir, nil, "-C", other, out); res.err != nil {
		t.Fatalf("install exported archive: %v", res.err)
	}
	if got := listJSON(t, cfgDir, other); len(got) != 1 || got[0].UUID != resourceUUID {
		t.Errorf("list = %+v", got)
	}
}

func TestHistory(t *testing.T) {
	t.Parallel()

	world := testutil.NewWorld(t)
	cfgDir := t.TempDir()

	res := runCLI(t, cfgDir, nil, "-C", world, "history")
	if res.err != nil {
		t.Fatalf("history on empty world: %v", res.err)
	}
	if !strings.Contains(res.stdout, "No history recorded") {
		t.Errorf("stdout = %q", res.stdout)
	}

	for _, v := range []string{"1.0.0", "1.1.0"} {
		if r := runCLI(t, cfgDir, nil, "-C", world, "install", testutil.WritePack(t, t.TempDir(), behaviorPack(v))); r.err != nil {
			t.Fatalf("install %s: %v", v, r.err)
		}
	}
	if r := runCLI(t, cfgDir, nil, "-C", world, "remove", behaviorUUID); r.err != nil {
		t.Fatalf("remove: %v", r.err)
	}

	res = runCLI(t, cfgDir, nil, "-C", world, "history", "-o", "json")
	if res.err != nil {
		t.Fatalf("history: %v", res.err)
	}
	var events []eventRecord
	if err := json.Unmarshal([]byte(res.stdout), &events); err != nil {
		t.Fatalf("history output is not JSON: %v\n%s", err, res.stdout)
	}
	if len(events) != 3 {
		t.Fatalf("events = %+v, want 3", events)
	}
	if events[0].Action != "removed" || events[1].Action != "upgraded" || events[2].Action != "installed" {
		t.Errorf("actions = %s, %s, %s", events[0].Action, events[1].Action, events[2].Action)
	}
	if events[1].Previous != "1.0.0" || events[1].Version != "1.1.0" {
		t.Errorf("upgrade event = %+v", events[1])
	}

	res = runCLI(t, cfgDir, nil, "-C", world, "history", "-o", "json", "--limit", "1")
	if res.err != nil {
		t.Fatalf("history --limit: %v", res.err)
	}
	if err := json.Unmarshal([]byte(res.stdout), &events); err != nil || len(events) != 1 {
		t.Errorf("history --limit 1 = %s (err %v)", res.stdout, err)
	}
}

func TestJournalDisabled(t *testing.T) {
	t.Parallel()

	world := testutil.NewWorld(t)
	env := map[string]string{"ADDONCTL_JOURNAL": "false"}
	if r := runCLI(t, t.TempDir(), env, "-C", world, "install", testutil.WritePack(t, t.TempDir(), behaviorPack("1.0.0"))); r.err != nil {
		t.Fatalf("install: %v", r.err)
	}
	if testutil.Exists(filepath.Join(world, ".addonctl")) {
		t.Error("journal written although disabled")
	}
}

func TestServerRootWorldSelection(t *testing.T) {
	t.Parallel()

	root, world := testutil.NewServer(t, "Survival")
	cfgDir := t.TempDir()
	src := testutil.WritePack(t, t.TempDir(), behaviorPack("1.0.0"))

	res := runCLI(t, cfgDir, nil, "-C", root, "install", src)
	if !errors.Is(res.err, worlddir.ErrWorldNotFound) {
		t.Fatalf("default world: err = %v, want ErrWorldNotFound", res.err)
	}
	if classifyError(res.err) != issue.WorldNotFoundId {
		t.Errorf("classifyError = %d, want WorldNotFoundId", classifyError(res.err))
	}

	if res := runCLI(t, cfgDir, nil, "-C", root, "-w", "Survival", "install", src); res.err != nil {
		t.Fatalf("install with -w: %v", res.err)
	}
	if !testutil.Exists(filepath.Join(world, "world_behavior_packs.json")) {
		t.Error("registry not written into worlds/Survival")
	}

	// The world name can also come from the environment.
	if got := runCLI(t, cfgDir, map[string]string{"ADDONCTL_WORLD": "Survival"}, "-C", root, "list", "-o", "json"); got.err != nil || !strings.Contains(got.stdout, behaviorUUID) {
		t.Errorf("list with ADDONCTL_WORLD: err=%v stdout=%s", got.err, got.stdout)
	}
}

func TestIllegalWorkingDirectory(t *testing.T) {
	t.Parallel()

	res := runCLI(t, t.TempDir(), nil, "-C", t.TempDir(), "list")
	if !errors.Is(res.err, worlddir.ErrIllegalWorkingDir) {
		t.Fatalf("err = %v, want ErrIllegalWorkingDir", res.err)
	}

	// Forcing the level type accepts any directory.
	if res := runCLI(t, t.TempDir(), nil, "-C", t.TempDir(), "--force-dirtype", "level", "list"); res.err != nil {
		t.Errorf("forced level: %v", res.err)
	}
}

func TestConfigCommands(t *testing.T) {
	t.Parallel()

	cfgDir := t.TempDir()

	res := runCLI(t, cfgDir, nil, "config", "path")
	if res.err != nil || strings.TrimSpace(res.stdout) != filepath.Join(cfgDir, "config.cue") {
		t.Fatalf("config path = %q (err %v)", res.stdout, res.err)
	}

	if res := runCLI(t, cfgDir, nil, "config", "init"); res.err != nil {
		t.Fatalf("config init: %v", res.err)
	}
	if !testutil.Exists(filepath.Join(cfgDir, "config.cue")) {
		t.Fatal("config init did not write the file")
	}

	if res := runCLI(t, cfgDir, nil, "config", "set", "ui.output", "yaml"); res.err != nil {
		t.Fatalf("config set: %v", res.err)
	}
	if res := runCLI(t, cfgDir, nil, "config", "set", "ui.output", "xml"); res.err == nil {
		t.Error("config set accepted an invalid output format")
	}
	if res := runCLI(t, cfgDir, nil, "config", "set", "editor", "vim"); res.err == nil {
		t.Error("config set accepted an unknown key")
	}

	res = runCLI(t, cfgDir, nil, "config", "show")
	if res.err != nil {
		t.Fatalf("config show: %v", res.err)
	}
	for _, want := range []string{filepath.Join(cfgDir, "config.cue"), "output: yaml", "default_world: Bedrock level"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("config show missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestBrokenConfigFails(t *testing.T) {
	t.Parallel()

	cfgDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), `dir_type: "cave"`)

	res := runCLI(t, cfgDir, nil, "-C", testutil.NewWorld(t), "list")
	var svcErr *ServiceError
	if !errors.As(res.err, &svcErr) || svcErr.IssueID != issue.ConfigLoadFailedId {
		t.Errorf("err = %v, want ServiceError with ConfigLoadFailedId", res.err)
	}
}

func TestErrorStyleFollowsColorScheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config string
		want   string
	}{
		{"no config file", "", "auto"},
		{"light", `ui: color_scheme: "light"`, "light"},
		{"auto", `ui: color_scheme: "auto"`, "auto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfgDir := t.TempDir()
			if tt.config != "" {
				testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), tt.config)
			}
			var out bytes.Buffer
			app, err := NewApp(Dependencies{Stdout: &out, Stderr: &out, Environment: map[string]string{}, ConfigDir: cfgDir})
			if err != nil {
				t.Fatal(err)
			}
			if got := app.errorStyle(); got != "auto" {
				t.Errorf("errorStyle() before loading = %q, want auto", got)
			}

			root := NewRootCommand(app)
			root.SetArgs([]string{"-C", t.TempDir(), "list"})
			root.SetOut(&out)
			root.SetErr(&out)
			root.SilenceUsage = true
			root.SilenceErrors = true
			if err := root.ExecuteContext(context.Background()); err == nil {
				t.Fatal("expected list outside a world to fail")
			}

			if got := app.errorStyle(); got != tt.want {
				t.Errorf("errorStyle() = %q, want %q", got, tt.want)
			}
		})
	}
}
