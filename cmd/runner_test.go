package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/shared"
	tu "github.com/desertthunder/lrcx/internal/testing"
	"github.com/urfave/cli/v3"
)

func scenarioCatalog() *tu.MockCatalog {
	mock := tu.NewMockCatalog()
	mock.Details[208902] = models.Candidate{ID: 208902, Title: "平凡之路", Artist: "朴树"}
	mock.Results["那些花儿 朴树"] = []models.Candidate{
		{ID: 5257138, Title: "那些花儿", Artist: "范玮琪", Album: "我们的纪念", DurationMS: 256000},
		{ID: 186016, Title: "那些花儿", Artist: "朴树", Album: "我去2000年", DurationMS: 170000},
	}
	mock.Lyrics[208902] = models.LyricPayload{Primary: "[00:00.00]徘徊着的 在路上的"}
	mock.Lyrics[186016] = models.LyricPayload{Primary: "[00:00.00]那片笑声让我想起"}
	return mock
}

// testRunner returns a runner over mock with pacing and backoff disabled.
func testRunner(t *testing.T, mock *tu.MockCatalog) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Fetch.Sleep = 0
	config.Fetch.Backoff = 0
	config.Fetch.OutDir = filepath.Join(t.TempDir(), "lyrics")
	config.History.Path = filepath.Join(t.TempDir(), "history.db")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:  config,
		Catalog: mock,
		Logger:  shared.NewLogger(io.Discard),
		Output:  output,
	})
	return runner, output
}

// run executes args through the full command tree.
func run(ctx context.Context, r *Runner, args ...string) error {
	return newApp(r).Run(ctx, append([]string{"lrcx"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			catalog := tu.NewMockCatalog()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Catalog:    catalog,
				HTTPClient: httpClient,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient == nil || runner.httpClient.Timeout != runner.config.Catalog.TimeoutDuration() {
				t.Error("expected httpClient with the configured timeout")
			}
			if runner.configFile() != defaultConfigPath {
				t.Errorf("expected default config path, got %s", runner.configFile())
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		commands := NewRunner(RunnerOpts{}).register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"fetch", "resolve", "search", "setup", "history"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})
}

func TestRunner_Before(t *testing.T) {
	noop := func(r *Runner, args ...string) error {
		app := newApp(r)
		app.Commands = []*cli.Command{{Name: "noop", Action: func(context.Context, *cli.Command) error { return nil }}}
		return app.Run(context.Background(), append([]string{"lrcx"}, args...))
	}

	t.Run("loads config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		config := shared.DefaultConfig()
		config.Fetch.Retries = 5
		if err := shared.SaveConfig(path, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})
		if err := noop(runner, "--config", path, "noop"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.config.Fetch.Retries != 5 {
			t.Errorf("expected retries from file, got %d", runner.config.Fetch.Retries)
		}
		if runner.configFile() != path {
			t.Errorf("expected config path %s, got %s", path, runner.configFile())
		}
	})

	t.Run("missing config keeps defaults", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})
		if err := noop(runner, "--config", filepath.Join(t.TempDir(), "missing.toml"), "noop"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.config.Fetch.OutDir != shared.DefaultConfig().Fetch.OutDir {
			t.Errorf("expected default outdir, got %s", runner.config.Fetch.OutDir)
		}
	})

	t.Run("catalog timeout from config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		config := shared.DefaultConfig()
		config.Catalog.Timeout = 2
		if err := shared.SaveConfig(path, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})
		if err := noop(runner, "--config", path, "noop"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := runner.httpClient.Timeout; got != 2*time.Second {
			t.Errorf("client timeout = %v, want 2s", got)
		}

		injected := &http.Client{Timeout: time.Minute}
		runner = NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), HTTPClient: injected})
		if err := noop(runner, "--config", path, "noop"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.httpClient != injected || injected.Timeout != time.Minute {
			t.Error("injected client should be left untouched")
		}
	})

	t.Run("invalid config values are an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		tu.MustWriteFile(t, path, "[fetch]\nretries = -1\n")

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})
		if err := noop(runner, "--config", path, "noop"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("unparsable config is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		tu.MustWriteFile(t, path, "[fetch\nretries = ")

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})
		if err := noop(runner, "--config", path, "noop"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("log file and verbose", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "logs", "lrcx.log")
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})

		if err := noop(runner, "--verbose", "--log-file", logPath, "noop"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", runner.logger.GetLevel())
		}
		if len(runner.closers) != 0 {
			t.Error("After should release the log file")
		}
		tu.AssertDirExists(t, filepath.Dir(logPath))
	})
}

func TestFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("writes lyrics for ids and free text", func(t *testing.T) {
		mock := scenarioCatalog()
		runner, output := testRunner(t, mock)
		outDir := runner.config.Fetch.OutDir

		if err := run(ctx, runner, "fetch", "--inputs", "208902,那些花儿 - 朴树"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(outDir, "平凡之路 - 朴树.lrc"))
		tu.AssertFileExists(t, filepath.Join(outDir, "那些花儿 - 朴树.lrc"))

		result := output.String()
		for _, want := range []string{"Batch Complete", "2 entries: 2 written", "[2/2] 那些花儿 - 朴树 -> written"} {
			if !strings.Contains(result, want) {
				t.Errorf("output missing %q:\n%s", want, result)
			}
		}
		if mock.CountCalls("search") != 1 {
			t.Errorf("expected one search, got %d", mock.CountCalls("search"))
		}
	})

	t.Run("positional args and input file are merged and de-duplicated", func(t *testing.T) {
		mock := scenarioCatalog()
		runner, output := testRunner(t, mock)

		file := filepath.Join(t.TempDir(), "songs.txt")
		tu.MustWriteFile(t, file, "208902\n\n那些花儿 - 朴树\n")

		if err := run(ctx, runner, "fetch", "--input", file, "208902"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "2 entries") {
			t.Errorf("expected duplicates removed:\n%s", output.String())
		}
	})

	t.Run("failures are reported without an error", func(t *testing.T) {
		runner, output := testRunner(t, scenarioCatalog())

		if err := run(ctx, runner, "fetch", "--retries", "0", "未知歌曲名12345xyz", "42"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "1 unresolved, 1 failed") {
			t.Errorf("unexpected summary:\n%s", result)
		}
		if !strings.Contains(result, "Needs attention (2)") {
			t.Errorf("expected failure list:\n%s", result)
		}
	})

	t.Run("second run skips existing files", func(t *testing.T) {
		runner, _ := testRunner(t, scenarioCatalog())
		if err := run(ctx, runner, "fetch", "208902"); err != nil {
			t.Fatalf("first run: %v", err)
		}

		output := &bytes.Buffer{}
		runner.output = output
		if err := run(ctx, runner, "fetch", "208902"); err != nil {
			t.Fatalf("second run: %v", err)
		}
		if !strings.Contains(output.String(), "1 skipped") {
			t.Errorf("expected skip on second run:\n%s", output.String())
		}
	})

	t.Run("json output", func(t *testing.T) {
		runner, output := testRunner(t, scenarioCatalog())

		if err := run(ctx, runner, "fetch", "--json", "208902"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var report models.Report
		if err := json.Unmarshal(output.Bytes(), &report); err != nil {
			t.Fatalf("invalid JSON output: %v\n%s", err, output.String())
		}
		if len(report.Outcomes) != 1 || report.Outcomes[0].Status != models.StatusWritten {
			t.Errorf("unexpected report %+v", report)
		}
	})

	t.Run("csv report", func(t *testing.T) {
		runner, _ := testRunner(t, scenarioCatalog())
		path := filepath.Join(t.TempDir(), "reports", "summary.csv")

		if err := run(ctx, runner, "fetch", "--report", path, "208902", "那些花儿 - 朴树"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, path)
		resolved := tu.MustReadFile(t, filepath.Join(filepath.Dir(path), "summary_resolved.csv"))
		if !strings.Contains(resolved, "186016") || !strings.Contains(resolved, "id_or_url") {
			t.Errorf("unexpected resolved report:\n%s", resolved)
		}
	})

	t.Run("flags override config", func(t *testing.T) {
		runner, _ := testRunner(t, scenarioCatalog())
		outDir := filepath.Join(t.TempDir(), "custom")

		if err := run(ctx, runner, "fetch", "--outdir", outDir, "--translation", "none", "208902"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(outDir, "平凡之路 - 朴树.lrc"))
		tu.AssertFileNotExists(t, filepath.Join(runner.config.Fetch.OutDir, "平凡之路 - 朴树.lrc"))
	})

	t.Run("invalid flag value", func(t *testing.T) {
		runner, _ := testRunner(t, scenarioCatalog())
		if err := run(ctx, runner, "fetch", "--translation", "both", "208902"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("no entries", func(t *testing.T) {
		runner, _ := testRunner(t, scenarioCatalog())
		if err := run(ctx, runner, "fetch", "--inputs", " , "); !errors.Is(err, shared.ErrNoEntries) {
			t.Errorf("expected ErrNoEntries, got %v", err)
		}
	})

	t.Run("cancelled batch prints partial summary and fails", func(t *testing.T) {
		runner, output := testRunner(t, scenarioCatalog())

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := run(cctx, runner, "fetch", "208902", "那些花儿 - 朴树")
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if !strings.Contains(output.String(), "Batch Cancelled") || !strings.Contains(output.String(), "Not processed: 2") {
			t.Errorf("expected partial summary:\n%s", output.String())
		}
	})
}

func TestResolveAndSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("resolve prints mapping", func(t *testing.T) {
		mock := scenarioCatalog()
		runner, output := testRunner(t, mock)

		if err := run(ctx, runner, "resolve", "208902", "那些花儿 - 朴树", "未知歌曲名12345xyz"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		for _, want := range []string{
			"208902 -> 208902 平凡之路 - 朴树 (id_or_url)",
			"那些花儿 - 朴树 -> 186016 那些花儿 - 朴树 (120.0)",
			"未知歌曲名12345xyz -> unresolved",
		} {
			if !strings.Contains(result, want) {
				t.Errorf("output missing %q:\n%s", want, result)
			}
		}
		if mock.CountCalls("lyric") != 0 {
			t.Error("resolve must not fetch lyrics")
		}
		tu.AssertFileNotExists(t, runner.config.Fetch.OutDir)
	})

	t.Run("resolve json", func(t *testing.T) {
		runner, output := testRunner(t, scenarioCatalog())

		if err := run(ctx, runner, "resolve", "--json", "那些花儿 - 朴树"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var rows []resolution
		if err := json.Unmarshal(output.Bytes(), &rows); err != nil {
			t.Fatalf("invalid JSON output: %v", err)
		}
		if len(rows) != 1 || rows[0].Track == nil || rows[0].Track.ID != 186016 || rows[0].Kind != "text" {
			t.Errorf("unexpected rows %+v", rows)
		}
	})

	t.Run("search ranks candidates", func(t *testing.T) {
		runner, output := testRunner(t, scenarioCatalog())

		if err := run(ctx, runner, "search", "那些花儿 - 朴树"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		best := strings.Index(result, "186016")
		other := strings.Index(result, "5257138")
		if best < 0 || other < 0 || best > other {
			t.Errorf("expected 186016 ranked first:\n%s", result)
		}
		if !strings.Contains(result, "2:50") {
			t.Errorf("expected formatted duration:\n%s", result)
		}
	})

	t.Run("search without query", func(t *testing.T) {
		runner, _ := testRunner(t, scenarioCatalog())
		if err := run(ctx, runner, "search"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSetup(t *testing.T) {
	ctx := context.Background()

	t.Run("config", func(t *testing.T) {
		runner, _ := testRunner(t, scenarioCatalog())
		path := filepath.Join(t.TempDir(), "config.toml")
		runner.configPath = path

		if err := runner.SetupConfig(ctx, setupCommand(runner)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("written config does not load: %v", err)
		}
		if err := runner.SetupConfig(ctx, setupCommand(runner)); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("cookie from curl", func(t *testing.T) {
		runner, output := testRunner(t, scenarioCatalog())
		path := filepath.Join(t.TempDir(), "config.toml")
		curl := `curl 'https://music.163.com/api/song/lyric?id=1' -H 'user-agent: TestAgent/1.0' -b 'MUSIC_U=abc123; os=pc'`

		if err := run(ctx, runner, "--config", path, "setup", "cookie", "--curl", curl); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		config, err := shared.LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if config.Credentials.Cookie != "MUSIC_U=abc123; os=pc" {
			t.Errorf("unexpected cookie %q", config.Credentials.Cookie)
		}
		if config.Catalog.UserAgent != "TestAgent/1.0" {
			t.Errorf("unexpected user agent %q", config.Catalog.UserAgent)
		}
		if !strings.Contains(output.String(), "Catalog cookie saved") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("cookie requires exactly one source", func(t *testing.T) {
		runner, _ := testRunner(t, scenarioCatalog())

		if err := run(ctx, runner, "setup", "cookie"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := run(ctx, runner, "setup", "cookie", "--curl", "curl x", "--curl-file", "x.sh"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("cookie missing from curl", func(t *testing.T) {
		runner, _ := testRunner(t, scenarioCatalog())
		path := filepath.Join(t.TempDir(), "config.toml")

		err := run(ctx, runner, "--config", path, "setup", "cookie", "--curl", `curl 'https://music.163.com/' -H 'accept: */*'`)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		tu.AssertFileNotExists(t, path)
	})

	t.Run("database", func(t *testing.T) {
		runner, output := testRunner(t, scenarioCatalog())

		if err := run(ctx, runner, "setup", "database"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, runner.config.History.Path)
		if !strings.Contains(output.String(), "--history") {
			t.Errorf("expected hint about enabling history:\n%s", output.String())
		}
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("records runs with --history", func(t *testing.T) {
		runner, output := testRunner(t, scenarioCatalog())

		if err := run(ctx, runner, "fetch", "--history", "208902", "未知歌曲名12345xyz"); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}

		output.Reset()
		if err := run(ctx, runner, "history", "list"); err != nil {
			t.Fatalf("history list failed: %v", err)
		}
		if !strings.Contains(output.String(), "#1") || !strings.Contains(output.String(), "1 written, 0 skipped, 1 unresolved") {
			t.Errorf("unexpected history list:\n%s", output.String())
		}

		output.Reset()
		if err := run(ctx, runner, "history", "show", "1"); err != nil {
			t.Fatalf("history show failed: %v", err)
		}
		if !strings.Contains(output.String(), "Run #1") || !strings.Contains(output.String(), "未知歌曲名12345xyz -> unresolved") {
			t.Errorf("unexpected history show:\n%s", output.String())
		}
	})

	t.Run("not recorded by default", func(t *testing.T) {
		runner, output := testRunner(t, scenarioCatalog())

		if err := run(ctx, runner, "fetch", "208902"); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		output.Reset()
		if err := run(ctx, runner, "history", "list", "--json"); err != nil {
			t.Fatalf("history list failed: %v", err)
		}
		if strings.TrimSpace(output.String()) != "[]" {
			t.Errorf("expected no runs, got %s", output.String())
		}
	})

	t.Run("show writes report and delete removes run", func(t *testing.T) {
		runner, output := testRunner(t, scenarioCatalog())
		runner.config.History.Enabled = true

		if err := run(ctx, runner, "fetch", "208902"); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}

		path := filepath.Join(t.TempDir(), "run.md")
		if err := run(ctx, runner, "history", "show", "--report", path, "1"); err != nil {
			t.Fatalf("history show failed: %v", err)
		}
		tu.AssertFileExists(t, path)

		output.Reset()
		if err := run(ctx, runner, "history", "delete", "1"); err != nil {
			t.Fatalf("history delete failed: %v", err)
		}
		if !strings.Contains(output.String(), "Deleted run #1") {
			t.Errorf("unexpected output:\n%s", output.String())
		}

		if err := run(ctx, runner, "history", "show", "1"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})
}
