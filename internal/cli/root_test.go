package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/steviee/cdl/internal/curseforge"
	"github.com/steviee/cdl/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand("1.0.0", "abc123", "2025-11-05", "goreleaser")

	assert.Equal(t, "cdl [flags] <query...>", cmd.Use)
	assert.Equal(t, "Search and download Minecraft mods from CurseForge", cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Example)
	assert.True(t, cmd.SilenceErrors)
	assert.True(t, cmd.SilenceUsage)
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	tests := []struct {
		name     string
		flagName string
		wantType string
	}{
		{name: "has config flag", flagName: "config", wantType: "string"},
		{name: "has json flag", flagName: "json", wantType: "bool"},
		{name: "has quiet flag", flagName: "quiet", wantType: "bool"},
		{name: "has verbose flag", flagName: "verbose", wantType: "bool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCommand("dev", "unknown", "unknown", "unknown")

			flag := cmd.PersistentFlags().Lookup(tt.flagName)
			require.NotNil(t, flag, "flag %s should exist", tt.flagName)
			assert.Equal(t, tt.wantType, flag.Value.Type())
		})
	}
}

func TestRootCommand_SearchFlags(t *testing.T) {
	tests := []struct {
		flagName  string
		shorthand string
		wantType  string
	}{
		{flagName: "mod-loader", shorthand: "l", wantType: "string"},
		{flagName: "game-version", shorthand: "v", wantType: "string"},
		{flagName: "sort", shorthand: "s", wantType: "string"},
		{flagName: "amount", shorthand: "a", wantType: "int"},
		{flagName: "github", shorthand: "g", wantType: "bool"},
		{flagName: "dir", shorthand: "d", wantType: "string"},
		{flagName: "select", wantType: "string"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			cmd := NewRootCommand("dev", "unknown", "unknown", "unknown")

			flag := cmd.Flags().Lookup(tt.flagName)
			require.NotNil(t, flag, "flag %s should exist", tt.flagName)
			assert.Equal(t, tt.wantType, flag.Value.Type())
			assert.Equal(t, tt.shorthand, flag.Shorthand)
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	tests := []struct {
		commandName string
		wantShort   string
	}{
		{commandName: "version", wantShort: "Print version information"},
		{commandName: "config", wantShort: "Manage configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.commandName, func(t *testing.T) {
			cmd := NewRootCommand("dev", "unknown", "unknown", "unknown")

			subCmd := findCommand(cmd, tt.commandName)
			require.NotNil(t, subCmd, "command %s should exist", tt.commandName)
			assert.Equal(t, tt.wantShort, subCmd.Short)
		})
	}
}

// execute runs a fresh root command with the given stdin and returns stdout
// and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand("dev", "unknown", "unknown", "unknown")
	cmd.SetArgs(args)

	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand_Execute(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	tests := []struct {
		name       string
		args       []string
		wantOutput string
		wantErr    string
	}{
		{
			name:       "help flag",
			args:       []string{"--help"},
			wantOutput: "cdl searches CurseForge for Minecraft mods",
		},
		{
			name:       "no query prints help",
			args:       []string{},
			wantOutput: "Usage:",
		},
		{
			name:       "version command",
			args:       []string{"version"},
			wantOutput: "cdl version dev",
		},
		{
			name:    "invalid mod loader",
			args:    []string{"-l", "quilt", "jei"},
			wantErr: "invalid mod_loader",
		},
		{
			name:    "amount out of range",
			args:    []string{"-a", "51", "jei"},
			wantErr: "amount must be between 1 and 50",
		},
		{
			name:    "github with select",
			args:    []string{"-g", "--select", "1", "github.com/a/b"},
			wantErr: "none of the others can be",
		},
		{
			name:    "github with json",
			args:    []string{"-g", "--json", "github.com/a/b"},
			wantErr: "--json is not supported with --github",
		},
		{
			name:    "github with several urls",
			args:    []string{"-g", "github.com/a/b", "github.com/c/d"},
			wantErr: "single repository URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, "", tt.args...)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, stdout, tt.wantOutput)
		})
	}
}

func TestRootCommand_FlagInteractions(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "json and quiet flags are mutually exclusive",
			args:    []string{"--json", "--quiet", "version"},
			wantErr: true,
			errMsg:  "if any flags in the group [json quiet] are set none of the others can be",
		},
		{
			name:    "verbose and quiet flags are mutually exclusive",
			args:    []string{"--verbose", "--quiet", "version"},
			wantErr: true,
			errMsg:  "if any flags in the group [verbose quiet] are set none of the others can be",
		},
		{
			name:    "json and verbose flags can be used together",
			args:    []string{"--json", "--verbose", "version"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)

			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetLogger(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, _, err := execute(t, "", "version")
	require.NoError(t, err)

	assert.NotNil(t, GetLogger())
}

func TestFlagAccessors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	tests := []struct {
		name     string
		args     []string
		accessor func() bool
		want     bool
	}{
		{name: "IsJSONOutput with --json", args: []string{"--json", "version"}, accessor: IsJSONOutput, want: true},
		{name: "IsJSONOutput without --json", args: []string{"version"}, accessor: IsJSONOutput, want: false},
		{name: "IsQuiet with --quiet", args: []string{"--quiet", "version"}, accessor: IsQuiet, want: true},
		{name: "IsQuiet without --quiet", args: []string{"version"}, accessor: IsQuiet, want: false},
		{name: "IsVerbose with --verbose", args: []string{"--verbose", "version"}, accessor: IsVerbose, want: true},
		{name: "IsVerbose without --verbose", args: []string{"version"}, accessor: IsVerbose, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			require.NoError(t, err)

			assert.Equal(t, tt.want, tt.accessor())
		})
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")

	stdout, _, err := execute(t, "", "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", stdout)

	_, _, err = execute(t, "", "--config", path, "config", "set", "amount", "12")
	require.NoError(t, err)

	cfg, err := state.LoadConfigFrom(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Amount)
}

// fakeAPI serves search, mod, file and download endpoints for a single mod
// with one hard dependency.
type fakeAPI struct {
	server *httptest.Server

	mu       sync.Mutex
	searches []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{}
	mux := http.NewServeMux()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.searches = append(api.searches, r.URL.RawQuery)
		api.mu.Unlock()

		version := r.URL.Query().Get("gameVersion")
		writeJSONBody(w, []curseforge.SearchResult{modJSON(238222, "Just Enough Items", version, 3043174)})
	})
	mux.HandleFunc("/238222", func(w http.ResponseWriter, r *http.Request) {
		writeJSONBody(w, modJSON(238222, "Just Enough Items", "1.16.4", 3043174))
	})
	mux.HandleFunc("/306612", func(w http.ResponseWriter, r *http.Request) {
		writeJSONBody(w, modJSON(306612, "Library", "1.16.4", 3112345))
	})
	mux.HandleFunc("/238222/file/3043174", func(w http.ResponseWriter, r *http.Request) {
		writeJSONBody(w, map[string]any{
			"id":           3043174,
			"displayName":  "jei 7.6.1",
			"fileName":     "jei-1.16.4.jar",
			"downloadUrl":  api.server.URL + "/files/jei-1.16.4.jar",
			"dependencies": []map[string]int{{"addonId": 306612, "type": 3}, {"addonId": 999, "type": 2}},
		})
	})
	mux.HandleFunc("/306612/file/3112345", func(w http.ResponseWriter, r *http.Request) {
		writeJSONBody(w, map[string]any{
			"id":          3112345,
			"displayName": "library 1.0",
			"fileName":    "library-1.0.jar",
			"downloadUrl": api.server.URL + "/files/library-1.0.jar",
		})
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "jar:"+filepath.Base(r.URL.Path))
	})

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)
	return api
}

func modJSON(id int, name, version string, fileID int) curseforge.SearchResult {
	return curseforge.SearchResult{
		ID:      id,
		Name:    name,
		Authors: []curseforge.Author{{Name: "mezz"}},
		GameFiles: []curseforge.GameFile{
			{GameVersion: version, ProjectFileID: fileID, ProjectFileName: name + ".jar"},
		},
	}
}

func writeJSONBody(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestRootCommand_DownloadFlow(t *testing.T) {
	api := newFakeAPI(t)
	t.Setenv("CDL_API_URL", api.server.URL)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	dir := t.TempDir()

	stdout, _, err := execute(t, "1\n", "--config", cfgPath, "-d", dir, "just", "enough", "items")
	require.NoError(t, err)

	assert.Contains(t, stdout, "  INDEX  NAME               AUTHOR\n> 1      Just Enough Items  mezz\n")
	assert.Contains(t, stdout, "Searched Forge mods for 1.16.4 including 'just enough items'.\n")
	assert.Contains(t, stdout, "<== Downloading jei-1.16.4.jar... done!")
	assert.Contains(t, stdout, "    Downloading library-1.0.jar... done!")

	got, err := os.ReadFile(filepath.Join(dir, "jei-1.16.4.jar"))
	require.NoError(t, err)
	assert.Equal(t, "jar:jei-1.16.4.jar", string(got))
	assert.FileExists(t, filepath.Join(dir, "library-1.0.jar"))

	// A second run finds both files on disk.
	stdout, _, err = execute(t, "1\n", "--config", cfgPath, "-d", dir, "jei")
	require.NoError(t, err)
	assert.Contains(t, stdout, "<== jei-1.16.4.jar is already downloaded.\n")
	assert.Contains(t, stdout, "    library-1.0.jar is already downloaded.\n")
}

func TestRootCommand_NothingToDo(t *testing.T) {
	api := newFakeAPI(t)
	t.Setenv("CDL_API_URL", api.server.URL)
	dir := t.TempDir()

	stdout, _, err := execute(t, "5\n", "--config", filepath.Join(t.TempDir(), "config.yaml"), "-d", dir, "jei")
	require.NoError(t, err)
	assert.Contains(t, stdout, "There's nothing to do.\n")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRootCommand_SettingsPrecedence(t *testing.T) {
	api := newFakeAPI(t)
	t.Setenv("CDL_API_URL", api.server.URL)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("game_version: 1.12.2\namount: 20\n"), 0644))

	// File value.
	_, _, err := execute(t, "", "--config", cfgPath, "jei")
	require.NoError(t, err)

	// Environment beats the file.
	t.Setenv("CDL_GAME_VERSION", "1.15.2")
	_, _, err = execute(t, "", "--config", cfgPath, "jei")
	require.NoError(t, err)

	// Flag beats the environment.
	_, _, err = execute(t, "", "--config", cfgPath, "-v", "1.16.5", "-a", "3", "jei")
	require.NoError(t, err)

	require.Len(t, api.searches, 3)
	assert.Contains(t, api.searches[0], "gameVersion=1.12.2&")
	assert.Contains(t, api.searches[0], "pageSize=20&")
	assert.Contains(t, api.searches[1], "gameVersion=1.15.2&")
	assert.Contains(t, api.searches[2], "gameVersion=1.16.5&")
	assert.Contains(t, api.searches[2], "pageSize=3&")
}

func TestRootCommand_JSONDownload(t *testing.T) {
	api := newFakeAPI(t)
	t.Setenv("CDL_API_URL", api.server.URL)
	dir := t.TempDir()

	stdout, _, err := execute(t, "", "--json", "--select", "1", "--config", filepath.Join(t.TempDir(), "config.yaml"), "-d", dir, "jei")
	require.NoError(t, err)

	var output struct {
		Status string `json:"status"`
		Data   struct {
			Downloaded []map[string]any `json:"downloaded"`
			Skipped    []map[string]any `json:"skipped"`
			Failed     []map[string]any `json:"failed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &output))

	assert.Equal(t, "success", output.Status)
	assert.Len(t, output.Data.Downloaded, 2)
	assert.Empty(t, output.Data.Skipped)
	assert.Empty(t, output.Data.Failed)
}

func TestRootCommand_JSONRequiresSelect(t *testing.T) {
	_, _, err := execute(t, "", "--json", "--config", filepath.Join(t.TempDir(), "config.yaml"), "jei")
	assert.ErrorContains(t, err, "--json requires --select")
}

func TestRootCommand_NetworkErrorIsReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	t.Setenv("CDL_API_URL", server.URL)

	_, _, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "config.yaml"), "jei")
	require.Error(t, err)
	assert.ErrorIs(t, err, curseforge.ErrNetwork)
}

func TestPrintError(t *testing.T) {
	defer func() { jsonOut = false }()

	var stdout, stderr bytes.Buffer
	jsonOut = false
	PrintError(&stdout, &stderr, errors.New("boom"))
	assert.Empty(t, stdout.String())
	assert.Equal(t, "An error occurred: boom\n", stderr.String())

	stdout.Reset()
	stderr.Reset()
	jsonOut = true
	PrintError(&stdout, &stderr, errors.New("boom"))
	assert.Empty(t, stderr.String())
	assert.JSONEq(t, `{"status":"error","error":"boom"}`, stdout.String())
}

// Helper function to find a command by name
func findCommand(rootCmd *cobra.Command, name string) *cobra.Command {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}
