package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/farigab/bragctl/internal/domain"
)

// fakeAPI is an in-memory stand-in for the brag API. Sessions are plain
// cookie values: "valid" is signed in, "expired" needs a refresh, anything
// else is rejected.
type fakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	hasToken bool
	repos    []string
	st       apiStats
}

// apiStats records what the fake API received.
type apiStats struct {
	savedToken   string
	authHeaders  []string
	imports      []domain.ImportRequest
	importKinds  []string
	summaries    []domain.SummaryRequest
	achievements []domain.Achievement
	refreshes    int
	logouts      int
	userCalls    int
}

func (api *fakeAPI) stats() apiStats {
	api.mu.Lock()
	defer api.mu.Unlock()
	st := api.st
	st.authHeaders = slices.Clone(st.authHeaders)
	st.imports = slices.Clone(st.imports)
	st.importKinds = slices.Clone(st.importKinds)
	st.summaries = slices.Clone(st.summaries)
	st.achievements = slices.Clone(st.achievements)
	return st
}

func (api *fakeAPI) setHasToken(v bool) {
	api.mu.Lock()
	api.hasToken = v
	api.mu.Unlock()
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{repos: []string{"octo/api", "octo/web"}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", api.authed(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.st.userCalls++
		user := domain.AuthenticatedUser{ID: 7, Login: "octocat", Name: "Octo Cat", HasGitHubToken: api.hasToken}
		api.mu.Unlock()
		writeJSON(w, http.StatusOK, user)
	}))
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.st.logouts++
		api.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "", MaxAge: -1})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session")
		if err != nil || c.Value != "expired" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Refresh rejected"})
			return
		}
		api.mu.Lock()
		api.st.refreshes++
		api.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "valid"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /auth/github/token", api.authed(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Token string `json:"token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		api.mu.Lock()
		api.st.savedToken = body.Token
		api.hasToken = true
		api.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("DELETE /auth/github/token", api.authed(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.st.savedToken = ""
		api.hasToken = false
		api.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("GET /github/repositories", api.authed(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.st.authHeaders = append(api.st.authHeaders, r.Header.Get("Authorization"))
		repos := api.repos
		api.mu.Unlock()
		writeJSON(w, http.StatusOK, repos)
	}))
	mux.HandleFunc("POST /github/import/{kind}", api.authed(func(w http.ResponseWriter, r *http.Request) {
		var req domain.ImportRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		api.mu.Lock()
		api.st.imports = append(api.st.imports, req)
		api.st.importKinds = append(api.st.importKinds, r.PathValue("kind"))
		api.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"imported": 3, "skipped": 1})
	}))
	mux.HandleFunc("POST /reports/ai-summary", api.authed(func(w http.ResponseWriter, r *http.Request) {
		var req domain.SummaryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		api.mu.Lock()
		api.st.summaries = append(api.st.summaries, req)
		api.mu.Unlock()
		writeJSON(w, http.StatusOK, domain.SummaryReport{
			ReportText: "# Highlights\n\n- Shipped the **importer**",
			ReportType: req.ReportType,
		})
	}))
	mux.HandleFunc("POST /achievements", api.authed(func(w http.ResponseWriter, r *http.Request) {
		var a domain.Achievement
		_ = json.NewDecoder(r.Body).Decode(&a)
		a.ID = "ach-1"
		api.mu.Lock()
		api.st.achievements = append(api.st.achievements, a)
		api.mu.Unlock()
		writeJSON(w, http.StatusCreated, a)
	}))

	api.Server = httptest.NewServer(mux)
	t.Cleanup(api.Close)
	return api
}

func (api *fakeAPI) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session")
		switch {
		case err == nil && c.Value == "valid":
			next(w, r)
		case err == nil && c.Value == "expired":
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired", "code": "TOKEN_EXPIRED"})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// cmdEnv is an isolated home, config and credentials file for one test.
type cmdEnv struct {
	dir       string
	credsFile string
}

// setupCmdTest points bragctl at api and resets all flag state. session, if
// non-empty, is stored as the signed-in credential.
func setupCmdTest(t *testing.T, api *fakeAPI, session string) *cmdEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	env := &cmdEnv{dir: dir, credsFile: filepath.Join(dir, "credentials.json")}
	t.Setenv("BRAGCTL_SESSION_CREDENTIALS_FILE", env.credsFile)
	t.Setenv("BRAGCTL_LOGGING_LEVEL", "error")
	t.Setenv("BRAGCTL_API_RATE_LIMIT", "0")
	t.Setenv("BRAGCTL_LOGIN_TIMEOUT", "5s")
	if api != nil {
		t.Setenv("BRAGCTL_API_BASE_URL", api.URL)
	}
	if session != "" {
		writeSession(t, env.credsFile, session)
	}

	resetFlags()
	noColor := color.NoColor
	t.Cleanup(func() {
		color.NoColor = noColor
		closeApp(context.Background())
	})
	return env
}

func writeSession(t *testing.T, path, value string) {
	t.Helper()
	b, err := json.Marshal(map[string]string{"session": value})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatal(err)
	}
}

func readSession(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ""
	}
	if err != nil {
		t.Fatal(err)
	}
	var st struct {
		Session string `json:"session"`
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &st); err != nil {
			t.Fatal(err)
		}
	}
	return st.Session
}

func resetFlags() {
	resetCommandFlags(rootCmd)
	cfgFile, verbose, quiet, colorFlag, apiURL = "", false, false, "never", ""
	loginNoBrowser, loginSession = false, ""
	whoamiRefresh, whoamiJSON = false, false
	reposToken, reposJSON = "", false
	importRepos, importKinds, importAll, importMinChanges, importToken, importJSON = nil, nil, false, 0, "", false
	presetsRef, presetsJSON = "", false
	reportPreset, reportType, reportPrompt, reportPromptFile = "", "", "", ""
	reportRepos, reportToken, reportHTML, reportJSON, reportListTypes = nil, "", "", false, false
	achTitle, achDescription, achDate, achCategory, achImpact, achJSON = "", "", "", "feature", "medium", false
}

// resetCommandFlags restores every flag of c and its subcommands to its
// default and clears Changed, so flag groups do not see earlier runs.
func resetCommandFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCommandFlags(sub)
	}
}

// run executes bragctl with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
