package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-letterpdf/internal/config"
	"github.com/alnah/go-letterpdf/internal/fileutil"
	"github.com/alnah/go-letterpdf/internal/store"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Store    storeInfo  `json:"store"`
	Mail     mailInfo   `json:"mail"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// storeInfo holds CRM store check results.
type storeInfo struct {
	Path     string `json:"path"`
	Exists   bool   `json:"exists"`
	Writable bool   `json:"writable"`
}

// mailInfo holds mail transport check results.
type mailInfo struct {
	Transport string `json:"transport"`
	Ready     bool   `json:"ready"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	var (
		jsonOutput bool
		common     commonFlags
	)
	fs := newDoctorFlagSet(&jsonOutput, &common, env.Stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	result := runDoctor(&common, env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

func newDoctorFlagSet(jsonOutput *bool, common *commonFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("doctor", printDoctorUsage, stderr)
	fs.BoolVar(jsonOutput, "json", false, "machine-readable output")
	addCommonFlags(fs, common)
	return fs
}

// runDoctor performs all diagnostic checks.
func runDoctor(common *commonFlags, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result)
	checkEnvironment(result)
	checkSystem(result)

	cfg, err := loadConfiguration(common, env)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
	} else {
		if err := cfg.Validate(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		}
		checkStore(result, cfg)
		checkMail(result, cfg)
	}

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	cmd := exec.Command(chromePath, "--version") // #nosec G204 -- browser path from env or launcher lookup
	out, err := cmd.Output()
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("LETTERPDF_CONTAINER") == "1" {
		return true, "LETTERPDF_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	if !fileutil.DirWritable(tmpDir) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	result.System.TempWritable = true
}

// checkStore verifies the store file or its directory without creating it.
func checkStore(result *doctorResult, cfg *config.Config) {
	result.Store.Path = cfg.Store.Path
	if cfg.Store.Path == store.MemoryPath {
		result.Store.Writable = true
		result.Warnings = append(result.Warnings, "Store is in memory; records are lost on exit")
		return
	}

	result.Store.Exists = fileutil.FileExists(cfg.Store.Path)

	dir := filepath.Dir(cfg.Store.Path)
	if _, err := os.Stat(dir); err != nil {
		// Open creates the directory.
		result.Store.Writable = true
	} else if fileutil.DirWritable(dir) {
		result.Store.Writable = true
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("Store directory not writable: %s", dir))
	}

	if !result.Store.Exists {
		result.Warnings = append(result.Warnings,
			"Store not found; it will be created empty. Load records with 'letterpdf import'")
	}
}

// checkMail reports whether the configured transport can send.
func checkMail(result *doctorResult, cfg *config.Config) {
	transport := strings.ToLower(cfg.Mail.Transport)
	if transport == "" {
		transport = config.TransportNone
	}
	result.Mail.Transport = transport

	switch transport {
	case config.TransportNone:
		result.Warnings = append(result.Warnings,
			"No mail transport configured; email output will fail (use pdf or html output)")
	case config.TransportSMTP:
		result.Mail.Ready = cfg.Mail.SMTP.Host != ""
	case config.TransportOutbox:
		result.Mail.Ready = cfg.Mail.Outbox.Dir != ""
	case config.TransportGmail:
		if os.Getenv(envOAuthClientID) == "" || os.Getenv(envOAuthClientSecret) == "" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Gmail transport needs %s and %s", envOAuthClientID, envOAuthClientSecret))
			return
		}
		if cfg.Mail.Gmail.TokenFile == "" || !fileutil.FileExists(cfg.Mail.Gmail.TokenFile) {
			result.Warnings = append(result.Warnings,
				"Gmail token not found; run 'letterpdf serve' and authorize at /oauth?redirect=1")
			return
		}
		result.Mail.Ready = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "letterpdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Store")
	if r.Store.Path != "" {
		state := "missing"
		if r.Store.Exists {
			state = "found"
		}
		fmt.Fprintf(w, "  [OK] Path: %s (%s)\n", r.Store.Path, state)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Mail")
	if r.Mail.Transport != "" {
		mark := "[OK]"
		if !r.Mail.Ready {
			mark = "[WARN]"
		}
		fmt.Fprintf(w, "  %s Transport: %s\n", mark, r.Mail.Transport)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to create letters")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
