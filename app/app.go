package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

const (
	cfgName     = "application"
	testCfgName = "application_test"
	envPrefix   = "CRM"
)

var (
	cfg  *viper.Viper
	once sync.Once
)

// Config loads the application configuration.
//
// Rules:
//  1. If the current process is running `go test`, it tries application_test.yml.
//  2. Otherwise it tries application.yml.
//  3. It searches the project root, the current working directory and their ./config dirs.
//  4. Every key can be overridden from the environment, e.g. CRM_SERVER_ADDR for server.addr.
//
// A missing file is not an error: defaults and environment variables still apply.
func Config() mo.Result[*viper.Viper] {
	once.Do(func() {
		var err error
		cfg, err = loadViper(false)
		if err != nil {
			cfg = nil
		}
	})
	return lo.If(cfg == nil, mo.Err[*viper.Viper](fmt.Errorf("can not load %s.yml", cfgName))).Else(mo.Ok(cfg))
}

func loadViper(required bool) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	name := lo.Ternary(isTestProcess(), testCfgName, cfgName)
	for _, dir := range searchPaths() {
		cand := filepath.Join(dir, name+".yml")
		if _, err := os.Stat(cand); err != nil {
			continue
		}
		v.SetConfigFile(cand)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", cand, err)
		}
		return v, nil
	}

	// Fall back to viper's own lookup so .yaml files are found too.
	for _, dir := range searchPaths() {
		v.AddConfigPath(dir)
	}
	v.SetConfigName(name)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !required && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return v, nil
}

// searchPaths returns the project root (nearest parent dir containing go.mod) and its "config"
// subdir, then the current working directory and its "config" subdir.
//
// Viper resolves relative paths against the working directory, which varies a lot between
// `go test` runs in package folders and a deployed binary.
func searchPaths() []string {
	cwd, err := os.Getwd()
	if err != nil {
		return []string{".", "./config"}
	}
	var paths []string
	if root, ok := findProjectRoot(cwd); ok {
		paths = append(paths, root, filepath.Join(root, "config"))
	}
	paths = append(paths, cwd, filepath.Join(cwd, "config"))
	return lo.Uniq(paths)
}

// findProjectRoot walks upward from `start` until it finds a directory containing a go.mod.
// It returns (root, true) if found, otherwise ("", false).
func findProjectRoot(start string) (string, bool) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// isTestProcess detects whether we are running under `go test`.
func isTestProcess() bool {
	// In normal `go test` runs, the test binary is invoked with flags like `-test.v`, `-test.run`, etc.
	for _, a := range os.Args {
		if strings.HasPrefix(a, "-test.") {
			return true
		}
	}
	if strings.HasSuffix(os.Args[0], ".test") {
		return true
	}

	// Fallback: scan stack frames for *_test.go.
	const maxFrames = 256
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if strings.HasSuffix(f.File, "_test.go") {
			return true
		}
		if !more {
			break
		}
	}
	return false
}

// Reset drops the cached configuration so the next Config call reloads it.
func Reset() {
	cfg = nil
	once = sync.Once{}
}
