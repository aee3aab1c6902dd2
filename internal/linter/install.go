package linter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/sevigo/lint-warden/internal/config"
)

// ErrNoLockfileSpecs is returned when lockfile mode finds no linter gems.
var ErrNoLockfileSpecs = errors.New("no linter gems found in lockfile")

// lockfileSpec matches a resolved gem under a "specs:" block, e.g. "    erb_lint (0.9.0)".
var lockfileSpec = regexp.MustCompile(`^    ([^\s()]+) \(([^)]+)\)$`)

// rubygemsPrerelease matches the dotted prerelease form rubygems uses ("1.0.0.rc1").
var rubygemsPrerelease = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)*)\.([A-Za-z][0-9A-Za-z.]*)$`)

// GemSpec is a gem name with an optional pinned version.
type GemSpec struct {
	Name    string
	Version *version.Version
	// raw is the version exactly as written, which is what rubygems expects back.
	raw string
}

// String renders the spec in the name:version form `gem install` accepts.
func (g GemSpec) String() string {
	if g.Version == nil {
		return g.Name
	}
	return g.Name + ":" + g.raw
}

func parseGemVersion(raw string) (*version.Version, error) {
	if m := rubygemsPrerelease.FindStringSubmatch(raw); m != nil {
		return version.NewVersion(m[1] + "-" + m[2])
	}
	return version.NewVersion(raw)
}

// ParseGemSpecs parses a whitespace-separated list of name[:version] specifiers.
func ParseGemSpecs(specs string) ([]GemSpec, error) {
	var gems []GemSpec
	for _, field := range strings.Fields(specs) {
		name, ver, hasVersion := strings.Cut(field, ":")
		if name == "" {
			return nil, fmt.Errorf("invalid gem specifier %q", field)
		}
		spec := GemSpec{Name: name}
		if hasVersion {
			v, err := parseGemVersion(ver)
			if err != nil {
				return nil, fmt.Errorf("invalid version in gem specifier %q: %w", field, err)
			}
			spec.Version, spec.raw = v, ver
		}
		gems = append(gems, spec)
	}
	return gems, nil
}

// GemsFromLockfile returns every locked gem whose name starts with prefix.
func GemsFromLockfile(r io.Reader, prefix string) ([]GemSpec, error) {
	var gems []GemSpec
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := lockfileSpec.FindStringSubmatch(strings.TrimRight(scanner.Text(), "\r"))
		if m == nil || !strings.HasPrefix(m[1], prefix) || seen[m[1]] {
			continue
		}
		v, err := parseGemVersion(m[2])
		if err != nil {
			return nil, fmt.Errorf("invalid locked version for %s: %w", m[1], err)
		}
		seen[m[1]] = true
		gems = append(gems, GemSpec{Name: m[1], Version: v, raw: m[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	if len(gems) == 0 {
		return nil, ErrNoLockfileSpecs
	}
	return gems, nil
}

// ResolveGems turns the configured version specifier into the gems to install.
// An empty specifier means the linter is already installed.
func ResolveGems(cfg config.LinterConfig) ([]GemSpec, error) {
	if cfg.Versions == "" {
		return nil, nil
	}
	if !cfg.GemfileMode() {
		return ParseGemSpecs(cfg.Versions)
	}

	f, err := os.Open(cfg.Lockfile)
	if err != nil {
		return nil, fmt.Errorf("failed to open lockfile %s: %w", cfg.Lockfile, err)
	}
	defer f.Close()

	gems, err := GemsFromLockfile(f, cfg.GemPrefix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Lockfile, err)
	}
	return gems, nil
}

// Installer installs linter gems with rubygems.
type Installer struct {
	logger *slog.Logger
	run    func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewInstaller creates an Installer that shells out to `gem`.
func NewInstaller(logger *slog.Logger) *Installer {
	return &Installer{
		logger: logger,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

// Install runs `gem install` for gems. Nothing is run for an empty list.
func (i *Installer) Install(ctx context.Context, gems []GemSpec) error {
	if len(gems) == 0 {
		i.logger.Info("No linter versions configured, using the installed linter")
		return nil
	}

	args := []string{"install"}
	for _, g := range gems {
		args = append(args, g.String())
	}
	args = append(args, "--no-document", "--conservative")

	i.logger.Info("Installing gems", "command", "gem "+strings.Join(args, " "))
	out, err := i.run(ctx, "gem", args...)
	if err != nil {
		return fmt.Errorf("gem install failed: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}
