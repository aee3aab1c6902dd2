package core

import (
	"path"
	"strings"
)

// RepoConfig represents the structure of the .lint-warden.yml file.
type RepoConfig struct {
	// File extensions handed to the linter. The leading dot is optional.
	// Example: [".erb", ".html.erb"]
	IncludeExts []string `yaml:"include_exts"`

	// Directories whose files are never linted, matched by path segment.
	// Example: ["vendor", "node_modules"]
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// Extra arguments appended to the linter command line.
	LinterArgs []string `yaml:"linter_args"`
}

// DefaultRepoConfig returns a config with default values.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{
		IncludeExts: []string{".erb"},
		ExcludeDirs: []string{},
		LinterArgs:  []string{},
	}
}

// LintTargets selects, in host order, the changed files the linter should see.
func (c *RepoConfig) LintTargets(files []ChangedFile) []string {
	var targets []string
	for _, f := range files {
		if f.Removed() || !c.includes(f.Path) || c.excluded(f.Path) {
			continue
		}
		targets = append(targets, f.Path)
	}
	return targets
}

func (c *RepoConfig) includes(p string) bool {
	for _, ext := range c.IncludeExts {
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

func (c *RepoConfig) excluded(p string) bool {
	dir := path.Dir(p)
	for _, segment := range strings.Split(dir, "/") {
		for _, ex := range c.ExcludeDirs {
			if segment == strings.Trim(ex, "/") {
				return true
			}
		}
	}
	return false
}
