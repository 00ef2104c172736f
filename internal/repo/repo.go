// Package repo models a firmware config repository, its Zephyr modules, the
// west manifest, and the build matrix.
package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kbforge/kbforge/internal/errors"
	"github.com/kbforge/kbforge/internal/exec"
	"github.com/kbforge/kbforge/internal/output"
)

const (
	appDirName    = "app"
	configDirName = "config"

	projectManifestPath = configDirName + "/west.yml"
	moduleManifestPath  = "zephyr/module.yml"
	buildMatrixName     = "build.yaml"

	// Staging directory where the west workspace lives. Kept out of
	// version control via .gitignore.
	westStagingPath = ".kbforge"
	westConfigPath  = ".west/config"
)

// moduleManifest is the subset of zephyr/module.yml the CLI reads.
type moduleManifest struct {
	Build struct {
		Settings struct {
			BoardRoot string `yaml:"board_root"`
		} `yaml:"settings"`
	} `yaml:"build"`
}

// Module is a Zephyr module directory.
type Module struct {
	Path string
}

// ModuleManifestPath returns the path to the zephyr/module.yml file.
func (m *Module) ModuleManifestPath() string {
	return filepath.Join(m.Path, filepath.FromSlash(moduleManifestPath))
}

// BoardRoot returns the directory containing hardware definitions, or ""
// when the module has none.
func (m *Module) BoardRoot() string {
	if data, err := os.ReadFile(m.ModuleManifestPath()); err == nil {
		var manifest moduleManifest
		if yaml.Unmarshal(data, &manifest) == nil && manifest.Build.Settings.BoardRoot != "" {
			root := filepath.Join(m.Path, manifest.Build.Settings.BoardRoot, "boards")
			if isDir(root) {
				return root
			}
		}
	}

	// Zephyr repo layout.
	root := filepath.Join(m.Path, appDirName, "boards")
	if isDir(root) {
		return root
	}
	return ""
}

// Repo is a firmware config repository.
type Repo struct {
	Module

	executor  *exec.Executor
	westReady bool
}

// New creates a Repo for the directory at path.
func New(path string) *Repo {
	return &Repo{
		Module: Module{Path: path},
		// west update clones several repositories on first use.
		executor: exec.New(exec.Options{Timeout: 15 * time.Minute}),
	}
}

// IsRepo reports whether path contains a config repo or a Zephyr module.
func IsRepo(path string) bool {
	return isConfigRepo(path) || isModuleRepo(path)
}

// FindContaining walks up from dir looking for an enclosing repo.
func FindContaining(dir string) (string, bool) {
	for {
		if IsRepo(dir) {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ProjectManifestPath returns the path to the config/west.yml file.
func (r *Repo) ProjectManifestPath() string {
	return filepath.Join(r.Path, filepath.FromSlash(projectManifestPath))
}

// ConfigPath returns the path to the config folder.
func (r *Repo) ConfigPath() string {
	return filepath.Join(r.Path, configDirName)
}

// WestPath returns the path to the west staging folder.
func (r *Repo) WestPath() string {
	return filepath.Join(r.Path, westStagingPath)
}

// BuildMatrixPath returns the path to the build.yaml file.
func (r *Repo) BuildMatrixPath() string {
	return filepath.Join(r.Path, buildMatrixName)
}

// BoardRoot returns the directory containing hardware definitions, checking
// the module manifest first and falling back to the old-style config/boards
// layout.
func (r *Repo) BoardRoot() string {
	if root := r.Module.BoardRoot(); root != "" {
		return root
	}

	root := filepath.Join(r.ConfigPath(), "boards")
	if isDir(root) {
		return root
	}
	return ""
}

// Manifest loads the repo's west manifest.
func (r *Repo) Manifest() (*Manifest, error) {
	return LoadManifest(r.ProjectManifestPath())
}

// BuildMatrix loads the repo's build matrix.
func (r *Repo) BuildMatrix() (*BuildMatrix, error) {
	return LoadBuildMatrix(r.BuildMatrixPath())
}

// Modules returns the Zephyr modules in the west workspace.
func (r *Repo) Modules(ctx context.Context) ([]*Module, error) {
	out, err := r.RunWest(ctx, true, "list", "-f", "{path}")
	if err != nil {
		return nil, err
	}

	var modules []*Module
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		modules = append(modules, &Module{Path: filepath.Join(r.WestPath(), line)})
	}
	return modules, nil
}

// RunWest runs west in the staging folder, initializing the workspace on
// first use. With capture set, output is returned instead of streamed to the
// terminal.
func (r *Repo) RunWest(ctx context.Context, capture bool, args ...string) (string, error) {
	if err := r.ensureWestReady(ctx); err != nil {
		return "", err
	}
	return r.runWest(ctx, capture, args...)
}

func (r *Repo) runWest(ctx context.Context, capture bool, args ...string) (string, error) {
	output.Debug("Running west", map[string]any{
		"args": strings.Join(args, " "),
		"dir":  r.WestPath(),
	})

	result, err := r.executor.Execute(ctx, "west", args, &exec.Options{
		WorkingDir:    r.WestPath(),
		CaptureOutput: capture,
		Interactive:   !capture,
	})
	if err != nil {
		return "", errors.WestError(err, args)
	}
	if result.ExitCode != 0 {
		cause := fmt.Errorf("west exited with status %d", result.ExitCode)
		werr := errors.WestError(cause, args)
		if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
			werr = werr.WithDetails(stderr)
		}
		return result.Stdout, werr
	}

	return result.Stdout, nil
}

// ensureWestReady makes sure the west workspace is initialized: the staging
// folder is ignored by git, the manifest is linked in, and west init/update
// have run once.
func (r *Repo) ensureWestReady(ctx context.Context) error {
	if r.westReady {
		return nil
	}

	if !isConfigRepo(r.Path) {
		return errors.RepoNotFoundError(r.Path)
	}

	if err := r.updateGitignore(); err != nil {
		return err
	}
	if err := r.updateWestManifest(); err != nil {
		return err
	}

	if !isFile(filepath.Join(r.WestPath(), filepath.FromSlash(westConfigPath))) {
		if err := r.initWestWorkspace(ctx); err != nil {
			return err
		}
	}

	r.westReady = true
	return nil
}

// updateGitignore adds the staging folder to .gitignore if it is missing.
func (r *Repo) updateGitignore() error {
	path := filepath.Join(r.Path, ".gitignore")

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.RepoNotFound, "Could not read .gitignore").
			WithDetails("Path: " + path)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == westStagingPath {
			return nil
		}
	}

	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += westStagingPath + "\n"

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrap(err, errors.RepoNotFound, "Could not update .gitignore").
			WithDetails("Path: " + path)
	}
	return nil
}

// updateWestManifest links the repo's manifest into the staging folder,
// copying when symlinks are unavailable.
func (r *Repo) updateWestManifest() error {
	target := r.ProjectManifestPath()
	link := filepath.Join(r.WestPath(), filepath.FromSlash(projectManifestPath))

	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return errors.Wrap(err, errors.RepoNotFound, "Could not create the west staging folder").
			WithDetails("Path: " + filepath.Dir(link))
	}

	if existing, err := os.Readlink(link); err == nil {
		if !filepath.IsAbs(existing) {
			existing = filepath.Join(filepath.Dir(link), existing)
		}
		if sameFile(existing, target) {
			return nil
		}
		// Symlink is to the wrong file. Delete and recreate it.
		os.Remove(link)
	} else if isFile(link) {
		os.Remove(link)
	}

	if err := os.Symlink(target, link); err != nil {
		// Might not have permissions to symlink? Copy the file instead.
		data, readErr := os.ReadFile(target)
		if readErr != nil {
			return errors.Wrap(readErr, errors.ManifestInvalid, "Could not read the west manifest").
				WithDetails("Path: " + target)
		}
		if writeErr := os.WriteFile(link, data, 0o644); writeErr != nil {
			return errors.Wrap(writeErr, errors.RepoNotFound, "Could not stage the west manifest").
				WithDetails("Path: " + link)
		}
	}
	return nil
}

func (r *Repo) initWestWorkspace(ctx context.Context) error {
	fmt.Println("Initializing west workspace. This may take a while...")
	output.Info("Initializing west workspace", map[string]any{"path": r.WestPath()})

	if _, err := r.runWest(ctx, false, "init", "-l", configDirName); err != nil {
		return err
	}
	if _, err := r.runWest(ctx, false, "update"); err != nil {
		return err
	}
	return nil
}

// Render displays the repo as its path.
func (r *Repo) Render() output.Text {
	return output.Plain(r.Path)
}

func isConfigRepo(path string) bool {
	return isFile(filepath.Join(path, filepath.FromSlash(projectManifestPath)))
}

func isModuleRepo(path string) bool {
	return isFile(filepath.Join(path, filepath.FromSlash(moduleManifestPath)))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func sameFile(a, b string) bool {
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}
