package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kbforge/kbforge/internal/errors"
	"github.com/kbforge/kbforge/internal/exec"
	"github.com/kbforge/kbforge/internal/menu"
	"github.com/kbforge/kbforge/internal/output"
	"github.com/kbforge/kbforge/internal/repo"
	"github.com/kbforge/kbforge/internal/search"
)

func runModule(a *app, args []string) error {
	if len(args) == 0 {
		return errors.New(errors.ValidationFailed, "Missing module subcommand").
			WithSuggestion(`Use "kbforge module add", "remove", or "list"`)
	}

	switch args[0] {
	case "add":
		return moduleAdd(a, args[1:])
	case "remove":
		return moduleRemove(a, args[1:])
	case "list":
		return moduleList(a, args[1:])
	default:
		return errors.New(errors.ValidationFailed, fmt.Sprintf("Unknown module subcommand %q", args[0])).
			WithSuggestion(`Use "kbforge module add", "remove", or "list"`)
	}
}

// moduleAdd registers an extra Zephyr module in the project manifest and
// fetches it. Usage: module add [URL [REVISION]] [--name NAME].
func moduleAdd(a *app, args []string) error {
	fs := flag.NewFlagSet("module add", flag.ContinueOnError)
	name := fs.String("name", "", "name of the module")
	fs.StringVar(name, "n", *name, "shorthand for --name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	url := fs.Arg(0)
	revision := fs.Arg(1)

	r, err := a.config.Repo()
	if err != nil {
		return err
	}

	manifest, err := r.Manifest()
	if err != nil {
		return err
	}

	if *name != "" {
		if err := errorIfExistingName(manifest, *name); err != nil {
			return err
		}
	}

	if url != "" {
		if err := errorIfExistingURL(manifest, url); err != nil {
			return err
		}
		if revision == "" {
			if revision, err = defaultBranch(a, url); err != nil {
				return err
			}
		}
		if *name == "" {
			*name = nameFromURL(url)
		}
		if err := errorIfExistingName(manifest, *name); err != nil {
			return err
		}
	} else {
		if err := requireInteractive("a repository URL"); err != nil {
			return err
		}

		if url, err = promptURL(a); err != nil {
			return err
		}
		if err := errorIfExistingURL(manifest, url); err != nil {
			return err
		}

		branch, err := defaultBranch(a, url)
		if err != nil {
			return err
		}
		if revision, err = prompt(a, "Enter the revision to track", branch); err != nil {
			return err
		}

		if *name == "" {
			*name = nameFromURL(url)
		}
		for hasProjectWithName(manifest, *name) {
			a.formatter.Warning("There is already a module with the name %q", *name)
			if *name, err = prompt(a, "Enter a new name", ""); err != nil {
				return err
			}
		}
	}

	manifest.AddProject(repo.Project{
		Name:     *name,
		URL:      url,
		Revision: revision,
		Path:     "modules/" + *name,
	})
	if err := manifest.Write(); err != nil {
		return err
	}

	if _, err := r.RunWest(a.ctx, false, "update", *name); err != nil {
		return err
	}

	a.formatter.Success("Added module %q", *name)
	return nil
}

// moduleRemove drops a module from the project manifest and deletes its
// files. Usage: module remove [NAME-OR-URL].
func moduleRemove(a *app, args []string) error {
	r, err := a.config.Repo()
	if err != nil {
		return err
	}

	manifest, err := r.Manifest()
	if err != nil {
		return err
	}

	// The main firmware project stays, or the repo won't build anymore.
	var projects []repo.Project
	for _, p := range manifest.Projects() {
		if p.Name != "zmk" {
			projects = append(projects, p)
		}
	}
	if len(projects) == 0 {
		a.formatter.Info("There are no modules that can be removed")
		return nil
	}

	var project repo.Project
	if len(args) > 0 {
		found := false
		for _, p := range projects {
			if p.Name == args[0] || p.URL == args[0] {
				project = p
				found = true
				break
			}
		}
		if !found {
			return errors.New(errors.RepoNotFound, fmt.Sprintf("No module with name or URL %q found", args[0])).
				WithSuggestion(`Run "kbforge module list" to see the installed modules`)
		}
	} else {
		if err := requireInteractive("the module name"); err != nil {
			return err
		}
		if project, err = pickProject(projects); err != nil {
			return err
		}
	}

	manifest.RemoveProject(project.Name)
	if err := manifest.Write(); err != nil {
		return err
	}

	deleteModuleFiles(a, r, project)

	a.formatter.Success("Removed module %q", project.Name)
	return nil
}

func moduleList(a *app, _ []string) error {
	r, err := a.config.Repo()
	if err != nil {
		return err
	}

	manifest, err := r.Manifest()
	if err != nil {
		return err
	}

	table := a.formatter.Table()
	table.Headers("Name", "URL", "Revision")
	for _, project := range manifest.Projects() {
		table.Row(project.Name, project.URL, project.Revision)
	}
	table.Print()
	return nil
}

// projectItem adapts a manifest project for menu display.
type projectItem struct {
	project repo.Project
}

func (p projectItem) Render() output.Text {
	return output.Plain(p.project.Name)
}

func pickProject(projects []repo.Project) (repo.Project, error) {
	items := make([]projectItem, len(projects))
	details := make([]string, len(projects))
	for i, p := range projects {
		items[i] = projectItem{project: p}
		details[i] = p.URL
	}

	selected, err := menu.Show("Select the module to remove:", menu.DetailList(items, details),
		menu.Config[*menu.Detail[projectItem]]{
			Filter: func(item *menu.Detail[projectItem], query string) bool {
				return search.ContainsFold(item.Render().String(), query)
			},
		})
	if err != nil {
		return repo.Project{}, err
	}
	return selected.Item.project, nil
}

func deleteModuleFiles(a *app, r *repo.Repo, project repo.Project) {
	path := project.Path
	if path == "" {
		path = project.Name
	}

	moduleDir := filepath.Join(r.WestPath(), path)
	if info, err := os.Stat(moduleDir); err != nil || !info.IsDir() {
		return
	}

	if err := os.RemoveAll(moduleDir); err != nil {
		a.formatter.Warning("Could not clean up module files. Please manually delete %q", moduleDir)
	}
}

// nameFromURL derives a module name from the last segment of its Git URL.
func nameFromURL(url string) string {
	name := url[strings.LastIndex(url, "/")+1:]
	return strings.TrimSuffix(name, ".git")
}

// defaultBranch probes a remote repository and reports "main" when it has a
// main branch, else "master".
func defaultBranch(a *app, url string) (string, error) {
	a.formatter.Dim("Finding default branch...")

	executor := exec.New(exec.Options{
		Timeout:       time.Minute,
		CaptureOutput: true,
		Retry: exec.RetryOptions{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
		},
	})

	result, err := executor.Execute(a.ctx, "git", []string{"ls-remote", url, "refs/heads/*"}, nil)
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", errors.New(errors.GitFailure, "Could not reach the repository").
			WithDetails(strings.TrimSpace(result.Stderr)).
			WithSuggestion("Check the URL and your network connection")
	}

	for _, line := range strings.Split(result.Stdout, "\n") {
		_, ref, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if ok && strings.TrimPrefix(ref, "refs/heads/") == "main" {
			return "main", nil
		}
	}
	return "master", nil
}

func hasProjectWithName(m *repo.Manifest, name string) bool {
	_, ok := m.FindProject(name)
	return ok
}

func hasProjectWithURL(m *repo.Manifest, url string) bool {
	for _, p := range m.Projects() {
		if p.URL == url {
			return true
		}
	}
	return false
}

func errorIfExistingName(m *repo.Manifest, name string) error {
	if hasProjectWithName(m, name) {
		return errors.New(errors.ValidationFailed,
			fmt.Sprintf("There is already a module with the name %q", name)).
			WithSuggestion("Add --name=<newname> if you still want to add this module")
	}
	return nil
}

func errorIfExistingURL(m *repo.Manifest, url string) error {
	if hasProjectWithURL(m, url) {
		return errors.New(errors.ValidationFailed,
			fmt.Sprintf("There is already a module with the URL %q", url))
	}
	return nil
}

// prompt reads one line from stdin, falling back to defaultValue on empty
// input.
func prompt(a *app, label, defaultValue string) (string, error) {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, errors.NotInteractive, "Could not read from the terminal")
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return defaultValue, nil
	}
	return line, nil
}

// promptURL asks for a Git URL until it gets something plausible.
func promptURL(a *app) (string, error) {
	for {
		url, err := prompt(a, "Enter the module's Git repository URL", "")
		if err != nil {
			return "", err
		}
		if looksLikeGitURL(url) {
			return url, nil
		}
		a.formatter.Warning("Enter a valid URL")
	}
}

func looksLikeGitURL(url string) bool {
	return strings.Contains(url, "://") || strings.HasPrefix(url, "git@")
}
