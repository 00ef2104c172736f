package repo

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kbforge/kbforge/internal/errors"
)

// Project is one entry in the west manifest's project list.
type Project struct {
	Name     string `yaml:"name"`
	Remote   string `yaml:"remote,omitempty"`
	URL      string `yaml:"url,omitempty"`
	Revision string `yaml:"revision,omitempty"`
	Path     string `yaml:"path,omitempty"`
	Import   string `yaml:"import,omitempty"`
}

// Remote is a named URL base projects can reference.
type Remote struct {
	Name    string `yaml:"name"`
	URLBase string `yaml:"url-base"`
}

// manifestBody mirrors the west.yml structure. Comments in the file are not
// preserved across a rewrite.
type manifestBody struct {
	Remotes  []Remote  `yaml:"remotes,omitempty"`
	Defaults *Defaults `yaml:"defaults,omitempty"`
	Projects []Project `yaml:"projects,omitempty"`
	Self     *Self     `yaml:"self,omitempty"`
}

// Defaults supplies fallback values for project entries.
type Defaults struct {
	Remote   string `yaml:"remote,omitempty"`
	Revision string `yaml:"revision,omitempty"`
}

// Self describes the manifest repository itself.
type Self struct {
	Path         string `yaml:"path,omitempty"`
	WestCommands string `yaml:"west-commands,omitempty"`
}

type manifestFile struct {
	Manifest manifestBody `yaml:"manifest"`
}

// Manifest reads and edits a west.yml project manifest.
type Manifest struct {
	path string
	data manifestFile
}

// LoadManifest reads the west manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ManifestInvalid, "Could not read the west manifest").
			WithDetails("Path: " + path)
	}

	m := &Manifest{path: path}
	if err := yaml.Unmarshal(data, &m.data); err != nil {
		return nil, errors.Wrap(err, errors.ManifestInvalid, "The west manifest is not valid YAML").
			WithDetails("Path: " + path)
	}

	return m, nil
}

// Path returns the manifest file location.
func (m *Manifest) Path() string {
	return m.path
}

// Projects returns the manifest's project list.
func (m *Manifest) Projects() []Project {
	return m.data.Manifest.Projects
}

// FindProject returns the project with the given name.
func (m *Manifest) FindProject(name string) (Project, bool) {
	for _, p := range m.data.Manifest.Projects {
		if p.Name == name {
			return p, true
		}
	}
	return Project{}, false
}

// AddProject appends a project. It reports whether the project was added;
// a project with the same name already present is left untouched.
func (m *Manifest) AddProject(project Project) bool {
	if _, ok := m.FindProject(project.Name); ok {
		return false
	}

	m.data.Manifest.Projects = append(m.data.Manifest.Projects, project)
	return true
}

// RemoveProject removes the project with the given name. It reports whether
// a project was removed.
func (m *Manifest) RemoveProject(name string) bool {
	projects := m.data.Manifest.Projects
	for i, p := range projects {
		if p.Name == name {
			m.data.Manifest.Projects = append(projects[:i:i], projects[i+1:]...)
			return true
		}
	}
	return false
}

// AddRemote appends a remote if no remote with the same name exists.
func (m *Manifest) AddRemote(remote Remote) bool {
	for _, r := range m.data.Manifest.Remotes {
		if r.Name == remote.Name {
			return false
		}
	}

	m.data.Manifest.Remotes = append(m.data.Manifest.Remotes, remote)
	return true
}

// Write saves the manifest back to the file used by LoadManifest.
func (m *Manifest) Write() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return errors.Wrap(err, errors.ManifestInvalid, "Could not create the manifest directory").
			WithDetails("Path: " + filepath.Dir(m.path))
	}

	data, err := yaml.Marshal(&m.data)
	if err != nil {
		return errors.Wrap(err, errors.InternalError, "Could not encode the west manifest")
	}

	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ManifestInvalid, "Could not write the west manifest").
			WithDetails("Path: " + m.path)
	}
	return nil
}
