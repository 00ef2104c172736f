package repo

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kbforge/kbforge/internal/errors"
	"github.com/kbforge/kbforge/internal/output"
)

// BuildItem is one entry in the build matrix.
type BuildItem struct {
	Board        string `yaml:"board"`
	Shield       string `yaml:"shield,omitempty"`
	Snippet      string `yaml:"snippet,omitempty"`
	CmakeArgs    string `yaml:"cmake-args,omitempty"`
	ArtifactName string `yaml:"artifact-name,omitempty"`
}

// Render displays the item as "board, shield" with any extra fields dimmed.
func (b BuildItem) Render() output.Text {
	dim := output.Styling{Style: output.StyleDim}
	sep := output.Styled(", ", dim)

	text := output.Plain(b.Board)
	if b.Shield != "" {
		text = text.Append(sep).AppendString(b.Shield)
	}
	if b.Snippet != "" {
		text = text.Append(sep).Append(output.Styled("snippet: "+b.Snippet, dim))
	}
	if b.ArtifactName != "" {
		text = text.Append(sep).Append(output.Styled("artifact-name: "+b.ArtifactName, dim))
	}
	if b.CmakeArgs != "" {
		text = text.Append(sep).Append(output.Styled("cmake-args: "+b.CmakeArgs, dim))
	}
	return text
}

type buildMatrixBody struct {
	Include []BuildItem `yaml:"include"`
}

// BuildMatrix reads and edits a build.yaml file.
type BuildMatrix struct {
	path string
	data buildMatrixBody
}

// LoadBuildMatrix reads the build matrix at path. A missing file yields an
// empty matrix that Write will create.
func LoadBuildMatrix(path string) (*BuildMatrix, error) {
	m := &BuildMatrix{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ManifestInvalid, "Could not read the build matrix").
			WithDetails("Path: " + path)
	}

	if err := yaml.Unmarshal(data, &m.data); err != nil {
		return nil, errors.Wrap(err, errors.ManifestInvalid, "The build matrix is not valid YAML").
			WithDetails("Path: " + path)
	}

	return m, nil
}

// Path returns the matrix's YAML file location.
func (m *BuildMatrix) Path() string {
	return m.path
}

// Include returns the build items in the matrix.
func (m *BuildMatrix) Include() []BuildItem {
	return m.data.Include
}

// HasItem reports whether the matrix contains the given build item.
func (m *BuildMatrix) HasItem(item BuildItem) bool {
	for _, existing := range m.data.Include {
		if existing == item {
			return true
		}
	}
	return false
}

// Append adds build items to the matrix, skipping duplicates. It returns the
// items that were added.
func (m *BuildMatrix) Append(items ...BuildItem) []BuildItem {
	var added []BuildItem
	for _, item := range items {
		if m.HasItem(item) {
			continue
		}
		m.data.Include = append(m.data.Include, item)
		added = append(added, item)
	}
	return added
}

// Remove deletes build items from the matrix. It returns the items that were
// removed.
func (m *BuildMatrix) Remove(items ...BuildItem) []BuildItem {
	var removed []BuildItem
	for _, item := range items {
		for i, existing := range m.data.Include {
			if existing == item {
				m.data.Include = append(m.data.Include[:i:i], m.data.Include[i+1:]...)
				removed = append(removed, item)
				break
			}
		}
	}
	return removed
}

// Write saves the matrix, creating the file if necessary.
func (m *BuildMatrix) Write() error {
	data, err := yaml.Marshal(&m.data)
	if err != nil {
		return errors.Wrap(err, errors.InternalError, "Could not encode the build matrix")
	}

	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ManifestInvalid, "Could not write the build matrix").
			WithDetails("Path: " + m.path)
	}
	return nil
}
