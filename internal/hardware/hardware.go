// Package hardware discovers keyboard hardware metadata from the board roots
// of a repo and its modules.
package hardware

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kbforge/kbforge/internal/errors"
	"github.com/kbforge/kbforge/internal/output"
	"github.com/kbforge/kbforge/internal/repo"
)

// Hardware type discriminators used in metadata files.
const (
	TypeBoard        = "board"
	TypeShield       = "shield"
	TypeInterconnect = "interconnect"
)

// Metadata files end with this suffix.
const metadataSuffix = ".zmk.yml"

// Definition is one hardware metadata file. Fields that do not apply to the
// hardware's type are left empty.
type Definition struct {
	// Directory containing the metadata file.
	Directory string `yaml:"-"`

	Type string `yaml:"type"`
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	FileFormat   string `yaml:"file_format"`
	URL          string `yaml:"url"`
	Description  string `yaml:"description"`
	Manufacturer string `yaml:"manufacturer"`
	Version      string `yaml:"version"`

	// Board/shield IDs making up a split keyboard.
	Siblings []string `yaml:"siblings"`
	// Interconnect IDs this hardware provides.
	Exposes []string `yaml:"exposes"`
	// Feature names such as "keys", "display", or "encoder".
	Features []string `yaml:"features"`

	// Boards only.
	Arch    string   `yaml:"arch"`
	Outputs []string `yaml:"outputs"`

	// Shields only: interconnect IDs this shield attaches to.
	Requires []string `yaml:"requires"`

	// Interconnects only.
	NodeLabels      map[string]string `yaml:"node_labels"`
	DesignGuideline string            `yaml:"design_guideline"`
}

func (d *Definition) String() string {
	return d.ID
}

// Render displays the hardware as its ID with the human-readable name dimmed.
func (d *Definition) Render() output.Text {
	return output.Plain(d.ID + "  ").
		Append(output.Styled(d.Name, output.Styling{Style: output.StyleDim}))
}

// ConfigPath returns the path to the .conf file for this keyboard.
func (d *Definition) ConfigPath() string {
	return filepath.Join(d.Directory, d.ID+".conf")
}

// KeymapPath returns the path to the .keymap file for this keyboard.
func (d *Definition) KeymapPath() string {
	return filepath.Join(d.Directory, d.ID+".keymap")
}

// IsBoard reports whether the hardware has a processor.
func (d *Definition) IsBoard() bool {
	return d.Type == TypeBoard
}

// IsShield reports whether the hardware attaches to a board.
func (d *Definition) IsShield() bool {
	return d.Type == TypeShield
}

// IsInterconnect reports whether the hardware describes a connection between
// two other pieces of hardware.
func (d *Definition) IsInterconnect() bool {
	return d.Type == TypeInterconnect
}

// IsKeyboard reports whether the hardware is a board or shield with keys.
func (d *Definition) IsKeyboard() bool {
	if !d.IsBoard() && !d.IsShield() {
		return false
	}
	for _, feature := range d.Features {
		if feature == "keys" {
			return true
		}
	}
	return false
}

// IsController reports whether the hardware is a board that is not itself a
// keyboard.
func (d *Definition) IsController() bool {
	return d.IsBoard() && !d.IsKeyboard()
}

// IsCompatible reports whether a shield can attach to the given hardware:
// every interconnect the shield requires must be exposed by some item in
// base. It does not account for two shields competing for one interconnect.
func IsCompatible(base []*Definition, shield *Definition) bool {
	if len(shield.Requires) == 0 {
		return true
	}

	exposed := make(map[string]bool)
	for _, b := range base {
		for _, ic := range b.Exposes {
			exposed[ic] = true
		}
	}

	for _, ic := range shield.Requires {
		if !exposed[ic] {
			return false
		}
	}
	return true
}

// GroupedHardware is discovered hardware grouped by role, each group sorted
// by ID.
type GroupedHardware struct {
	Keyboards     []*Definition
	Controllers   []*Definition
	Interconnects []*Definition
}

// FindKeyboard returns the keyboard with the given ID, ignoring case.
func (g *GroupedHardware) FindKeyboard(id string) *Definition {
	return findByID(g.Keyboards, id)
}

// FindController returns the controller board with the given ID, ignoring case.
func (g *GroupedHardware) FindController(id string) *Definition {
	return findByID(g.Controllers, id)
}

// FindInterconnect returns the interconnect with the given ID, ignoring case.
func (g *GroupedHardware) FindInterconnect(id string) *Definition {
	return findByID(g.Interconnects, id)
}

func findByID(items []*Definition, id string) *Definition {
	for _, item := range items {
		if strings.EqualFold(item.ID, id) {
			return item
		}
	}
	return nil
}

// ForRepo discovers and groups the hardware visible from a repo and its
// west modules.
func ForRepo(ctx context.Context, r *repo.Repo) (*GroupedHardware, error) {
	roots, err := boardRoots(ctx, r)
	if err != nil {
		return nil, err
	}

	var defs []*Definition
	for _, root := range roots {
		found, err := Discover(root)
		if err != nil {
			return nil, err
		}
		defs = append(defs, found...)
	}

	output.Debug("Discovered hardware", map[string]any{
		"roots":       len(roots),
		"definitions": len(defs),
	})

	return Group(defs), nil
}

// boardRoots returns the hardware definition directories for a repo and its
// modules, deduplicated.
func boardRoots(ctx context.Context, r *repo.Repo) ([]string, error) {
	seen := make(map[string]bool)
	var roots []string

	add := func(root string) {
		if root != "" && !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}

	add(r.BoardRoot())

	modules, err := r.Modules(ctx)
	if err != nil {
		return nil, err
	}
	for _, module := range modules {
		add(module.BoardRoot())
	}

	return roots, nil
}

// Discover walks a board root and decodes every metadata file under it.
func Discover(root string) ([]*Definition, error) {
	var defs []*Definition

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), metadataSuffix) {
			return nil
		}

		def, err := readDefinition(path)
		if err != nil {
			return err
		}
		if def != nil {
			defs = append(defs, def)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.HardwareInvalid, "Could not scan for hardware metadata").
			WithDetails("Path: " + root)
	}

	return defs, nil
}

func readDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.HardwareInvalid, "Could not read hardware metadata").
			WithDetails("Path: " + path)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrap(err, errors.HardwareInvalid, "Hardware metadata is not valid YAML").
			WithDetails("Path: " + path)
	}

	switch def.Type {
	case TypeBoard, TypeShield, TypeInterconnect:
	default:
		// Unknown metadata kinds are skipped rather than rejected.
		return nil, nil
	}

	def.Directory = filepath.Dir(path)
	return &def, nil
}

// Group splits definitions into keyboards, controllers, and interconnects,
// each sorted by ID.
func Group(defs []*Definition) *GroupedHardware {
	groups := &GroupedHardware{}

	for _, def := range defs {
		switch {
		case def.IsKeyboard():
			groups.Keyboards = append(groups.Keyboards, def)
		case def.IsController():
			groups.Controllers = append(groups.Controllers, def)
		case def.IsInterconnect():
			groups.Interconnects = append(groups.Interconnects, def)
		}
	}

	sortByID(groups.Keyboards)
	sortByID(groups.Controllers)
	sortByID(groups.Interconnects)

	return groups
}

func sortByID(items []*Definition) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
