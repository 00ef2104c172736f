package hardware

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMetadata(t *testing.T, root, dir, name, content string) {
	t.Helper()
	full := filepath.Join(root, dir)
	if err := os.MkdirAll(full, 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(full, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write metadata: %v", err)
	}
}

func makeBoardRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeMetadata(t, root, "shields/corne", "corne.zmk.yml", `
type: shield
id: corne
name: Corne
siblings:
  - corne_left
  - corne_right
features:
  - keys
requires:
  - pro_micro
`)
	writeMetadata(t, root, "arm/nice_nano", "nice_nano_v2.zmk.yml", `
type: board
id: nice_nano_v2
name: nice!nano v2
arch: arm
exposes:
  - pro_micro
outputs:
  - usb
  - ble
`)
	writeMetadata(t, root, "arm/planck", "planck_rev6.zmk.yml", `
type: board
id: planck_rev6
name: Planck rev6
arch: arm
features:
  - keys
`)
	writeMetadata(t, root, "interconnects/pro_micro", "pro_micro.zmk.yml", `
type: interconnect
id: pro_micro
name: Pro Micro
node_labels:
  gpio: pro_micro
  i2c: pro_micro_i2c
`)
	writeMetadata(t, root, "misc", "notes.zmk.yml", `
type: changelog
id: ignored
`)
	// Not a metadata file at all.
	writeMetadata(t, root, "misc", "README.md", "hi")

	return root
}

func discoverGrouped(t *testing.T) *GroupedHardware {
	t.Helper()
	defs, err := Discover(makeBoardRoot(t))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return Group(defs)
}

func TestDiscover(t *testing.T) {
	defs, err := Discover(makeBoardRoot(t))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(defs) != 4 {
		t.Fatalf("Expected 4 definitions, got %d", len(defs))
	}
	for _, def := range defs {
		if def.Directory == "" {
			t.Errorf("Expected %q to record its directory", def.ID)
		}
	}
}

func TestDiscover_InvalidYAML(t *testing.T) {
	root := t.TempDir()
	writeMetadata(t, root, "bad", "broken.zmk.yml", "type: [unclosed")

	if _, err := Discover(root); err == nil {
		t.Error("Expected an error for invalid metadata")
	}
}

func TestGroup(t *testing.T) {
	groups := discoverGrouped(t)

	if len(groups.Keyboards) != 2 {
		t.Errorf("Expected 2 keyboards, got %d", len(groups.Keyboards))
	}
	if len(groups.Controllers) != 1 {
		t.Errorf("Expected 1 controller, got %d", len(groups.Controllers))
	}
	if len(groups.Interconnects) != 1 {
		t.Errorf("Expected 1 interconnect, got %d", len(groups.Interconnects))
	}

	// Keyboards are sorted by ID: corne before planck_rev6.
	if groups.Keyboards[0].ID != "corne" || groups.Keyboards[1].ID != "planck_rev6" {
		t.Errorf("Unexpected keyboard order: %q, %q", groups.Keyboards[0].ID, groups.Keyboards[1].ID)
	}
}

func TestGroupedHardware_Find(t *testing.T) {
	groups := discoverGrouped(t)

	if kb := groups.FindKeyboard("CORNE"); kb == nil || kb.ID != "corne" {
		t.Error("Expected FindKeyboard to match case-insensitively")
	}
	if groups.FindKeyboard("nice_nano_v2") != nil {
		t.Error("Expected a controller not to be found as a keyboard")
	}
	if c := groups.FindController("nice_nano_v2"); c == nil {
		t.Error("Expected to find the nice_nano_v2 controller")
	}
	if ic := groups.FindInterconnect("pro_micro"); ic == nil {
		t.Error("Expected to find the pro_micro interconnect")
	}
}

func TestDefinition_Roles(t *testing.T) {
	groups := discoverGrouped(t)

	corne := groups.FindKeyboard("corne")
	if !corne.IsShield() || !corne.IsKeyboard() || corne.IsController() {
		t.Error("Expected corne to be a shield keyboard")
	}

	planck := groups.FindKeyboard("planck_rev6")
	if !planck.IsBoard() || !planck.IsKeyboard() {
		t.Error("Expected planck_rev6 to be an onboard-controller keyboard")
	}

	nano := groups.FindController("nice_nano_v2")
	if !nano.IsController() || nano.IsKeyboard() {
		t.Error("Expected nice_nano_v2 to be a controller only")
	}
}

func TestIsCompatible(t *testing.T) {
	groups := discoverGrouped(t)
	corne := groups.FindKeyboard("corne")
	planck := groups.FindKeyboard("planck_rev6")
	nano := groups.FindController("nice_nano_v2")

	tests := []struct {
		name   string
		base   []*Definition
		shield *Definition
		want   bool
	}{
		{"shield on matching controller", []*Definition{nano}, corne, true},
		{"shield with no controller", nil, corne, false},
		{"shield on incompatible base", []*Definition{planck}, corne, false},
		{"no requirements always fits", []*Definition{planck}, &Definition{Type: TypeShield, ID: "oled"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCompatible(tt.base, tt.shield); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDefinition_Paths(t *testing.T) {
	def := &Definition{Directory: filepath.Join("boards", "shields", "corne"), ID: "corne"}

	if got := def.ConfigPath(); got != filepath.Join("boards", "shields", "corne", "corne.conf") {
		t.Errorf("Unexpected config path: %q", got)
	}
	if got := def.KeymapPath(); got != filepath.Join("boards", "shields", "corne", "corne.keymap") {
		t.Errorf("Unexpected keymap path: %q", got)
	}
}

func TestDefinition_Render(t *testing.T) {
	def := &Definition{ID: "nice_nano_v2", Name: "nice!nano v2"}

	if got := def.Render().String(); got != "nice_nano_v2  nice!nano v2" {
		t.Errorf("Unexpected render: %q", got)
	}
}
