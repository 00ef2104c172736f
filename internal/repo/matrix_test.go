package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildMatrix_MissingFile(t *testing.T) {
	m, err := LoadBuildMatrix(filepath.Join(t.TempDir(), "build.yaml"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(m.Include()) != 0 {
		t.Errorf("Expected an empty matrix, got %d items", len(m.Include()))
	}
}

func TestBuildMatrix_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.yaml")

	m, err := LoadBuildMatrix(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	added := m.Append(
		BuildItem{Board: "nice_nano_v2", Shield: "corne_left"},
		BuildItem{Board: "nice_nano_v2", Shield: "corne_right"},
	)
	if len(added) != 2 {
		t.Fatalf("Expected 2 items added, got %d", len(added))
	}
	if err := m.Write(); err != nil {
		t.Fatalf("Failed to write matrix: %v", err)
	}

	reloaded, err := LoadBuildMatrix(path)
	if err != nil {
		t.Fatalf("Failed to reload matrix: %v", err)
	}
	if len(reloaded.Include()) != 2 {
		t.Fatalf("Expected 2 items after reload, got %d", len(reloaded.Include()))
	}
	if !reloaded.HasItem(BuildItem{Board: "nice_nano_v2", Shield: "corne_left"}) {
		t.Error("Expected the reloaded matrix to contain corne_left")
	}
}

func TestBuildMatrix_AppendDeduplicates(t *testing.T) {
	m := &BuildMatrix{}
	item := BuildItem{Board: "nice_nano_v2", Shield: "sofle_left"}

	if added := m.Append(item); len(added) != 1 {
		t.Fatalf("Expected 1 item added, got %d", len(added))
	}
	if added := m.Append(item); len(added) != 0 {
		t.Errorf("Expected duplicate to be skipped, got %d added", len(added))
	}
	if len(m.Include()) != 1 {
		t.Errorf("Expected 1 item in matrix, got %d", len(m.Include()))
	}
}

func TestBuildMatrix_Remove(t *testing.T) {
	m := &BuildMatrix{}
	left := BuildItem{Board: "nice_nano_v2", Shield: "corne_left"}
	right := BuildItem{Board: "nice_nano_v2", Shield: "corne_right"}
	m.Append(left, right)

	removed := m.Remove(left, BuildItem{Board: "unknown"})
	if len(removed) != 1 || removed[0] != left {
		t.Fatalf("Expected only the left half removed, got %v", removed)
	}
	if len(m.Include()) != 1 || m.Include()[0] != right {
		t.Errorf("Expected only the right half to remain, got %v", m.Include())
	}
}

func TestBuildMatrix_YAMLKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.yaml")
	m, _ := LoadBuildMatrix(path)
	m.Append(BuildItem{
		Board:        "nice_nano_v2",
		Shield:       "corne_left",
		CmakeArgs:    "-DCONFIG_ZMK_SLEEP=y",
		ArtifactName: "corne_left_custom",
	})
	if err := m.Write(); err != nil {
		t.Fatalf("Failed to write matrix: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read matrix: %v", err)
	}

	content := string(data)
	for _, want := range []string{"include:", "board: nice_nano_v2", "cmake-args:", "artifact-name:"} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, content)
		}
	}
	if strings.Contains(content, "snippet:") {
		t.Error("Expected empty fields to be omitted")
	}
}

func TestBuildItem_Render(t *testing.T) {
	item := BuildItem{Board: "nice_nano_v2", Shield: "corne_left", Snippet: "studio-rpc-usb-uart"}

	got := item.Render().String()
	want := "nice_nano_v2, corne_left, snippet: studio-rpc-usb-uart"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
