package structure

import (
	"os"
	"path/filepath"
	"testing"

	"binder/internal/types"
)

// buildTree writes an input tree from a map of relative paths; entries with
// a trailing slash are directories, the rest become small files.
func buildTree(t *testing.T, paths []string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if p[len(p)-1] == '/' {
			if err := os.MkdirAll(full, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestDetectThreeLevel(t *testing.T) {
	root := buildTree(t, []string{
		"Curriculum/Math/plan1.docx",
		"Curriculum/Math/plan2.docx",
		"Curriculum/Science/plan1.docx",
		"Administration/Budget/sheet1.xlsx",
		"Administration/Staff/list.docx",
		"Facilities/Safety/drill.docx",
	})

	d := &Detector{Threshold: 0.3}
	fs, err := d.Detect(root)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if fs.Variant != types.VariantThreeLevel {
		t.Errorf("variant = %q, want three-level (evidence: %v)", fs.Variant, fs.Evidence)
	}
	if fs.LevelFor(2) != 2 {
		t.Errorf("LevelFor(2) = %d, want 2", fs.LevelFor(2))
	}
}

func TestDetectTwoLevel(t *testing.T) {
	root := buildTree(t, []string{
		"schedule.xlsx",
		"notes.docx",
		"agenda.docx",
		"handout.pdf",
		"Photos/one.png",
	})

	d := &Detector{Threshold: 0.3}
	fs, err := d.Detect(root)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if fs.Variant != types.VariantTwoLevel {
		t.Errorf("variant = %q, want two-level (evidence: %v)", fs.Variant, fs.Evidence)
	}
	if fs.LevelFor(1) != 1 {
		t.Errorf("LevelFor(1) = %d, want 1", fs.LevelFor(1))
	}
}

func TestDetectEmptyDirectoryIsUnknown(t *testing.T) {
	root := t.TempDir()
	d := &Detector{Threshold: 0.7}
	fs, err := d.Detect(root)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if fs.Variant != types.VariantUnknown {
		t.Errorf("variant = %q, want unknown", fs.Variant)
	}
	if fs.Confidence != 0 {
		t.Errorf("confidence = %g, want 0", fs.Confidence)
	}
	if len(fs.Issues) == 0 {
		t.Error("expected an issue explaining the empty directory")
	}
}

func TestDetectLowConfidenceFallsBackToFlat(t *testing.T) {
	// A mixed tree that matches neither shape decisively.
	root := buildTree(t, []string{
		"loose.docx",
		"A/Sub/deep.docx",
		"B/file.docx",
	})

	d := &Detector{Threshold: 0.99}
	fs, err := d.Detect(root)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if fs.Variant != types.VariantUnknown {
		t.Errorf("variant = %q, want unknown at extreme threshold", fs.Variant)
	}
	if fs.LevelFor(3) != 1 {
		t.Errorf("flat mapping should level everything at 1, got %d", fs.LevelFor(3))
	}
}

func TestDetectMissingRoot(t *testing.T) {
	d := &Detector{Threshold: 0.7}
	if _, err := d.Detect(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestDetectIgnoresCoverAndHiddenFiles(t *testing.T) {
	root := buildTree(t, []string{
		"Cover Sheet.docx",
		".DS_Store",
		"~$scratch.docx",
		"A/One/x.docx",
		"A/Two/y.docx",
		"B/Three/z.docx",
	})

	d := &Detector{Threshold: 0.3, CoverKeywords: []string{"cover"}}
	fs, err := d.Detect(root)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if got := fs.Evidence["root_file_count"]; got != 0 {
		t.Errorf("root_file_count = %v, want 0 (cover and hidden files excluded)", got)
	}
	if fs.Variant != types.VariantThreeLevel {
		t.Errorf("variant = %q, want three-level", fs.Variant)
	}
}

func TestForVariant(t *testing.T) {
	fs := ForVariant(types.VariantThreeLevel)
	if fs.Variant != types.VariantThreeLevel || fs.Confidence != 1 {
		t.Errorf("ForVariant(three-level) = %+v", fs)
	}
	fs = ForVariant(types.VariantUnknown)
	if fs.Variant != types.VariantUnknown || fs.LevelFor(1) != 1 {
		t.Errorf("ForVariant(unknown) = %+v", fs)
	}
}
