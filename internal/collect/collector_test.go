package collect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"binder/internal/convert"
	"binder/internal/job"
	"binder/internal/pdf"
	"binder/internal/types"
)

func newTestCollector(t *testing.T) (*Collector, *pdf.Processor) {
	t.Helper()
	proc := pdf.New(pdf.Config{}, nil)
	conv := convert.New(convert.Options{MaxAttempts: 1})
	return New(Options{
		Converter:     conv,
		Processor:     proc,
		CoverKeywords: []string{"cover", "表紙"},
		Locale:        "und",
	}), proc
}

// writePDF drops a real one-page PDF at path, creating parent dirs.
func writePDF(t *testing.T, proc *pdf.Processor, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := proc.CreateSeparator(filepath.Base(path), path); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newWorkspace(t *testing.T) *job.Workspace {
	t.Helper()
	ws, err := job.NewWorkspace(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(ws.Remove)
	return ws
}

func twoLevel() types.FolderStructure {
	return types.FolderStructure{Variant: types.VariantTwoLevel, Levels: types.TwoLevelLevels()}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"01_Annual_Report", "Annual Report"},
		{"2.3 Minutes", "Minutes"},
		{"- draft", "draft"},
		{"Reports", "Reports"},
		{"0123", "0123"},
	}
	for _, tt := range tests {
		if got := sanitizeName(tt.in); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRunTwoLevel(t *testing.T) {
	c, proc := newTestCollector(t)
	root := t.TempDir()

	writePDF(t, proc, filepath.Join(root, "cover.pdf"))
	writePDF(t, proc, filepath.Join(root, "01_Reports", "a.pdf"))
	writePDF(t, proc, filepath.Join(root, "01_Reports", "b.pdf"))
	writePDF(t, proc, filepath.Join(root, "02_Minutes", "c.pdf"))
	writeFile(t, filepath.Join(root, "01_Reports", "notes.txt"), "plain text")
	writeFile(t, filepath.Join(root, "~$open.docx"), "scratch")

	plan, warnings, err := c.Run(context.Background(), root, twoLevel(), newWorkspace(t), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if plan.Cover == "" || plan.CoverPages != 1 {
		t.Errorf("cover = %q pages = %d, want a one-page cover", plan.Cover, plan.CoverPages)
	}
	// separator + a + b + separator + c
	if len(plan.Fragments) != 5 {
		t.Fatalf("got %d fragments, want 5", len(plan.Fragments))
	}
	if len(plan.Entries) != 2 {
		t.Fatalf("got %d TOC entries, want 2", len(plan.Entries))
	}

	want := []types.TocEntry{
		{Title: "Reports", Level: 1, Page: 3},
		{Title: "Minutes", Level: 1, Page: 6},
	}
	for i, e := range plan.Entries {
		if e != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, e, want[i])
		}
	}

	var skipped int
	for _, w := range warnings {
		if w.Kind == job.WarnSkippedFile {
			skipped++
		}
	}
	if skipped != 1 {
		t.Errorf("got %d skipped-file warnings, want 1 for notes.txt", skipped)
	}
}

func TestRunThreeLevel(t *testing.T) {
	c, proc := newTestCollector(t)
	root := t.TempDir()
	writePDF(t, proc, filepath.Join(root, "Category", "Section", "doc.pdf"))

	fs := types.FolderStructure{Variant: types.VariantThreeLevel, Levels: types.ThreeLevelLevels()}
	plan, _, err := c.Run(context.Background(), root, fs, newWorkspace(t), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []types.TocEntry{
		{Title: "Category", Level: 1, Page: 2},
		{Title: "Section", Level: 2, Page: 3},
	}
	if len(plan.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(plan.Entries))
	}
	for i, e := range plan.Entries {
		if e != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, e, want[i])
		}
	}
	// two separators + the document
	if len(plan.Fragments) != 3 {
		t.Errorf("got %d fragments, want 3", len(plan.Fragments))
	}
}

func TestRunNumericOrdering(t *testing.T) {
	c, proc := newTestCollector(t)
	root := t.TempDir()
	writePDF(t, proc, filepath.Join(root, "10_Appendix", "x.pdf"))
	writePDF(t, proc, filepath.Join(root, "2_Body", "y.pdf"))

	plan, _, err := c.Run(context.Background(), root, twoLevel(), newWorkspace(t), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(plan.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(plan.Entries))
	}
	if plan.Entries[0].Title != "Body" || plan.Entries[1].Title != "Appendix" {
		t.Errorf("order = [%s, %s], want numeric [Body, Appendix]",
			plan.Entries[0].Title, plan.Entries[1].Title)
	}
}

func TestRunRootFileGetsEntry(t *testing.T) {
	c, proc := newTestCollector(t)
	root := t.TempDir()
	writePDF(t, proc, filepath.Join(root, "03_Overview.pdf"))

	plan, _, err := c.Run(context.Background(), root, twoLevel(), newWorkspace(t), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(plan.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(plan.Entries))
	}
	e := plan.Entries[0]
	if e.Title != "Overview" || e.Level != 1 || e.Page != 2 {
		t.Errorf("entry = %+v, want {Overview 1 2}", e)
	}
}

func TestRunEmptySectionDropped(t *testing.T) {
	c, proc := newTestCollector(t)
	root := t.TempDir()
	writePDF(t, proc, filepath.Join(root, "Full", "doc.pdf"))
	if err := os.MkdirAll(filepath.Join(root, "Empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	plan, warnings, err := c.Run(context.Background(), root, twoLevel(), newWorkspace(t), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(plan.Entries) != 1 || plan.Entries[0].Title != "Full" {
		t.Errorf("entries = %+v, want only Full", plan.Entries)
	}
	var empty int
	for _, w := range warnings {
		if w.Kind == job.WarnEmptySection {
			empty++
		}
	}
	if empty != 1 {
		t.Errorf("got %d empty-section warnings, want 1", empty)
	}
}

func TestRunSectionWithOnlyFailuresAborts(t *testing.T) {
	c, _ := newTestCollector(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Broken", "x.pdf"), "not a pdf")

	_, _, err := c.Run(context.Background(), root, twoLevel(), newWorkspace(t), nil)
	if job.KindOf(err) != job.KindStructural {
		t.Errorf("error kind = %q (%v), want structural", job.KindOf(err), err)
	}
}

func TestRunNoContent(t *testing.T) {
	c, _ := newTestCollector(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "notes.txt"), "plain text")

	_, _, err := c.Run(context.Background(), root, twoLevel(), newWorkspace(t), nil)
	if job.KindOf(err) != job.KindStructural {
		t.Errorf("error kind = %q (%v), want structural", job.KindOf(err), err)
	}
}

func TestRunMissingRoot(t *testing.T) {
	c, _ := newTestCollector(t)
	_, _, err := c.Run(context.Background(), filepath.Join(t.TempDir(), "absent"), twoLevel(), newWorkspace(t), nil)
	if job.KindOf(err) != job.KindPath {
		t.Errorf("error kind = %q (%v), want path", job.KindOf(err), err)
	}
}

func TestRunCancelled(t *testing.T) {
	c, proc := newTestCollector(t)
	root := t.TempDir()
	writePDF(t, proc, filepath.Join(root, "Section", "doc.pdf"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.Run(ctx, root, twoLevel(), newWorkspace(t), nil)
	if !errors.Is(err, job.ErrCancelled) {
		t.Errorf("error = %v, want ErrCancelled", err)
	}
}

func TestRunFailedCoverDegradesToWarning(t *testing.T) {
	c, proc := newTestCollector(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cover.pdf"), "corrupt")
	writePDF(t, proc, filepath.Join(root, "Section", "doc.pdf"))

	plan, warnings, err := c.Run(context.Background(), root, twoLevel(), newWorkspace(t), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if plan.Cover != "" {
		t.Errorf("cover = %q, want none", plan.Cover)
	}
	if len(warnings) == 0 {
		t.Error("expected a warning for the corrupt cover")
	}
	// With no cover the content block starts right after the TOC page.
	if plan.Entries[0].Page != 2 {
		t.Errorf("first entry page = %d, want 2", plan.Entries[0].Page)
	}
}
