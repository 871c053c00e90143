package convert

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/image/bmp"

	"binder/internal/pdf"
	"binder/internal/types"
)

// fakeAutomator succeeds after a configurable number of failures and
// counts calls so retry behavior can be asserted exactly.
type fakeAutomator struct {
	mu        sync.Mutex
	calls     int
	cleanups  int
	failFirst int
}

func (f *fakeAutomator) Convert(_ context.Context, _, dst string) error {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	if n <= f.failFirst {
		return fmt.Errorf("automation glitch on attempt %d", n)
	}
	return os.WriteFile(dst, []byte("%PDF-1.4\nfake"), 0o644)
}

func (f *fakeAutomator) Cleanup() {
	f.mu.Lock()
	f.cleanups++
	f.mu.Unlock()
}

func newTestConverter(office Automator) *Converter {
	return New(Options{MaxAttempts: 3, Backoff: 0, Office: office})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"report.docx", KindOffice},
		{"REPORT.DOCX", KindOffice},
		{"sheet.xls", KindOffice},
		{"deck.pptx", KindOffice},
		{"notes.rtf", KindOffice},
		{"scan.pdf", KindPDF},
		{"photo.JPG", KindImage},
		{"photo.tiff", KindImage},
		{"old.jtd", KindLegacy},
		{"data.csv", KindUnsupported},
		{"noext", KindUnsupported},
	}
	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsScratchFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"~$report.docx", true},
		{".$notes.jtd", true},
		{"report.docx", false},
		{"$money.xls", false},
	}
	for _, tt := range tests {
		if got := IsScratchFile(tt.name); got != tt.want {
			t.Errorf("IsScratchFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFragmentName(t *testing.T) {
	a := FragmentName("/root/one/report.docx")
	b := FragmentName("/root/two/report.docx")
	if a == b {
		t.Errorf("same base in different dirs produced one fragment name %q", a)
	}
	if a != FragmentName("/root/one/report.docx") {
		t.Error("fragment name is not deterministic")
	}
	if filepath.Ext(a) != ".pdf" {
		t.Errorf("fragment name %q does not end in .pdf", a)
	}
}

func TestConvertSkipsAndRejects(t *testing.T) {
	auto := &fakeAutomator{}
	c := newTestConverter(auto)
	dir := t.TempDir()

	tests := []struct {
		name string
		file string
		want types.FailureReason
	}{
		{"scratch artifact", "~$draft.docx", types.ReasonScratchFile},
		{"unsupported extension", "data.csv", types.ReasonUnsupported},
		{"legacy without converter", "old.jtd", types.ReasonUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := filepath.Join(dir, tt.file)
			if err := os.WriteFile(src, []byte("content"), 0o644); err != nil {
				t.Fatal(err)
			}
			res := c.Convert(context.Background(), src, dir)
			if res.Reason != tt.want {
				t.Errorf("reason = %q, want %q", res.Reason, tt.want)
			}
			if res.OK() {
				t.Error("result reports success")
			}
		})
	}
	if auto.calls != 0 {
		t.Errorf("automator was invoked %d times for skipped files", auto.calls)
	}
}

func TestConvertOfficeRetriesThenSucceeds(t *testing.T) {
	auto := &fakeAutomator{failFirst: 2}
	c := newTestConverter(auto)
	dir := t.TempDir()
	src := filepath.Join(dir, "report.docx")
	if err := os.WriteFile(src, []byte("doc"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := c.Convert(context.Background(), src, dir)
	if !res.OK() {
		t.Fatalf("Convert() failed: reason=%q err=%v", res.Reason, res.Err)
	}
	if res.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", res.Attempts)
	}
	if auto.cleanups != 2 {
		t.Errorf("cleanups between attempts = %d, want 2", auto.cleanups)
	}
	if !looksLikePDF(res.PDFPath) {
		t.Errorf("fragment %s is not a PDF", res.PDFPath)
	}
}

func TestConvertOfficeExhaustsRetries(t *testing.T) {
	auto := &fakeAutomator{failFirst: 10}
	c := newTestConverter(auto)
	dir := t.TempDir()
	src := filepath.Join(dir, "report.docx")
	if err := os.WriteFile(src, []byte("doc"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := c.Convert(context.Background(), src, dir)
	if res.OK() {
		t.Fatal("Convert() succeeded, want exhaustion")
	}
	if res.Reason != types.ReasonExhausted {
		t.Errorf("reason = %q, want %q", res.Reason, types.ReasonExhausted)
	}
	if auto.calls != 3 {
		t.Errorf("automator invoked %d times, want exactly 3", auto.calls)
	}
	if res.Err == nil {
		t.Error("exhausted result carries no error")
	}
}

func TestConvertCancelledContext(t *testing.T) {
	auto := &fakeAutomator{failFirst: 10}
	c := newTestConverter(auto)
	dir := t.TempDir()
	src := filepath.Join(dir, "report.docx")
	if err := os.WriteFile(src, []byte("doc"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Convert(ctx, src, dir)
	if res.OK() {
		t.Fatal("Convert() succeeded with cancelled context")
	}
	if auto.calls > 1 {
		t.Errorf("automator retried %d times after cancellation", auto.calls)
	}
	if res.Err == nil || !errors.Is(res.Err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled in chain", res.Err)
	}
}

func TestConvertReusesExistingFragment(t *testing.T) {
	auto := &fakeAutomator{}
	c := newTestConverter(auto)
	dir := t.TempDir()
	src := filepath.Join(dir, "report.docx")
	if err := os.WriteFile(src, []byte("doc"), 0o644); err != nil {
		t.Fatal(err)
	}

	frag := filepath.Join(dir, FragmentName(src))
	if err := os.WriteFile(frag, []byte("%PDF-1.4\nearlier pass"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := c.Convert(context.Background(), src, dir)
	if !res.OK() {
		t.Fatalf("Convert() failed: %v", res.Err)
	}
	if res.Attempts != 0 {
		t.Errorf("attempts = %d, want 0 for a reused fragment", res.Attempts)
	}
	if auto.calls != 0 {
		t.Errorf("automator invoked %d times although fragment existed", auto.calls)
	}
}

func TestConvertPDFPassthrough(t *testing.T) {
	c := newTestConverter(&fakeAutomator{})
	dir := t.TempDir()

	src := filepath.Join(dir, "existing.pdf")
	p := pdf.New(pdf.Config{}, nil)
	if err := p.CreateSeparator("Existing", src); err != nil {
		t.Fatal(err)
	}

	res := c.Convert(context.Background(), src, dir)
	if !res.OK() {
		t.Fatalf("Convert() failed: reason=%q err=%v", res.Reason, res.Err)
	}
	if res.PDFPath == src {
		t.Error("fragment points at the source instead of a workspace copy")
	}
	if !looksLikePDF(res.PDFPath) {
		t.Errorf("fragment %s is not a PDF", res.PDFPath)
	}
}

func TestConvertCorruptPDF(t *testing.T) {
	c := newTestConverter(&fakeAutomator{})
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(src, []byte("definitely not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := c.Convert(context.Background(), src, dir)
	if res.OK() {
		t.Fatal("Convert() accepted a corrupt PDF")
	}
	if res.Reason != types.ReasonUnreadable {
		t.Errorf("reason = %q, want %q", res.Reason, types.ReasonUnreadable)
	}
}

func testImage(alpha uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: alpha})
		}
	}
	return img
}

func TestConvertImage(t *testing.T) {
	c := newTestConverter(&fakeAutomator{})
	proc := pdf.New(pdf.Config{}, nil)

	tests := []struct {
		name   string
		file   string
		encode func(f *os.File) error
	}{
		{
			name:   "opaque png",
			file:   "photo.png",
			encode: func(f *os.File) error { return png.Encode(f, testImage(255)) },
		},
		{
			name:   "png with alpha",
			file:   "logo.png",
			encode: func(f *os.File) error { return png.Encode(f, testImage(128)) },
		},
		{
			name:   "bmp",
			file:   "scan.bmp",
			encode: func(f *os.File) error { return bmp.Encode(f, testImage(255)) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, tt.file)
			f, err := os.Create(src)
			if err != nil {
				t.Fatal(err)
			}
			if err := tt.encode(f); err != nil {
				t.Fatal(err)
			}
			f.Close()

			res := c.Convert(context.Background(), src, dir)
			if !res.OK() {
				t.Fatalf("Convert() failed: reason=%q err=%v", res.Reason, res.Err)
			}
			if !looksLikePDF(res.PDFPath) {
				t.Fatalf("fragment %s is not a PDF", res.PDFPath)
			}
			count, err := proc.PageCount(res.PDFPath)
			if err != nil {
				t.Fatalf("fragment does not parse: %v", err)
			}
			if count != 1 {
				t.Errorf("fragment page count = %d, want 1", count)
			}
		})
	}
}

func TestExecAutomatorCleanupIdempotent(t *testing.T) {
	a := NewExecAutomator([]string{"true"}, 0, nil)
	a.Cleanup()
	a.Cleanup() // second call with nothing running must not panic
}
