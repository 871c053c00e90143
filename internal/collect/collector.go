// Package collect walks an input tree in deterministic order, drives the
// per-file converters, and assembles the merge plan: cover, ordered
// content fragments, and the TOC model with provisional page numbers.
package collect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/collate"

	"binder/internal/convert"
	"binder/internal/job"
	"binder/internal/pdf"
	"binder/internal/types"
)

// Options configures a Collector.
type Options struct {
	Converter     *convert.Converter
	Processor     *pdf.Processor
	CoverKeywords []string
	Locale        string
	Logger        *slog.Logger
}

// Collector builds merge plans.
type Collector struct {
	conv          *convert.Converter
	proc          *pdf.Processor
	coverKeywords []string
	collator      *collate.Collator
	logger        *slog.Logger
}

// New creates a Collector.
func New(opts Options) *Collector {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Collector{
		conv:          opts.Converter,
		proc:          opts.Processor,
		coverKeywords: opts.CoverKeywords,
		collator:      newCollator(opts.Locale),
		logger:        opts.Logger,
	}
}

// runState carries the plan being built plus the running page counter.
// Pages assume the final document opens with the cover followed by a
// single TOC page; the counter therefore starts at CoverPages + 2.
type runState struct {
	plan     *types.MergePlan
	warnings []job.Warning
	page     int
	ws       *job.Workspace
	progress job.Progress
	sepSeq   int
}

// Run walks root and returns the merge plan. Individual file failures
// become warnings; a section whose every candidate file failed, or a
// tree with no convertible content at all, is a structural error.
func (c *Collector) Run(ctx context.Context, root string, fs types.FolderStructure, ws *job.Workspace, progress job.Progress) (*types.MergePlan, []job.Warning, error) {
	st := &runState{
		plan:     &types.MergePlan{},
		ws:       ws,
		progress: job.Sink(progress),
	}

	dirs, files, cover, err := c.scanDir(root, true)
	if err != nil {
		return nil, nil, &job.Error{Kind: job.KindPath, Stage: "collecting", Path: root, Msg: "cannot read input directory", Err: err}
	}

	if cover != "" {
		c.convertCover(ctx, filepath.Join(root, cover), st)
	}
	st.page = st.plan.CoverPages + 2 // one TOC page follows the cover

	for _, dir := range dirs {
		if err := c.walkDir(ctx, filepath.Join(root, dir), 1, fs, st); err != nil {
			return nil, st.warnings, err
		}
	}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, st.warnings, job.ErrCancelled
		}
		c.addRootFile(ctx, filepath.Join(root, name), st)
	}

	if !st.plan.HasContent() {
		return nil, st.warnings, &job.Error{
			Kind:  job.KindStructural,
			Stage: "collecting",
			Path:  root,
			Msg:   "no convertible content found",
		}
	}
	if err := types.ValidateTocSequence(st.plan.Entries); err != nil {
		return nil, st.warnings, &job.Error{
			Kind:  job.KindStructural,
			Stage: "collecting",
			Path:  root,
			Msg:   "inconsistent TOC sequence",
			Err:   err,
		}
	}
	return st.plan, st.warnings, nil
}

// scanDir splits a directory into sorted subdirectory and file names.
// Hidden entries, scratch files and symlinks are ignored. At the tree
// root the first file matching a cover keyword is pulled out separately.
func (c *Collector) scanDir(dir string, isRoot bool) (dirs, files []string, cover string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, "", err
	}
	for _, e := range entries {
		name := e.Name()
		if name[0] == '.' || convert.IsScratchFile(name) {
			continue
		}
		if e.Type()&os.ModeSymlink != 0 {
			c.logger.Debug("ignoring symlink", "path", filepath.Join(dir, name))
			continue
		}
		if e.IsDir() {
			dirs = append(dirs, name)
		} else {
			files = append(files, name)
		}
	}
	c.collator.SortStrings(dirs)
	c.collator.SortStrings(files)

	if isRoot {
		for i, name := range files {
			if c.isCoverName(name) {
				cover = name
				files = append(files[:i], files[i+1:]...)
				break
			}
		}
	}
	return dirs, files, cover, nil
}

// convertCover converts the cover document. A cover that fails to
// convert degrades to a warning; the document is built without it.
func (c *Collector) convertCover(ctx context.Context, path string, st *runState) {
	res := c.conv.Convert(ctx, path, st.ws.Dir())
	if !res.OK() {
		c.warnSkipped(st, path, res)
		return
	}
	pages, err := c.proc.PageCount(res.PDFPath)
	if err != nil {
		st.warnings = append(st.warnings, job.Warning{Kind: job.WarnSkippedFile, Path: path, Msg: "cover fragment unreadable"})
		return
	}
	st.plan.Cover = res.PDFPath
	st.plan.CoverPages = pages
	st.progress.FileProcessed(path, job.FileConverted)
	c.logger.Debug("cover converted", "file", path, "pages", pages)
}

// walkDir processes one directory. Directories within reach of the level
// mapping get a TOC entry anchored on a generated separator page; deeper
// directories contribute their files to the enclosing section.
func (c *Collector) walkDir(ctx context.Context, dir string, depth int, fs types.FolderStructure, st *runState) error {
	if err := ctx.Err(); err != nil {
		return job.ErrCancelled
	}

	dirs, files, _, err := c.scanDir(dir, false)
	if err != nil {
		return &job.Error{Kind: job.KindPath, Stage: "collecting", Path: dir, Msg: "cannot read directory", Err: err}
	}

	titled := depth <= fs.MaxDepth()
	if titled && len(dirs) == 0 && len(files) == 0 {
		st.warnings = append(st.warnings, job.Warning{Kind: job.WarnEmptySection, Path: dir, Msg: "directory is empty"})
		return nil
	}

	// The separator page is the section's TOC anchor, so it goes in
	// before any of the section's content.
	var entryIdx = -1
	if titled {
		title := sanitizeName(filepath.Base(dir))
		sep := st.ws.Path(fmt.Sprintf("sep-%03d.pdf", st.sepSeq))
		st.sepSeq++
		if err := c.proc.CreateSeparator(title, sep); err != nil {
			return &job.Error{Kind: job.KindProcessing, Stage: "collecting", Path: dir, Msg: "failed to create separator page", Err: err}
		}
		st.plan.Fragments = append(st.plan.Fragments, sep)
		st.plan.Entries = append(st.plan.Entries, types.TocEntry{
			Title: title,
			Level: fs.LevelFor(depth),
			Page:  st.page,
		})
		entryIdx = len(st.plan.Entries) - 1
		st.page++
	}

	candidates, converted := 0, 0
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return job.ErrCancelled
		}
		path := filepath.Join(dir, name)
		if !convert.Supported(name) {
			st.warnings = append(st.warnings, job.Warning{Kind: job.WarnSkippedFile, Path: path, Msg: "unsupported format"})
			st.progress.FileProcessed(path, job.FileSkipped)
			continue
		}
		candidates++
		res := c.conv.Convert(ctx, path, st.ws.Dir())
		if !res.OK() {
			if err := ctx.Err(); err != nil {
				return job.ErrCancelled
			}
			c.warnSkipped(st, path, res)
			continue
		}
		pages, err := c.proc.PageCount(res.PDFPath)
		if err != nil {
			c.warnSkipped(st, path, &types.ConversionResult{Source: path, Reason: types.ReasonUnreadable, Err: err})
			continue
		}
		converted++
		st.plan.Fragments = append(st.plan.Fragments, res.PDFPath)
		st.page += pages
		st.progress.FileProcessed(path, job.FileConverted)
	}

	if candidates > 0 && converted == 0 && len(dirs) == 0 {
		return &job.Error{
			Kind:  job.KindStructural,
			Stage: "collecting",
			Path:  dir,
			Msg:   fmt.Sprintf("all %d recognized files in this section failed to convert", candidates),
		}
	}

	hadContent := converted > 0
	for _, sub := range dirs {
		before := len(st.plan.Fragments)
		if err := c.walkDir(ctx, filepath.Join(dir, sub), depth+1, fs, st); err != nil {
			return err
		}
		if len(st.plan.Fragments) > before {
			hadContent = true
		}
	}

	// A titled section that ends up with nothing under it keeps neither
	// its separator nor its TOC row.
	if titled && !hadContent {
		st.plan.Fragments = st.plan.Fragments[:len(st.plan.Fragments)-1]
		st.plan.Entries = append(st.plan.Entries[:entryIdx], st.plan.Entries[entryIdx+1:]...)
		st.page--
		st.warnings = append(st.warnings, job.Warning{Kind: job.WarnEmptySection, Path: dir, Msg: "directory contributed no content"})
	}
	return nil
}

// addRootFile converts a loose root-level document and gives it its own
// level-1 TOC entry anchored at its first page.
func (c *Collector) addRootFile(ctx context.Context, path string, st *runState) {
	if !convert.Supported(path) {
		st.warnings = append(st.warnings, job.Warning{Kind: job.WarnSkippedFile, Path: path, Msg: "unsupported format"})
		st.progress.FileProcessed(path, job.FileSkipped)
		return
	}
	res := c.conv.Convert(ctx, path, st.ws.Dir())
	if !res.OK() {
		c.warnSkipped(st, path, res)
		return
	}
	pages, err := c.proc.PageCount(res.PDFPath)
	if err != nil {
		c.warnSkipped(st, path, &types.ConversionResult{Source: path, Reason: types.ReasonUnreadable, Err: err})
		return
	}
	st.plan.Fragments = append(st.plan.Fragments, res.PDFPath)
	st.plan.Entries = append(st.plan.Entries, types.TocEntry{
		Title: sanitizeName(fileStem(filepath.Base(path))),
		Level: 1,
		Page:  st.page,
	})
	st.page += pages
	st.progress.FileProcessed(path, job.FileConverted)
}

func (c *Collector) warnSkipped(st *runState, path string, res *types.ConversionResult) {
	msg := string(res.Reason)
	if res.Err != nil {
		msg = fmt.Sprintf("%s: %v", res.Reason, res.Err)
	}
	st.warnings = append(st.warnings, job.Warning{Kind: job.WarnSkippedFile, Path: path, Msg: msg})
	st.progress.FileProcessed(path, job.FileFailed)
	c.logger.Warn("skipping file", "file", path, "reason", res.Reason, "error", res.Err)
}
