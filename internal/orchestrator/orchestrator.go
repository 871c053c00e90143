// Package orchestrator drives a merge job through its stages: structure
// detection, collection, provisional merge, TOC generation, final
// assembly, pagination, bookmarking and optional compression. Exactly
// one job runs at a time; the output path is only ever touched by the
// final atomic promotion.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"binder/internal/atomicfile"
	"binder/internal/collect"
	"binder/internal/config"
	"binder/internal/convert"
	"binder/internal/job"
	"binder/internal/pdf"
	"binder/internal/structure"
	"binder/internal/types"
)

// Stage names, in pipeline order.
const (
	StageCollecting    = "collecting"
	StageProvisional   = "provisional-merge"
	StageTOC           = "toc-generation"
	StageFinalAssembly = "final-assembly"
	StagePagination    = "pagination"
	StageBookmarking   = "bookmarking"
	StageCompressing   = "compressing"
)

// maxTOCIterations bounds the TOC re-generation loop. The page count of
// a TOC stabilizes after one growth step in practice; three keeps a
// pathological feedback loop from spinning.
const maxTOCIterations = 3

// Orchestrator owns the single-job pipeline.
type Orchestrator struct {
	cfg         *config.Config
	scratchRoot string
	logger      *slog.Logger
	proc        *pdf.Processor
	collector   *collect.Collector
	detector    *structure.Detector
	busy        atomic.Bool
}

// New wires an Orchestrator from configuration. scratchRoot is the
// directory job workspaces are created under.
func New(cfg *config.Config, scratchRoot string, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	proc := pdf.New(pdf.Config{
		TOCTitle:        cfg.PDF.TOCTitle,
		FontFile:        cfg.PDF.FontFile,
		NumberPoints:    cfg.PDF.NumberPoints,
		NumberOffsetY:   cfg.PDF.NumberOffsetY,
		Ghostscript:     cfg.Compress.Ghostscript,
		CompressTimeout: cfg.Compress.Timeout,
	}, logger)

	return &Orchestrator{
		cfg:         cfg,
		scratchRoot: scratchRoot,
		logger:      logger,
		proc:        proc,
		collector: collect.New(collect.Options{
			Converter:     convert.NewFromConfig(cfg.Convert, logger),
			Processor:     proc,
			CoverKeywords: cfg.Collect.CoverKeywords,
			Locale:        cfg.Collect.Locale,
			Logger:        logger,
		}),
		detector: &structure.Detector{
			Threshold:        cfg.Detect.ConfidenceThreshold,
			CategoryKeywords: cfg.Detect.CategoryKeywords,
			CoverKeywords:    cfg.Collect.CoverKeywords,
			Logger:           logger,
		},
	}
}

// Run executes one merge job. It returns the outcome and, for failed or
// rejected runs, the error that decided it. A second concurrent call
// gets job.ErrBusy and leaves the running job alone.
func (o *Orchestrator) Run(ctx context.Context, req job.Request) (*job.Outcome, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return nil, job.ErrBusy
	}
	defer o.busy.Store(false)

	progress := job.Sink(req.Progress)
	if err := o.validate(req); err != nil {
		return fail("", err, nil)
	}

	// Workspaces from a crashed earlier process are fair game by now.
	job.SweepStale(o.scratchRoot, o.cfg.Scratch.MaxAge, o.logger)

	ws, err := job.NewWorkspace(o.scratchRoot, o.logger)
	if err != nil {
		return fail("", &job.Error{Kind: job.KindPath, Msg: "cannot create workspace", Err: err}, nil)
	}
	defer ws.Remove()
	o.logger.Info("job started", "id", ws.ID(), "root", req.Root, "output", req.OutputPath)

	fs, warnings := o.classify(req)

	progress.StageEntered(StageCollecting)
	plan, collectWarnings, err := o.collector.Run(ctx, req.Root, fs, ws, progress)
	warnings = append(warnings, collectWarnings...)
	if err != nil {
		return fail(StageCollecting, err, warnings)
	}
	progress.Percent(40)

	if plan.Cover == "" && req.CoverTitle != "" {
		cover := ws.Path("cover.pdf")
		if err := o.proc.CreateSeparator(req.CoverTitle, cover); err != nil {
			return fail(StageCollecting, err, warnings)
		}
		plan.Cover = cover
		plan.CoverPages = 1
		plan.Entries = types.OffsetTocPages(plan.Entries, 1)
	}

	progress.StageEntered(StageProvisional)
	if err := ctx.Err(); err != nil {
		return fail(StageProvisional, job.ErrCancelled, warnings)
	}
	content := ws.Path("content.pdf")
	if err := o.proc.Merge(plan.Fragments, content); err != nil {
		return fail(StageProvisional, &job.Error{Kind: job.KindProcessing, Stage: StageProvisional, Msg: "content merge failed", Err: err}, warnings)
	}
	progress.Percent(55)

	progress.StageEntered(StageTOC)
	tocPath := ws.Path("toc.pdf")
	entries, tocPages, err := o.stableTOC(ctx, plan.Entries, tocPath)
	if err != nil {
		return fail(StageTOC, err, warnings)
	}
	progress.Percent(65)

	progress.StageEntered(StageFinalAssembly)
	if err := ctx.Err(); err != nil {
		return fail(StageFinalAssembly, job.ErrCancelled, warnings)
	}
	final := ws.Path("final.pdf")
	parts := make([]string, 0, 3)
	if plan.Cover != "" {
		parts = append(parts, plan.Cover)
	}
	parts = append(parts, tocPath, content)
	if err := o.proc.Merge(parts, final); err != nil {
		return fail(StageFinalAssembly, &job.Error{Kind: job.KindProcessing, Stage: StageFinalAssembly, Msg: "final merge failed", Err: err}, warnings)
	}
	// The merge accumulates one font subset per fragment; a failed
	// optimization pass is not worth failing the job over.
	if err := o.proc.Optimize(final); err != nil {
		o.logger.Warn("optimization failed, keeping unoptimized document", "error", err)
	}
	progress.Percent(75)

	progress.StageEntered(StagePagination)
	contentStart := plan.CoverPages + tocPages + 1
	if err := o.proc.AddPageNumbers(final, contentStart); err != nil {
		return fail(StagePagination, &job.Error{Kind: job.KindProcessing, Stage: StagePagination, Msg: "page numbering failed", Err: err}, warnings)
	}
	progress.Percent(85)

	progress.StageEntered(StageBookmarking)
	if err := o.proc.SetBookmarks(final, entries); err != nil {
		return fail(StageBookmarking, err, warnings)
	}
	progress.Percent(90)

	if req.Compress {
		progress.StageEntered(StageCompressing)
		if err := ctx.Err(); err != nil {
			return fail(StageCompressing, job.ErrCancelled, warnings)
		}
		if !o.proc.Compress(ctx, final) {
			warnings = append(warnings, job.Warning{Kind: job.WarnCompression, Msg: "compression unavailable or failed, output is uncompressed"})
		}
	}

	if err := o.promote(final, req.OutputPath); err != nil {
		return fail(StageFinalAssembly, &job.Error{Kind: job.KindPath, Path: req.OutputPath, Msg: "cannot write output", Err: err}, warnings)
	}
	progress.Percent(100)

	o.logger.Info("job finished", "id", ws.ID(), "output", req.OutputPath, "warnings", len(warnings))
	return &job.Outcome{
		Status:     job.StatusSuccess,
		OutputPath: req.OutputPath,
		Warnings:   warnings,
	}, nil
}

func (o *Orchestrator) validate(req job.Request) error {
	if err := o.cfg.Validate(); err != nil {
		return &job.Error{Kind: job.KindConfig, Msg: "invalid configuration", Err: err}
	}
	info, err := os.Stat(req.Root)
	if err != nil {
		return &job.Error{Kind: job.KindPath, Path: req.Root, Msg: "input directory", Err: err}
	}
	if !info.IsDir() {
		return &job.Error{Kind: job.KindPath, Path: req.Root, Msg: "input is not a directory"}
	}
	if req.OutputPath == "" {
		return &job.Error{Kind: job.KindConfig, Msg: "output path is empty"}
	}
	return nil
}

// classify resolves the folder-structure variant, honoring an explicit
// request and degrading to the flat mapping when detection is unsure.
func (o *Orchestrator) classify(req job.Request) (types.FolderStructure, []job.Warning) {
	var warnings []job.Warning

	if req.PlanType != types.VariantUnknown && req.PlanType != "" {
		return structure.ForVariant(req.PlanType), nil
	}

	fs, err := o.detector.Detect(req.Root)
	if err != nil {
		warnings = append(warnings, job.Warning{Kind: job.WarnDetection, Path: req.Root, Msg: err.Error()})
		return structure.ForVariant(types.VariantUnknown), warnings
	}
	for _, issue := range fs.Issues {
		warnings = append(warnings, job.Warning{Kind: job.WarnDetection, Path: req.Root, Msg: issue})
	}
	o.logger.Info("structure classified", "variant", fs.Variant, "confidence", fs.Confidence)
	return fs, warnings
}

// stableTOC renders the TOC, re-rendering with shifted page numbers when
// the rendered TOC occupies more pages than the entries assumed. The
// loop reaches a fixpoint as soon as a render's page count matches the
// assumption baked into its own entries.
func (o *Orchestrator) stableTOC(ctx context.Context, entries []types.TocEntry, tocPath string) ([]types.TocEntry, int, error) {
	assumed := 1
	current := types.OffsetTocPages(entries, 0)

	for i := 0; i < maxTOCIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, job.ErrCancelled
		}
		if err := o.proc.CreateTOC(current, tocPath); err != nil {
			return nil, 0, &job.Error{Kind: job.KindProcessing, Stage: StageTOC, Msg: "TOC generation failed", Err: err}
		}
		actual, err := o.proc.PageCount(tocPath)
		if err != nil {
			return nil, 0, &job.Error{Kind: job.KindProcessing, Stage: StageTOC, Msg: "cannot measure TOC", Err: err}
		}
		if actual == assumed {
			return current, actual, nil
		}
		o.logger.Debug("TOC spilled, shifting pages", "assumed", assumed, "actual", actual)
		current = types.OffsetTocPages(current, actual-assumed)
		assumed = actual
	}
	// Page numbers are off by at most a page here; the document itself
	// is still sound, so keep the last render.
	o.logger.Warn("TOC page count did not stabilize", "iterations", maxTOCIterations)
	pages, err := o.proc.PageCount(tocPath)
	if err != nil {
		return nil, 0, &job.Error{Kind: job.KindProcessing, Stage: StageTOC, Msg: "cannot measure TOC", Err: err}
	}
	return current, pages, nil
}

// promote copies the finished document next to the destination and
// renames it into place. A failure anywhere earlier leaves the
// destination exactly as it was.
func (o *Orchestrator) promote(final, dest string) error {
	return atomicfile.WriteFile(dest, func(tmp string) error {
		in, err := os.Open(final)
		if err != nil {
			return err
		}
		defer in.Close()

		out, err := os.Create(tmp)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}

// fail maps an error to its terminal outcome, separating cooperative
// cancellation from real failure.
func fail(stage string, err error, warnings []job.Warning) (*job.Outcome, error) {
	if errors.Is(err, job.ErrCancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &job.Outcome{
			Status:   job.StatusCancelled,
			Warnings: warnings,
			Stage:    stage,
			Err:      job.ErrCancelled,
		}, job.ErrCancelled
	}
	if stage != "" {
		err = fmt.Errorf("stage %s: %w", stage, err)
	}
	return &job.Outcome{
		Status:   job.StatusFailed,
		Warnings: warnings,
		Stage:    stage,
		Err:      err,
	}, err
}
