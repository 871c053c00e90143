// Package structure classifies an input directory tree into one of the
// known folder-hierarchy shapes. The classification drives how deep the
// collector recurses and how TOC headings are leveled; it never affects
// converter selection.
package structure

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"binder/internal/types"
)

// maxScanDepth caps the recursion of the pre-scan.
const maxScanDepth = 10

// Detector scores a directory tree against the known layout shapes.
type Detector struct {
	// Threshold is the minimum confidence for a definite classification.
	Threshold float64
	// CategoryKeywords are folder names counting toward the nested layout.
	CategoryKeywords []string
	// CoverKeywords exclude cover files from the scan.
	CoverKeywords []string
	Logger        *slog.Logger
}

// scan aggregates what the pre-scan saw.
type scan struct {
	mainDirs      []dirInfo
	rootFiles     int
	maxDepth      int
	totalFiles    int
	keywordHits   int
	rootFileRatio float64
}

type dirInfo struct {
	name       string
	subfolders int
	files      int
	totalFiles int
	maxDepth   int
}

// Detect inspects root and returns the best-matching variant with a
// confidence score. Below-threshold results come back as VariantUnknown
// with a flat heading-level mapping.
func (d *Detector) Detect(root string) (types.FolderStructure, error) {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	info, err := os.Stat(root)
	if err != nil {
		return types.FolderStructure{}, fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return types.FolderStructure{}, fmt.Errorf("input path is not a directory: %s", root)
	}

	sc, err := d.scanRoot(root)
	if err != nil {
		return types.FolderStructure{}, err
	}

	threeScore := d.scoreThreeLevel(sc)
	twoScore := d.scoreTwoLevel(sc)

	result := decide(sc, threeScore, twoScore, d.Threshold)
	log.Info("folder structure detected",
		"root", root,
		"variant", result.Variant,
		"confidence", fmt.Sprintf("%.2f", result.Confidence),
		"three_level_score", threeScore,
		"two_level_score", twoScore,
	)
	return result, nil
}

func (d *Detector) scanRoot(root string) (scan, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return scan{}, fmt.Errorf("failed to read input directory: %w", err)
	}

	var sc scan
	sc.maxDepth = 1
	for _, entry := range entries {
		name := entry.Name()
		if d.excluded(name) {
			continue
		}
		if entry.IsDir() {
			di := d.analyzeDir(filepath.Join(root, name), name, 2)
			sc.mainDirs = append(sc.mainDirs, di)
			if di.maxDepth > sc.maxDepth {
				sc.maxDepth = di.maxDepth
			}
			if d.matchesKeyword(name) {
				sc.keywordHits++
			}
			sc.totalFiles += di.totalFiles
		} else {
			sc.rootFiles++
			sc.totalFiles++
		}
	}
	if sc.totalFiles > 0 {
		sc.rootFileRatio = float64(sc.rootFiles) / float64(sc.totalFiles)
	}
	return sc, nil
}

func (d *Detector) analyzeDir(path, name string, depth int) dirInfo {
	di := dirInfo{name: name, maxDepth: depth}
	if depth > maxScanDepth {
		return di
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		// Unreadable branches just don't contribute evidence.
		return di
	}
	for _, entry := range entries {
		if d.excluded(entry.Name()) {
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 {
			continue
		}
		if entry.IsDir() {
			sub := d.analyzeDir(filepath.Join(path, entry.Name()), entry.Name(), depth+1)
			di.subfolders++
			di.totalFiles += sub.totalFiles
			if sub.maxDepth > di.maxDepth {
				di.maxDepth = sub.maxDepth
			}
		} else {
			di.files++
			di.totalFiles++
		}
	}
	return di
}

// excluded filters hidden files, office scratch files, and cover documents
// out of the structural evidence.
func (d *Detector) excluded(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~") {
		return true
	}
	lower := strings.ToLower(name)
	for _, kw := range d.CoverKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func (d *Detector) matchesKeyword(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range d.CategoryKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// scoreThreeLevel favors many category folders, nested subfolders, depth,
// and few loose files at the root.
func (d *Detector) scoreThreeLevel(sc scan) float64 {
	score := float64(len(sc.mainDirs)) * 2.0
	if n := len(sc.mainDirs); n > 0 {
		sub := 0
		for _, di := range sc.mainDirs {
			sub += di.subfolders
		}
		score += float64(sub) / float64(n) * 1.5
	}
	if sc.maxDepth >= 3 {
		score += 3.0
	}
	if sc.rootFileRatio < 0.3 {
		score += 2.0
	}
	score += float64(sc.keywordHits) * 1.5
	return score
}

// scoreTwoLevel favors loose files at the root, few folders, and shallow nesting.
func (d *Detector) scoreTwoLevel(sc scan) float64 {
	score := float64(sc.rootFiles) * 1.0
	if len(sc.mainDirs) <= 3 {
		score += 1.5
	}
	if sc.maxDepth <= 2 {
		score += 3.0
	}
	if sc.rootFileRatio > 0.5 {
		score += 2.0
	}
	return score
}

func decide(sc scan, threeScore, twoScore, threshold float64) types.FolderStructure {
	total := threeScore + twoScore
	diff := threeScore - twoScore
	if diff < 0 {
		diff = -diff
	}

	confidence := 0.0
	if total > 0 {
		confidence = diff / total
	}

	evidence := map[string]any{
		"three_level_score": threeScore,
		"two_level_score":   twoScore,
		"main_dir_count":    len(sc.mainDirs),
		"root_file_count":   sc.rootFiles,
		"max_depth":         sc.maxDepth,
		"root_file_ratio":   sc.rootFileRatio,
	}

	result := types.FolderStructure{
		Confidence: confidence,
		Evidence:   evidence,
	}

	if sc.totalFiles == 0 {
		result.Variant = types.VariantUnknown
		result.Confidence = 0
		result.Levels = types.FlatLevels()
		result.Issues = append(result.Issues, "directory contains no files")
		return result
	}

	switch {
	case confidence < threshold:
		result.Variant = types.VariantUnknown
		result.Levels = types.FlatLevels()
		result.Issues = append(result.Issues, "low detection confidence, assuming flat headings")
	case threeScore > twoScore:
		result.Variant = types.VariantThreeLevel
		result.Levels = types.ThreeLevelLevels()
	default:
		result.Variant = types.VariantTwoLevel
		result.Levels = types.TwoLevelLevels()
	}
	return result
}

// ForVariant returns the structure a caller-forced variant implies,
// bypassing detection.
func ForVariant(v types.Variant) types.FolderStructure {
	switch v {
	case types.VariantThreeLevel:
		return types.FolderStructure{Variant: v, Confidence: 1, Levels: types.ThreeLevelLevels()}
	case types.VariantTwoLevel:
		return types.FolderStructure{Variant: v, Confidence: 1, Levels: types.TwoLevelLevels()}
	default:
		return types.FolderStructure{Variant: types.VariantUnknown, Levels: types.FlatLevels()}
	}
}
