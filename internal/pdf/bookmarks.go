package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"binder/internal/atomicfile"
	"binder/internal/job"
	"binder/internal/types"
)

// outlineNode is a mutable bookmark node; pdfcpu keeps kids by value, so
// the tree is built with pointers first and converted once it is stable.
type outlineNode struct {
	title string
	page  int
	kids  []*outlineNode
}

func (n *outlineNode) toBookmark() pdfcpu.Bookmark {
	bm := pdfcpu.Bookmark{Title: n.title, PageFrom: n.page}
	for _, kid := range n.kids {
		bm.Kids = append(bm.Kids, kid.toBookmark())
	}
	return bm
}

// buildOutline turns a flat, level-annotated entry list into a bookmark
// forest. Entry levels must start at 1 and never jump by more than one;
// target pages are clamped into [1, pageCount].
func buildOutline(entries []types.TocEntry, pageCount int) ([]pdfcpu.Bookmark, error) {
	var roots []*outlineNode
	var stack []*outlineNode

	for i, e := range entries {
		if e.Level < 1 {
			return nil, fmt.Errorf("entry %d (%q): level %d below 1", i, e.Title, e.Level)
		}
		if e.Level > len(stack)+1 {
			return nil, fmt.Errorf("entry %d (%q): level jumps from %d to %d", i, e.Title, len(stack), e.Level)
		}

		page := e.Page
		if page < 1 {
			page = 1
		}
		if page > pageCount {
			page = pageCount
		}
		node := &outlineNode{title: e.Title, page: page}

		stack = stack[:e.Level-1]
		if e.Level == 1 {
			roots = append(roots, node)
		} else {
			parent := stack[e.Level-2]
			parent.kids = append(parent.kids, node)
		}
		stack = append(stack, node)
	}

	bms := make([]pdfcpu.Bookmark, 0, len(roots))
	for _, root := range roots {
		bms = append(bms, root.toBookmark())
	}
	return bms, nil
}

// SetBookmarks replaces the document outline with one built from the
// entries, in place and atomically. A malformed entry sequence is a
// structural error.
func (p *Processor) SetBookmarks(path string, entries []types.TocEntry) error {
	if len(entries) == 0 {
		return nil
	}

	total, err := p.PageCount(path)
	if err != nil {
		return err
	}
	bms, err := buildOutline(entries, total)
	if err != nil {
		return &job.Error{Kind: job.KindStructural, Stage: "bookmarking", Path: path, Msg: "invalid outline", Err: err}
	}

	err = atomicfile.WriteFile(path, func(tmp string) error {
		return api.AddBookmarksFile(path, tmp, bms, true, conf())
	})
	if err != nil {
		return fmt.Errorf("failed to set bookmarks: %w", err)
	}
	return nil
}
