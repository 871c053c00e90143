package types

// MergePlan is the ordered set of PDF fragments making up one output
// document, plus the TOC model with provisional page numbers. It is owned by
// the orchestrator for the duration of a run and destroyed with the job
// workspace; fragment paths all live inside that workspace.
type MergePlan struct {
	Cover      string     // cover fragment, empty when the tree has no cover file
	CoverPages int        // physical page count of the cover fragment
	Fragments  []string   // content fragments (separators and documents) in document order
	Entries    []TocEntry // TOC rows in document order, pages assume one TOC page
}

// HasContent reports whether the plan contains any content fragments.
func (p *MergePlan) HasContent() bool {
	return len(p.Fragments) > 0
}
