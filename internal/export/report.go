package export

// PageReport describes the export of one output page.
type PageReport struct {
	Page       int         `json:"page"`
	PageID     string      `json:"page_id"`
	SourcePage int         `json:"source_page"`
	Modified   bool        `json:"modified"`
	Rasterized int         `json:"rasterized"`
	Placements []Placement `json:"placements,omitempty"`
	Error      string      `json:"error,omitempty"`

	// Partial is set on a failed page that kept some of its annotations.
	Partial bool `json:"partial,omitempty"`
}

// Report describes an export. Failed pages were emitted as copied from the
// source unless marked partial.
type Report struct {
	Pages    []PageReport `json:"pages"`
	Failures int          `json:"failures"`
}

// Modified returns the number of pages that carried annotations.
func (r *Report) Modified() int {
	n := 0
	for _, p := range r.Pages {
		if p.Modified {
			n++
		}
	}
	return n
}

// Partial returns the number of failed pages that kept some annotations.
func (r *Report) Partial() int {
	n := 0
	for _, p := range r.Pages {
		if p.Partial {
			n++
		}
	}
	return n
}
