package stages

import (
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
)

// PageGroup is one contiguous run of same-type pages, the unit a logical
// document is built from.
type PageGroup struct {
	DocType     string
	PageIndices []int
}

// GroupPages reduces classified pages to contiguous same-type runs. Pages
// must arrive in page_index order; a new group starts whenever the type
// changes. Unclassified pages are bucketed as "unknown". An empty page set
// yields no groups.
func GroupPages(pages []entity.Page) []PageGroup {
	if len(pages) == 0 {
		return nil
	}

	groups := []PageGroup{{
		DocType:     pages[0].TypeOrUnknown(),
		PageIndices: []int{pages[0].PageIndex},
	}}

	for _, page := range pages[1:] {
		pageType := page.TypeOrUnknown()
		last := &groups[len(groups)-1]
		if pageType == last.DocType {
			last.PageIndices = append(last.PageIndices, page.PageIndex)
			continue
		}
		groups = append(groups, PageGroup{
			DocType:     pageType,
			PageIndices: []int{page.PageIndex},
		})
	}
	return groups
}
