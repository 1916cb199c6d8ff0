package storybook

// Pages returns the canonical ordered page list. A non-empty pages array is
// used verbatim. Otherwise, legacy documents whose sections carry narrative
// fields have each section projected into a page. Documents with neither
// yield an empty list; a session cannot start from one.
func (d *Document) Pages() []Page {
	if len(d.RawPages) > 0 {
		return d.RawPages
	}

	if len(d.Sections) == 0 || !sectionsArePages(d.Sections) {
		return nil
	}

	pages := make([]Page, 0, len(d.Sections))
	for _, s := range d.Sections {
		title := s.Title
		if title == "" {
			title = s.Name
		}
		choices := s.Choices
		if choices == nil {
			choices = []Choice{}
		}
		pages = append(pages, Page{
			ID:       s.ID,
			Title:    title,
			Text:     s.Text,
			Image:    s.Image,
			Bookmark: s.Bookmark,
			Choices:  choices,
			Effects:  s.Effects,
			Ending:   s.Ending,
		})
	}
	return pages
}

// sectionsArePages reports whether the legacy sections double as pages, as
// opposed to being pure grouping containers.
func sectionsArePages(sections []Section) bool {
	for _, s := range sections {
		if s.Text != "" || len(s.Choices) > 0 {
			return true
		}
	}
	return false
}

// Bookmarks builds the bookmark registry over the normalized page list.
// Bookmarks are structural, not session data; the registry is rebuilt
// identically on every load, restart, and save restoration.
func (d *Document) Bookmarks() map[string]PageID {
	marks := make(map[string]PageID)
	for _, p := range d.Pages() {
		if p.Bookmark != "" {
			marks[p.Bookmark] = p.ID
		}
	}
	return marks
}
