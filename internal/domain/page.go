package domain

// Page is a standalone content page (about, membership, contact info).
// swagger:model Page
type Page struct {
	Resource
	Content  string `json:"content"`
	NavOrder int    `json:"nav_order"`
}

// NewPage returns a new Page. ID and slug are assigned on create.
func NewPage(title, content string, status Status) *Page {
	return &Page{
		Resource: Resource{Title: title, Status: status},
		Content:  content,
	}
}

func (p *Page) Base() *Resource { return &p.Resource }

func (p *Page) Spec() KindSpec { return PageSpec }

func (p *Page) Validate() error {
	if err := p.Resource.validate(); err != nil {
		return err
	}
	if p.NavOrder < 0 {
		return NewValidationError("nav_order", "nav_order must not be negative")
	}
	return nil
}
