package domain

import "time"

// Post is a news article.
// swagger:model Post
type Post struct {
	Resource
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// NewPost returns a new Post. ID and slug are assigned on create.
func NewPost(title, content string, status Status) *Post {
	return &Post{
		Resource: Resource{Title: title, Status: status},
		Content:  content,
		Tags:     []string{},
	}
}

func (p *Post) Base() *Resource { return &p.Resource }

func (p *Post) Spec() KindSpec { return PostSpec }

// MarkPublished stamps PublishedAt the first time the post is published.
func (p *Post) MarkPublished(now time.Time) {
	if p.Status == StatusPublished && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
}

func (p *Post) Validate() error {
	return p.Resource.validate()
}
