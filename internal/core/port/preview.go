package port

import "context"

type LinkPreview struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
}

type LinkPreviewer interface {
	Preview(ctx context.Context, url string) (LinkPreview, error)
}
