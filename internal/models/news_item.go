package models

// News statuses accepted by the content API.
const (
	NewsStatusPublished = "PUBLISHED"
)

// NewsCopy is the generated Chinese rewrite of a headline.
type NewsCopy struct {
	TitleZh   string `json:"title_zh"`
	ContentZh string `json:"content_zh"`
}

// NewsPayload is the body of POST /news/inject.
type NewsPayload struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content"`
	SourceURL string `json:"sourceUrl" validate:"required,url"`
	Status    string `json:"status"`
}
