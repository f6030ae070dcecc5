package models

import (
	"strings"
	"time"
)

// ArticleSeparator joins the title and description of an article before scoring.
const ArticleSeparator = ". "

// Article is a news record as delivered by an article source.
// Absent fields are left as empty strings.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source,omitempty"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// Text returns the title and description joined with ArticleSeparator.
func (a Article) Text() string {
	return a.Title + ArticleSeparator + a.Description
}

// IsEmpty reports whether the article carries no text worth analysing,
// i.e. the combined text is nothing but the separator and whitespace.
func (a Article) IsEmpty() bool {
	return strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.Description) == ""
}
