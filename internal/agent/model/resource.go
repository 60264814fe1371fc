package model

import (
	"strings"
	"time"
)

// FetchFailurePrefix starts the Content of a Resource whose fetch failed.
const FetchFailurePrefix = "❌ FETCH_FAILED: "

// Section is a derived part of fetched content, e.g. a PDF chapter.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Resource is fetched remote content together with what was derived from it.
type Resource struct {
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Sections  []Section      `json:"sections,omitempty"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// FailedResource builds the sentinel resource for a failed fetch.
func FailedResource(reason string, at time.Time) Resource {
	return Resource{Content: FetchFailurePrefix + reason, FetchedAt: at}
}

// IsFailure reports whether the resource carries a fetch failure sentinel.
func (r Resource) IsFailure() bool {
	return strings.HasPrefix(r.Content, FetchFailurePrefix)
}

// FailureReason returns the message after the sentinel, or "" for successful resources.
func (r Resource) FailureReason() string {
	if !r.IsFailure() {
		return ""
	}
	return strings.TrimPrefix(r.Content, FetchFailurePrefix)
}
