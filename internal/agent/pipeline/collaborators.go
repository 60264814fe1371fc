package pipeline

import (
	"context"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
)

// WebpageFetcher downloads and extracts a web page.
type WebpageFetcher interface {
	FetchWebpage(ctx context.Context, url string) (model.Resource, error)
}

// PDFFetcher loads a PDF either from a URL or, when upload is non-nil, from
// the uploaded file identified by source.
type PDFFetcher interface {
	FetchPDF(ctx context.Context, source string, upload *model.FileRef) (model.Resource, error)
}

// TranscriptFetcher loads the transcript of a YouTube video.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoID string) (model.Resource, error)
}

// Searcher runs a web search and returns a plain-text digest of the results.
type Searcher interface {
	Search(ctx context.Context, query string, lang model.Language) (string, error)
}
