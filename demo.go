package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
)

// demoFetchers stands in for the HTTP collaborators so the demo runs offline.
type demoFetchers struct{}

func (demoFetchers) FetchWebpage(_ context.Context, url string) (model.Resource, error) {
	return model.Resource{
		Content:   "Example Domain. This domain is for use in illustrative examples in documents.",
		Metadata:  map[string]any{"url": url},
		FetchedAt: time.Now(),
	}, nil
}

func (demoFetchers) FetchPDF(_ context.Context, source string, upload *model.FileRef) (model.Resource, error) {
	name := source
	if upload != nil {
		name = upload.Name
	}
	return model.Resource{
		Content: "Annual report. Revenue grew 12% to 4.2B. Operating margin 18%. Headcount 1,250.",
		Metadata: map[string]any{
			"source": name,
			"pages":  3,
		},
		Sections: []model.Section{
			{Title: "Overview", Body: "Revenue grew 12% to 4.2B."},
			{Title: "Margins", Body: "Operating margin 18%."},
			{Title: "People", Body: "Headcount 1,250."},
		},
		FetchedAt: time.Now(),
	}, nil
}

func (demoFetchers) FetchTranscript(_ context.Context, videoID string) (model.Resource, error) {
	return model.Resource{
		Content:   fmt.Sprintf("[transcript of %s] Never gonna give you up, never gonna let you down.", videoID),
		Metadata:  map[string]any{"video_id": videoID},
		FetchedAt: time.Now(),
	}, nil
}

func (demoFetchers) Search(_ context.Context, query string, lang model.Language) (string, error) {
	return fmt.Sprintf("1. (%s) Top result for %q: sunny, 24°C, light wind.", lang, query), nil
}
