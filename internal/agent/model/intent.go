package model

// IntentKind names the content pipeline a turn is routed to.
type IntentKind string

const (
	IntentPlainChat      IntentKind = "plain_chat"
	IntentWebpageSummary IntentKind = "webpage_summary"
	IntentYoutubeSummary IntentKind = "youtube_summary"
	IntentPdfAnalysis    IntentKind = "pdf_analysis"
	IntentImageAnalysis  IntentKind = "image_analysis"
)

func (k IntentKind) String() string {
	return string(k)
}

// IsValid reports whether k is a known intent kind.
func (k IntentKind) IsValid() bool {
	switch k {
	case IntentPlainChat, IntentWebpageSummary, IntentYoutubeSummary, IntentPdfAnalysis, IntentImageAnalysis:
		return true
	}
	return false
}

// PDFFetchPlan says whether a PDF turn must fetch or may reuse the cached slot.
type PDFFetchPlan string

const (
	PDFFetchNone   PDFFetchPlan = ""
	PDFFetchUpload PDFFetchPlan = "fetch_upload"
	PDFFetchURL    PDFFetchPlan = "fetch_url"
	PDFReuseCache  PDFFetchPlan = "reuse_cache"
)

// IntentDecision is the tagged routing result for one turn. Only the fields of
// the chosen Kind are populated:
//
//	WebpageSummary: URL
//	YoutubeSummary: URL, VideoID
//	PdfAnalysis:    Source, PDFFetch
type IntentDecision struct {
	Kind     IntentKind
	URL      string
	VideoID  string
	Source   string
	PDFFetch PDFFetchPlan
	// Rule is the name of the cascade rule that matched, for logging.
	Rule string
}

func PlainChat() IntentDecision {
	return IntentDecision{Kind: IntentPlainChat}
}

func WebpageSummary(url string) IntentDecision {
	return IntentDecision{Kind: IntentWebpageSummary, URL: url}
}

func YoutubeSummary(url, videoID string) IntentDecision {
	return IntentDecision{Kind: IntentYoutubeSummary, URL: url, VideoID: videoID}
}

func PdfAnalysis(source string, plan PDFFetchPlan) IntentDecision {
	return IntentDecision{Kind: IntentPdfAnalysis, Source: source, PDFFetch: plan}
}

func ImageAnalysis() IntentDecision {
	return IntentDecision{Kind: IntentImageAnalysis}
}
