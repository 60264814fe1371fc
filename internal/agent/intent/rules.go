package intent

import (
	"strings"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/turnrouter/internal/core/error"
)

// Rule names, in cascade order.
const (
	RulePDF       = "pdf"
	RuleYoutube   = "youtube"
	RuleWebpage   = "webpage"
	RuleImage     = "image"
	RulePlainChat = "plain_chat"
)

// AnalyzeKeywords signal that the user wants the attached images analysed.
var AnalyzeKeywords = []string{
	"analyze", "analyse", "describe", "what is this", "what's this", "look at",
	"image", "picture", "photo",
	"분석", "설명", "이미지", "사진", "그림", "이게 뭐", "이건 뭐", "봐줘",
	"analiza", "imagen", "foto", "qué es esto",
}

// Rule is one step of the intent cascade. Apply reports ok=false when the
// rule does not match; err is only set together with ok=true.
type Rule struct {
	Name  string
	Apply func(t *Turn) (d model.IntentDecision, ok bool, err error)
}

// Turn is the classifier input with links extracted once for all rules.
type Turn struct {
	Input
	URLs []string
}

// NewTurn prepares in for rule evaluation. Links come from Utterance.URLs when
// present, otherwise from the text.
func NewTurn(in Input) *Turn {
	urls := in.Utterance.URLs
	if len(urls) == 0 {
		urls = ExtractURLs(in.Utterance.Text)
	}
	return &Turn{Input: in, URLs: urls}
}

// uploadKey is the cache identity of the uploaded PDF.
func (t *Turn) uploadKey() string {
	if t.Utterance.PDF != nil {
		return t.Utterance.PDF.CacheKey()
	}
	return model.UploadKeyPrefix + "current"
}

func (t *Turn) firstURL(match func(string) bool) string {
	for _, u := range t.URLs {
		if match(u) {
			return u
		}
	}
	return ""
}

// DefaultRules returns the cascade PDF > YouTube > Webpage > Image > PlainChat.
// Link rules precede the image rule: a bare link is an unambiguous directive
// while image intent is heuristic.
func DefaultRules(cfg model.IntentConfig) []Rule {
	return []Rule{
		{Name: RulePDF, Apply: pdfRule},
		{Name: RuleYoutube, Apply: youtubeRule},
		{Name: RuleWebpage, Apply: webpageRule},
		{Name: RuleImage, Apply: imageRule(cfg.ImagesRequireKeyword)},
		{Name: RulePlainChat, Apply: func(*Turn) (model.IntentDecision, bool, error) {
			return model.PlainChat(), true, nil
		}},
	}
}

func pdfRule(t *Turn) (model.IntentDecision, bool, error) {
	pdfURL := t.firstURL(func(u string) bool { return IsPDFURL(u) && !IsYoutubeURL(u) })
	if pdfURL != "" {
		pdfURL = NormalizeURL(pdfURL)
	}
	if !t.HasUploadedPDF && pdfURL == "" {
		return model.IntentDecision{}, false, nil
	}

	upload := t.uploadKey()
	switch {
	case t.HasUploadedPDF && (pdfURL == "" || t.CachedPDFKey != upload):
		return model.PdfAnalysis(upload, model.PDFFetchUpload), true, nil
	case pdfURL != "" && pdfURL != t.CachedPDFKey:
		return model.PdfAnalysis(pdfURL, model.PDFFetchURL), true, nil
	default:
		return model.PdfAnalysis(t.CachedPDFKey, model.PDFReuseCache), true, nil
	}
}

func youtubeRule(t *Turn) (model.IntentDecision, bool, error) {
	link := t.firstURL(IsYoutubeURL)
	if link == "" {
		return model.IntentDecision{}, false, nil
	}
	id, ok := ExtractVideoID(link)
	if !ok {
		return model.YoutubeSummary(link, ""), true, errx.VideoIDNotFound(link)
	}
	return model.YoutubeSummary(link, id), true, nil
}

func webpageRule(t *Turn) (model.IntentDecision, bool, error) {
	link := t.firstURL(func(u string) bool { return !IsYoutubeURL(u) && !IsPDFURL(u) })
	if link == "" {
		return model.IntentDecision{}, false, nil
	}
	return model.WebpageSummary(NormalizeURL(link)), true, nil
}

func imageRule(requireKeyword bool) func(*Turn) (model.IntentDecision, bool, error) {
	return func(t *Turn) (model.IntentDecision, bool, error) {
		if !t.HasUploadedImages {
			return model.IntentDecision{}, false, nil
		}
		if !requireKeyword || MatchesAnalyze(t.Utterance.Text) {
			return model.ImageAnalysis(), true, nil
		}
		return model.IntentDecision{}, false, nil
	}
}

// MatchesAnalyze reports whether text asks for an image to be analysed.
func MatchesAnalyze(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range AnalyzeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
