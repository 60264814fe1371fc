package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
		ok   bool
	}{
		{"ko", Korean, true},
		{"ko-KR", Korean, true},
		{"en_US", English, true},
		{"es-MX", Spanish, true},
		{" en ", English, true},
		{"fr", "", false},
		{"", "", false},
		{"not a tag", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLanguage(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLanguage_IsSupported(t *testing.T) {
	for _, l := range SupportedLanguages {
		assert.True(t, l.IsSupported(), l)
	}
	assert.False(t, Language("fr").IsSupported())
	assert.False(t, Language("").IsSupported())
}

func TestResource_Failure(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := FailedResource("timeout", at)

	assert.True(t, r.IsFailure())
	assert.Equal(t, "timeout", r.FailureReason())
	assert.Equal(t, at, r.FetchedAt)

	ok := Resource{Content: "hello"}
	assert.False(t, ok.IsFailure())
	assert.Empty(t, ok.FailureReason())
}

func TestFileRef_CacheKey(t *testing.T) {
	a := FileRef{Name: "report.pdf", Size: 10, Digest: "abc"}
	b := FileRef{Name: "report.pdf", Size: 10, Digest: "def"}

	assert.Equal(t, "upload:report.pdf#10:abc", a.CacheKey())
	assert.NotEqual(t, a.CacheKey(), b.CacheKey())
}

func TestIntentKind_IsValid(t *testing.T) {
	for _, k := range []IntentKind{IntentPlainChat, IntentWebpageSummary, IntentYoutubeSummary, IntentPdfAnalysis, IntentImageAnalysis} {
		assert.True(t, k.IsValid(), k)
	}
	assert.False(t, IntentKind("nope").IsValid())
}

func TestImageRef_Variants(t *testing.T) {
	refs := []ImageRef{ImageURL("https://img/x.png"), ImageBytes{Data: []byte{1}, MIME: "image/png"}}
	var urls, blobs int
	for _, r := range refs {
		switch r.(type) {
		case ImageURL:
			urls++
		case ImageBytes:
			blobs++
		}
	}
	assert.Equal(t, 1, urls)
	assert.Equal(t, 1, blobs)

	u := Utterance{Images: refs}
	assert.True(t, u.HasImages())
	assert.False(t, u.HasPDF())
}
