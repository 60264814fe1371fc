package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/conversations"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/fetchcache"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/repo"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/respcache"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/router"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/session"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/usage"
	errx "github.com/Chative-core-poc-v1/turnrouter/internal/core/error"
)

// ================ Fakes ================

type fakeChatModel struct {
	mu    sync.Mutex
	calls [][]*schema.Message
	err   error
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, input)
	if f.err != nil {
		return nil, f.err
	}
	msg := schema.AssistantMessage("generated reply", nil)
	msg.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120}}
	return msg, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *fakeChatModel) lastInput(t *testing.T) []*schema.Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

func (f *fakeChatModel) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeFetchers struct {
	mu          sync.Mutex
	webpages    []string
	pdfs        []string
	uploads     []*model.FileRef
	transcripts []string
	searches    []string
	webErr      error
}

func (f *fakeFetchers) FetchWebpage(_ context.Context, url string) (model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.webpages = append(f.webpages, url)
	if f.webErr != nil {
		return model.Resource{}, f.webErr
	}
	return model.Resource{Content: "page body of " + url}, nil
}

func (f *fakeFetchers) FetchPDF(_ context.Context, source string, upload *model.FileRef) (model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pdfs = append(f.pdfs, source)
	f.uploads = append(f.uploads, upload)
	return model.Resource{
		Content:  "pdf text of " + source,
		Sections: []model.Section{{Title: "Summary", Body: "..."}},
	}, nil
}

func (f *fakeFetchers) FetchTranscript(_ context.Context, videoID string) (model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcripts = append(f.transcripts, videoID)
	return model.Resource{Content: "transcript of " + videoID}, nil
}

func (f *fakeFetchers) Search(_ context.Context, query string, lang model.Language) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, string(lang)+":"+query)
	return "BTC 67,000 USD", nil
}

type fixture struct {
	svc      *Service
	chat     *fakeChatModel
	fetchers *fakeFetchers
	repo     *repo.MemorySessionRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		chat:     &fakeChatModel{},
		fetchers: &fakeFetchers{},
		repo:     repo.NewMemorySessionRepository(0),
	}
	svc, err := NewService(context.Background(), Config{
		Router:        router.NewDefault(model.LanguageConfig{}, model.IntentConfig{}, nil),
		ChatModel:     f.chat,
		ModelName:     "gemini-2.5-flash",
		Conversations: conversations.NewMessagesManager(f.repo, model.SessionConfig{}),
		Webpages:      f.fetchers,
		PDFs:          f.fetchers,
		Transcripts:   f.fetchers,
		Searcher:      f.fetchers,
		Cache:         respcache.NewMemoryStore(time.Minute, time.Minute),
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) transcript(t *testing.T, sessionID string) []*schema.Message {
	t.Helper()
	h, err := f.repo.LoadHistory(context.Background(), sessionID)
	require.NoError(t, err)
	return h.Messages
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

func newSession(lang model.Language, count int) *session.Context {
	gate := usage.NewGate(usage.NewMemoryStore(usage.Counter{Date: today(), Count: count}), model.UsageConfig{})
	return session.New("", lang, gate)
}

// ================ Tests ================

func TestHandleTurn_ExplicitSwitchPDF(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := newSession(model.Korean, 0)

	turn, err := f.svc.HandleTurn(ctx, sess, model.Utterance{Text: "in English please summarize https://example.com/report.pdf"})
	require.NoError(t, err)

	assert.False(t, turn.Blocked)
	assert.True(t, turn.Generated)
	assert.Equal(t, "generated reply", turn.Reply)
	assert.Equal(t, model.IntentPdfAnalysis, turn.Route.Intent.Kind)
	assert.True(t, turn.Route.ShouldSwitch)
	assert.Contains(t, turn.Notices, "🌐 Language switched to English.")
	assert.Equal(t, model.English, sess.SystemLanguage)
	assert.Equal(t, "1/100", turn.Usage.Text)
	assert.Equal(t, []string{"https://example.com/report.pdf"}, f.fetchers.pdfs)
	assert.Nil(t, f.fetchers.uploads[0])

	input := f.chat.lastInput(t)
	require.Len(t, input, 2)
	assert.Equal(t, schema.System, input[0].Role)
	assert.Contains(t, input[0].Content, "Always answer in English")
	assert.Contains(t, input[0].Content, "pdf text of https://example.com/report.pdf")
	assert.Equal(t, schema.User, input[1].Role)

	stored := f.transcript(t, sess.ID)
	require.Len(t, stored, 2)
	assert.Equal(t, schema.User, stored[0].Role)
	assert.Equal(t, "generated reply", stored[1].Content)
}

func TestHandleTurn_ReusesCachedPDF(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := newSession(model.English, 0)
	text := "what does https://example.com/report.pdf conclude?"

	_, err := f.svc.HandleTurn(ctx, sess, model.Utterance{Text: text})
	require.NoError(t, err)
	turn, err := f.svc.HandleTurn(ctx, sess, model.Utterance{Text: text})
	require.NoError(t, err)

	assert.Equal(t, model.PDFReuseCache, turn.Route.Intent.PDFFetch)
	assert.Len(t, f.fetchers.pdfs, 1)
	assert.Equal(t, 2, f.chat.callCount())
	assert.Equal(t, "2/100", turn.Usage.Text)
}

func TestHandleTurn_UploadedPDF(t *testing.T) {
	f := newFixture(t)
	sess := newSession(model.English, 0)
	upload := &model.FileRef{Name: "notes.pdf", Size: 42, Digest: "abc"}

	turn, err := f.svc.HandleTurn(context.Background(), sess, model.Utterance{Text: "summarize this", PDF: upload})
	require.NoError(t, err)
	assert.Equal(t, model.PDFFetchUpload, turn.Route.Intent.PDFFetch)
	require.Len(t, f.fetchers.uploads, 1)
	assert.Same(t, upload, f.fetchers.uploads[0])
	assert.Equal(t, upload.CacheKey(), sess.Fetch.Key(fetchcache.SlotPDF))
}

func TestHandleTurn_QuotaExceeded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := newSession(model.English, usage.DailyLimit)

	turn, err := f.svc.HandleTurn(ctx, sess, model.Utterance{Text: "hello there friend"})
	require.NoError(t, err)

	assert.True(t, turn.Blocked)
	assert.False(t, turn.Generated)
	assert.True(t, errors.Is(turn.Err, errx.ErrQuotaExceeded))
	assert.Equal(t, "🚫 Daily usage limit reached (100/100). Please try again tomorrow.", turn.Reply)
	assert.Zero(t, f.chat.callCount())
	assert.Equal(t, "red", turn.Usage.Color)

	n, err := sess.Usage.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
}

func TestHandleTurn_UsageWarning(t *testing.T) {
	f := newFixture(t)
	sess := newSession(model.English, 85)

	turn, err := f.svc.HandleTurn(context.Background(), sess, model.Utterance{Text: "hello there friend"})
	require.NoError(t, err)
	assert.False(t, turn.Blocked)
	assert.True(t, turn.Generated)
	assert.Contains(t, turn.Notices, "⚠️ You have used 85/100 requests today. You are close to the limit.")
	assert.Equal(t, "86/100", turn.Usage.Text)
	assert.Equal(t, "orange", turn.Usage.Color)
}

func TestHandleTurn_FetchFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fetchers.webErr = errors.New("connection refused")
	sess := newSession(model.English, 3)

	turn, err := f.svc.HandleTurn(ctx, sess, model.Utterance{Text: "summarize https://example.com/post"})
	require.NoError(t, err)
	assert.True(t, turn.Blocked)
	assert.Equal(t, "❌ Could not fetch the content: connection refused", turn.Reply)
	assert.Zero(t, f.chat.callCount())

	// the failed key is remembered, the same link does not refetch
	_, err = f.svc.HandleTurn(ctx, sess, model.Utterance{Text: "summarize https://example.com/post"})
	require.NoError(t, err)
	assert.Len(t, f.fetchers.webpages, 1)

	n, err := sess.Usage.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestHandleTurn_YoutubeWithoutVideoID(t *testing.T) {
	f := newFixture(t)
	sess := newSession(model.English, 0)

	turn, err := f.svc.HandleTurn(context.Background(), sess, model.Utterance{Text: "summarize https://www.youtube.com/feed/trending"})
	require.NoError(t, err)
	assert.True(t, turn.Blocked)
	assert.True(t, errors.Is(turn.Err, errx.ErrVideoIDNotFound))
	assert.Contains(t, turn.Reply, "Could not find a YouTube video id")
	assert.Empty(t, f.fetchers.transcripts)
}

func TestHandleTurn_YoutubeTranscriptSharedAcrossSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 2; i++ {
		turn, err := f.svc.HandleTurn(ctx, newSession(model.English, 0), model.Utterance{Text: "summarize https://youtu.be/dQw4w9WgXcQ"})
		require.NoError(t, err)
		assert.Equal(t, "dQw4w9WgXcQ", turn.Route.Intent.VideoID)
		require.NotNil(t, turn.Resource)
		assert.Equal(t, "transcript of dQw4w9WgXcQ", turn.Resource.Content)
	}
	assert.Equal(t, []string{"dQw4w9WgXcQ"}, f.fetchers.transcripts)
}

func TestHandleTurn_SearchAugmentation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	turn, err := f.svc.HandleTurn(ctx, newSession(model.Korean, 0), model.Utterance{Text: "오늘 비트코인 가격"})
	require.NoError(t, err)
	assert.Equal(t, model.IntentPlainChat, turn.Route.Intent.Kind)
	assert.Equal(t, "BTC 67,000 USD", turn.Search)
	assert.Contains(t, turn.SearchReason, "키워드 감지")
	assert.Contains(t, f.chat.lastInput(t)[0].Content, "BTC 67,000 USD")

	_, err = f.svc.HandleTurn(ctx, newSession(model.Korean, 0), model.Utterance{Text: "오늘 비트코인 가격"})
	require.NoError(t, err)
	assert.Len(t, f.fetchers.searches, 1)

	turn, err = f.svc.HandleTurn(ctx, newSession(model.Korean, 0), model.Utterance{Text: "안녕하세요"})
	require.NoError(t, err)
	assert.Empty(t, turn.Search)
	assert.Len(t, f.fetchers.searches, 1)
}

func TestHandleTurn_ImageAnalysis(t *testing.T) {
	f := newFixture(t)
	sess := newSession(model.English, 0)

	turn, err := f.svc.HandleTurn(context.Background(), sess, model.Utterance{
		Text: "what is this",
		Images: []model.ImageRef{
			model.ImageURL("https://img.example.com/cat.png"),
			model.ImageBytes{Data: []byte{1, 2, 3}, MIME: "image/png"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.IntentImageAnalysis, turn.Route.Intent.Kind)

	input := f.chat.lastInput(t)
	last := input[len(input)-1]
	require.Len(t, last.MultiContent, 3)
	assert.Equal(t, "https://img.example.com/cat.png", last.MultiContent[1].ImageURL.URL)
	assert.Equal(t, "data:image/png;base64,AQID", last.MultiContent[2].ImageURL.URL)
}

func TestHandleTurn_ModelErrorIsNotCounted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.chat.err = errors.New("upstream 503")
	sess := newSession(model.English, 10)

	_, err := f.svc.HandleTurn(ctx, sess, model.Utterance{Text: "hello there friend"})
	require.Error(t, err)

	n, err := sess.Usage.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Empty(t, f.transcript(t, sess.ID))
}

func TestHandleTurn_FailedTurnLeavesNoUserMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := newSession(model.English, 0)

	f.chat.err = errors.New("upstream 503")
	_, err := f.svc.HandleTurn(ctx, sess, model.Utterance{Text: "hello there friend"})
	require.Error(t, err)

	f.chat.err = nil
	_, err = f.svc.HandleTurn(ctx, sess, model.Utterance{Text: "second question please"})
	require.NoError(t, err)

	input := f.chat.lastInput(t)
	require.Len(t, input, 2)
	assert.Equal(t, schema.System, input[0].Role)
	assert.Equal(t, "second question please", input[1].Content)

	stored := f.transcript(t, sess.ID)
	require.Len(t, stored, 2)
	assert.Equal(t, "second question please", stored[0].Content)
	assert.Equal(t, schema.Assistant, stored[1].Role)
}

func TestHandleTurn_ClosedSession(t *testing.T) {
	f := newFixture(t)
	sess := newSession(model.English, 0)
	sess.Close()

	_, err := f.svc.HandleTurn(context.Background(), sess, model.Utterance{Text: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, router.ErrSessionClosed)
}

func TestNewChat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := newSession(model.English, 0)

	_, err := f.svc.HandleTurn(ctx, sess, model.Utterance{Text: "summarize https://example.com/post"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Fetch.Key(fetchcache.SlotWebpage))

	require.NoError(t, f.svc.NewChat(ctx, sess))
	assert.Empty(t, sess.Fetch.Key(fetchcache.SlotWebpage))
	assert.Empty(t, f.transcript(t, sess.ID))
}

func TestNewChat_ClosedSession(t *testing.T) {
	f := newFixture(t)
	sess := newSession(model.English, 0)
	sess.Close()
	assert.ErrorIs(t, f.svc.NewChat(context.Background(), sess), router.ErrSessionClosed)
}

func TestLoadChat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := newSession(model.English, 0)

	_, err := f.svc.HandleTurn(ctx, sess, model.Utterance{Text: "summarize https://example.com/post"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Fetch.Key(fetchcache.SlotWebpage))

	history, err := f.svc.LoadChat(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, history.SessionID)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "summarize https://example.com/post", history.Messages[0].Content)
	assert.Empty(t, sess.Fetch.Key(fetchcache.SlotWebpage))

	// the page is fetched again after a reload
	_, err = f.svc.HandleTurn(ctx, sess, model.Utterance{Text: "summarize https://example.com/post"})
	require.NoError(t, err)
	assert.Len(t, f.fetchers.webpages, 2)

	sess.Close()
	_, err = f.svc.LoadChat(ctx, sess)
	assert.ErrorIs(t, err, router.ErrSessionClosed)
}

func TestNewService_Validation(t *testing.T) {
	ctx := context.Background()
	_, err := NewService(ctx, Config{})
	assert.Error(t, err)

	_, err = NewService(ctx, Config{Router: router.NewDefault(model.LanguageConfig{}, model.IntentConfig{}, nil)})
	assert.Error(t, err)
}

func TestSearchKey(t *testing.T) {
	lang, q := splitSearchKey(searchKey(model.Spanish, "  Clima en Madrid "))
	assert.Equal(t, model.Spanish, lang)
	assert.Equal(t, "clima en madrid", q)
}
