package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/conversations"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/fetchcache"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/observers"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/respcache"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/router"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/search"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/session"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

// DefaultCacheTTL is how long shared transcript and search results live.
const DefaultCacheTTL = 30 * time.Minute

// Config holds everything needed to build the turn graph.
type Config struct {
	Router        *router.Router
	Scorer        *search.Scorer
	ChatModel     einomodel.BaseChatModel
	ModelName     string
	Conversations *conversations.MessagesManager

	Webpages    WebpageFetcher
	PDFs        PDFFetcher
	Transcripts TranscriptFetcher
	// Searcher is optional; without it plain chat is never augmented.
	Searcher Searcher

	// Cache is shared by all sessions for transcripts and search results.
	// Nil disables it.
	Cache    respcache.Store
	CacheTTL time.Duration
}

// Service runs user turns through the compiled turn graph.
type Service struct {
	router        *router.Router
	scorer        *search.Scorer
	conversations *conversations.MessagesManager
	chatModel     einomodel.BaseChatModel
	modelName     string

	fetchWebpage    fetchcache.FetchFunc
	fetchPDF        func(ctx context.Context, source string, upload *model.FileRef) (model.Resource, error)
	fetchTranscript respcache.FetchFunc
	search          respcache.FetchFunc

	runnable compose.Runnable[*Turn, *schema.Message]
}

// NewService validates cfg and compiles the turn graph.
func NewService(ctx context.Context, cfg Config) (*Service, error) {
	if cfg.Router == nil {
		return nil, fmt.Errorf("router is nil")
	}
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("chat model is nil")
	}
	if cfg.Conversations == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if cfg.Scorer == nil {
		cfg.Scorer = search.NewScorer(model.SearchConfig{})
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	s := &Service{
		router:        cfg.Router,
		scorer:        cfg.Scorer,
		conversations: cfg.Conversations,
		chatModel:     cfg.ChatModel,
		modelName:     cfg.ModelName,
	}
	s.wireFetchers(cfg)

	runnable, err := s.buildGraph(ctx)
	if err != nil {
		return nil, err
	}
	s.runnable = runnable
	logx.Debug().Msg("Turn graph built successfully")
	return s, nil
}

func (s *Service) wireFetchers(cfg Config) {
	s.fetchWebpage = func(ctx context.Context, url string) (model.Resource, error) {
		if cfg.Webpages == nil {
			return model.Resource{}, fmt.Errorf("no webpage fetcher configured")
		}
		return cfg.Webpages.FetchWebpage(ctx, url)
	}
	s.fetchPDF = func(ctx context.Context, source string, upload *model.FileRef) (model.Resource, error) {
		if cfg.PDFs == nil {
			return model.Resource{}, fmt.Errorf("no pdf fetcher configured")
		}
		return cfg.PDFs.FetchPDF(ctx, source, upload)
	}

	transcript := respcache.FetchFunc(func(ctx context.Context, videoID string) (model.Resource, error) {
		if cfg.Transcripts == nil {
			return model.Resource{}, fmt.Errorf("no transcript fetcher configured")
		}
		return cfg.Transcripts.FetchTranscript(ctx, videoID)
	})
	var searchFn respcache.FetchFunc
	if cfg.Searcher != nil {
		searchFn = func(ctx context.Context, key string) (model.Resource, error) {
			lang, query := splitSearchKey(key)
			out, err := cfg.Searcher.Search(ctx, query, lang)
			if err != nil {
				return model.Resource{}, err
			}
			return model.Resource{Content: out, FetchedAt: time.Now()}, nil
		}
	}
	if cfg.Cache != nil {
		transcript = respcache.Cached(cfg.Cache, "youtube", cfg.CacheTTL, transcript)
		if searchFn != nil {
			searchFn = respcache.Cached(cfg.Cache, "search", cfg.CacheTTL, searchFn)
		}
	}
	s.fetchTranscript = transcript
	s.search = searchFn
}

// pdfFetchFunc binds the uploaded file, if any, to the pdf fetcher.
func (s *Service) pdfFetchFunc(upload *model.FileRef) fetchcache.FetchFunc {
	return func(ctx context.Context, source string) (model.Resource, error) {
		if strings.HasPrefix(source, model.UploadKeyPrefix) {
			return s.fetchPDF(ctx, source, upload)
		}
		return s.fetchPDF(ctx, source, nil)
	}
}

// searchKey namespaces a query by language so cached results stay per language.
func searchKey(lang model.Language, query string) string {
	return string(lang) + "|" + strings.ToLower(strings.TrimSpace(query))
}

func splitSearchKey(key string) (model.Language, string) {
	lang, query, ok := strings.Cut(key, "|")
	if !ok {
		return "", key
	}
	return model.Language(lang), query
}

// buildGraph wires route -> resolve -> (assemble -> chat model | notice).
func (s *Service) buildGraph(ctx context.Context) (compose.Runnable[*Turn, *schema.Message], error) {
	g := compose.NewGraph[*Turn, *schema.Message](
		compose.WithGenLocalState(func(ctx context.Context) *turnState {
			return &turnState{}
		}),
	)
	return s.compile(ctx, g)
}

func (s *Service) compile(ctx context.Context, g *compose.Graph[*Turn, *schema.Message]) (compose.Runnable[*Turn, *schema.Message], error) {
	steps := []error{
		g.AddLambdaNode(NodeRoute, s.routeNode(), compose.WithStatePreHandler(newRoutePreHandler())),
		g.AddLambdaNode(NodeResolve, s.resolveNode()),
		g.AddLambdaNode(NodeAssemble, s.assembleNode()),
		g.AddChatModelNode(NodeChatModel, s.chatModel,
			compose.WithStatePostHandler(s.newResponsePostHandler()),
		),
		g.AddLambdaNode(NodeNotice, noticeNode()),
	}
	edges := [][2]string{
		{compose.START, NodeRoute},
		{NodeRoute, NodeResolve},
		{NodeAssemble, NodeChatModel},
		{NodeChatModel, compose.END},
		{NodeNotice, compose.END},
	}
	for _, e := range edges {
		steps = append(steps, g.AddEdge(e[0], e[1]))
	}
	steps = append(steps, g.AddBranch(NodeResolve, compose.NewGraphBranch(resolveBranch, map[string]bool{
		NodeAssemble: true,
		NodeNotice:   true,
	})))
	for _, err := range steps {
		if err != nil {
			logx.Error().Err(err).Msg("Error building turn graph")
			return nil, fmt.Errorf("error building turn graph: %w", err)
		}
	}

	runnable, err := g.Compile(ctx, compose.WithGraphName("turn"), compose.WithMaxRunSteps(10))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}
	return runnable, nil
}

// HandleTurn runs one user turn for sess. A returned error means the turn
// failed outside the decision layer (storage, model); refusals such as an
// exhausted quota come back as a blocked Turn with a notice.
func (s *Service) HandleTurn(ctx context.Context, sess *session.Context, u model.Utterance) (*Turn, error) {
	if sess == nil || sess.Closed() {
		return nil, router.ErrSessionClosed
	}
	t := &Turn{Session: sess, Utterance: u}
	out, err := s.runnable.Invoke(ctx, t, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		logx.Error().Err(err).Str("session_id", sess.ID).Msg("Turn failed")
		return t, err
	}
	if out != nil {
		t.Reply = out.Content
	}
	if count, err := sess.Usage.Count(ctx); err == nil {
		t.Usage = sess.Usage.Status(count)
	}

	logx.Info().
		Str("session_id", sess.ID).
		Str("intent", t.Route.Intent.Kind.String()).
		Str("language", t.Language().String()).
		Bool("blocked", t.Blocked).
		Bool("searched", t.Search != "").
		Str("usage", t.Usage.Text).
		Msg("Turn handled")
	return t, nil
}

// NewChat resets the session's topic: fetch cache and transcript.
func (s *Service) NewChat(ctx context.Context, sess *session.Context) error {
	if sess == nil || sess.Closed() {
		return router.ErrSessionClosed
	}
	sess.Reset()
	return s.conversations.Clear(ctx, sess.ID)
}

// LoadChat reloads an existing session: the fetch cache is cleared and the
// stored transcript of sess.ID is returned for display.
func (s *Service) LoadChat(ctx context.Context, sess *session.Context) (*model.ConversationHistory, error) {
	if sess == nil || sess.Closed() {
		return nil, router.ErrSessionClosed
	}
	sess.Reset()
	history, err := s.conversations.Load(ctx, sess.ID)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to load session")
		return nil, err
	}
	logx.Info().Str("session_id", sess.ID).Int("messages", len(history.Messages)).Msg("Session reloaded")
	return history, nil
}
