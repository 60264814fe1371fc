package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/fetchcache"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/llm"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/prompts"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/session"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/usage"
	errx "github.com/Chative-core-poc-v1/turnrouter/internal/core/error"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

// Node keys.
const (
	NodeRoute     = "route"
	NodeResolve   = "resolve"
	NodeAssemble  = "assemble"
	NodeChatModel = "response_chat_model"
	NodeNotice    = "notice"
)

// ExtraBlocked marks a notice-only reply in Message.Extra.
const ExtraBlocked = "blocked"

// ================ Route ================

// newRoutePreHandler stores the turn in the graph state.
func newRoutePreHandler() func(context.Context, *Turn, *turnState) (*Turn, error) {
	return func(ctx context.Context, t *Turn, st *turnState) (*Turn, error) {
		st.turn = t
		return t, nil
	}
}

// routeNode picks language and intent, applies an explicit language switch
// and consults the usage gate.
func (s *Service) routeNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t *Turn) (*Turn, error) {
		route, err := s.router.RouteTurn(t.Utterance, t.Session)
		if err != nil && !errors.Is(err, errx.ErrVideoIDNotFound) {
			return nil, err
		}
		t.Route = route

		if route.ShouldSwitch {
			t.notify(t.Session.SwitchSystemLanguage(route.ResponseLanguage))
		}
		t.Session.ResponseLanguage = route.ResponseLanguage
		lang := t.Language()

		if err != nil {
			t.block(err, session.Notice(lang, session.NoticeVideoIDMissing, route.Intent.URL))
			return t, nil
		}

		count, level, err := t.Session.Usage.Check(ctx)
		switch {
		case errors.Is(err, errx.ErrQuotaExceeded):
			logx.Info().Str("session_id", t.Session.ID).Int("count", count).Msg("Turn refused by usage gate")
			t.block(err, session.Notice(lang, session.NoticeUsageLimit, count, t.Session.Usage.Limit()))
			return t, nil
		case err != nil:
			return nil, fmt.Errorf("usage check: %w", err)
		case level == usage.LevelWarn:
			t.notify(session.Notice(lang, session.NoticeUsageWarning, count, t.Session.Usage.Limit()))
		}
		return t, nil
	})
}

// ================ Resolve ================

// resolveNode loads the content the intent needs through the session's fetch
// cache, or search results for plain chat.
func (s *Service) resolveNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t *Turn) (*Turn, error) {
		if t.Blocked {
			return t, nil
		}
		d := t.Route.Intent
		cache := t.Session.Fetch

		var res model.Resource
		switch d.Kind {
		case model.IntentWebpageSummary:
			res = cache.GetOrFetch(ctx, fetchcache.SlotWebpage, d.URL, s.fetchWebpage)
		case model.IntentPdfAnalysis:
			res = cache.GetOrFetch(ctx, fetchcache.SlotPDF, d.Source, s.pdfFetchFunc(t.Utterance.PDF))
		case model.IntentYoutubeSummary:
			r, err := s.fetchTranscript(ctx, d.VideoID)
			if err != nil {
				logx.Warn().Err(err).Str("video_id", d.VideoID).Msg("Transcript fetch failed")
				r = model.FailedResource(err.Error(), time.Now())
			}
			res = r
		case model.IntentPlainChat:
			s.augmentWithSearch(ctx, t)
			return t, nil
		default:
			return t, nil
		}

		if res.IsFailure() {
			t.block(nil, session.Notice(t.Language(), session.NoticeFetchFailed, res.FailureReason()))
			return t, nil
		}
		t.Resource = &res
		return t, nil
	})
}

func (s *Service) augmentWithSearch(ctx context.Context, t *Turn) {
	if s.search == nil {
		return
	}
	ok, reason := s.scorer.ShouldSearch(t.Utterance.Text)
	if !ok {
		return
	}
	res, err := s.search(ctx, searchKey(t.Language(), t.Utterance.Text))
	if err != nil || res.IsFailure() {
		logx.Warn().Err(err).Str("session_id", t.Session.ID).Str("reason", reason).Msg("Search augmentation failed, answering without it")
		return
	}
	t.Search = res.Content
	t.SearchReason = reason
	t.notify(session.Notice(t.Language(), session.NoticeSearchUsed, reason))
}

// resolveBranch skips generation for blocked turns.
func resolveBranch(ctx context.Context, t *Turn) (string, error) {
	if t.Blocked {
		return NodeNotice, nil
	}
	return NodeAssemble, nil
}

// ================ Assemble ================

// assembleNode renders the system prompt and builds the model input from the
// transcript and the pending user message.
func (s *Service) assembleNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t *Turn) ([]*schema.Message, error) {
		system, err := prompts.RenderSystem(ctx, prompts.SystemInput{
			Language: t.Language(),
			Intent:   t.Route.Intent,
			Resource: t.Resource,
			Search:   t.Search,
		})
		if err != nil {
			return nil, fmt.Errorf("render system prompt: %w", err)
		}

		pending := schema.UserMessage(userText(t.Utterance))
		msgs, err := s.conversations.BuildResponseContext(ctx, t.Session.ID, system, pending)
		if err != nil {
			return nil, fmt.Errorf("build response context: %w", err)
		}

		if t.Route.Intent.Kind == model.IntentImageAnalysis {
			msgs[len(msgs)-1] = imageMessage(msgs[len(msgs)-1].Content, t.Utterance.Images)
		}
		return msgs, nil
	})
}

// userText is what the transcript stores for the turn.
func userText(u model.Utterance) string {
	text := strings.TrimSpace(u.Text)
	if text == "" && u.HasImages() {
		text = fmt.Sprintf("[%d image(s)]", len(u.Images))
	}
	if u.PDF != nil {
		text = strings.TrimSpace(text + " [PDF: " + u.PDF.Name + "]")
	}
	return text
}

// imageMessage builds the multimodal user message for image analysis.
func imageMessage(text string, images []model.ImageRef) *schema.Message {
	parts := []schema.ChatMessagePart{{Type: schema.ChatMessagePartTypeText, Text: text}}
	for _, img := range images {
		var url string
		switch v := img.(type) {
		case model.ImageURL:
			url = string(v)
		case model.ImageBytes:
			url = "data:" + v.MIME + ";base64," + base64.StdEncoding.EncodeToString(v.Data)
		}
		parts = append(parts, schema.ChatMessagePart{
			Type:     schema.ChatMessagePartTypeImageURL,
			ImageURL: &schema.ChatMessageImageURL{URL: url},
		})
	}
	return &schema.Message{Role: schema.User, Content: text, MultiContent: parts}
}

// ================ Response ================

// newResponsePostHandler prices the call, counts it against the usage gate
// and persists the user message with the reply. A failed model call never
// reaches it, so nothing of that turn is stored.
func (s *Service) newResponsePostHandler() func(context.Context, *schema.Message, *turnState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, st *turnState) (*schema.Message, error) {
		t := st.turn
		if out == nil || t == nil {
			return out, nil
		}
		llm.AttachCost(out, s.modelName, t.Session.ID)

		if err := t.Session.Usage.Increment(ctx); err != nil {
			logx.Error().Err(err).Str("session_id", t.Session.ID).Msg("failed to increment usage counter")
			return nil, fmt.Errorf("usage increment: %w", err)
		}
		t.Generated = true

		if err := s.conversations.SaveExchange(ctx, t.Session.ID, userText(t.Utterance), out.Content); err != nil {
			return nil, fmt.Errorf("save exchange: %w", err)
		}
		return out, nil
	}
}

// ================ Notice ================

// noticeNode answers a blocked turn with its notices only.
func noticeNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t *Turn) (*schema.Message, error) {
		msg := schema.AssistantMessage(strings.Join(t.Notices, "\n"), nil)
		msg.Extra = map[string]any{ExtraBlocked: true}
		return msg, nil
	})
}
