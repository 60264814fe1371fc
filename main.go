package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/conversations"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/language"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/llm"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/pipeline"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/repo"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/respcache"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/router"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/search"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/session"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/usage"
	"github.com/Chative-core-poc-v1/turnrouter/internal/core"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
	pkgredis "github.com/Chative-core-poc-v1/turnrouter/pkg/redis"
)

// AppConfig defines all configurable parameters of the turn router demo,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Router configs
	Response model.ResponseModelConfig
	Session  model.SessionConfig
	Language model.LanguageConfig
	Intent   model.IntentConfig
	Search   model.SearchConfig
	Usage    model.UsageConfig
	Cache    model.CacheConfig
}

func main() {
	ctx := context.Background()
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}
	logx.Init(logx.LoggerOpts{Environment: envCfg.Environment})

	sessionTTL, err := time.ParseDuration(envCfg.Session.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("value", envCfg.Session.TTL).Msg("Invalid SESSION_TTL")
	}
	cacheTTL, err := time.ParseDuration(envCfg.Cache.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("value", envCfg.Cache.TTL).Msg("Invalid RESPONSE_CACHE_TTL")
	}

	// ====================================================
	// Stores: Redis when configured, in-process otherwise
	var rdb *redis.Client
	if envCfg.Redis.Enabled() {
		rdb, err = envCfg.Redis.New(ctx)
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
		}
		defer rdb.Close()
		logx.Info().Msg("Connected to Redis successfully")
	}

	var sessionRepo model.SessionRepository = repo.NewMemorySessionRepository(envCfg.Session.HistoryMaxTurns)
	if rdb != nil {
		sessionRepo = repo.NewRedisSessionRepository(rdb, envCfg.Redis.KeyPrefix, sessionTTL, envCfg.Session.HistoryMaxTurns)
	}

	var cache respcache.Store = respcache.NewMemoryStore(cacheTTL, 2*cacheTTL)
	if strings.EqualFold(envCfg.Cache.Backend, "redis") {
		if rdb == nil {
			logx.Fatal().Msg("RESPONSE_CACHE_BACKEND=redis requires REDIS_URL")
		}
		cache = respcache.NewRedisStore(rdb, envCfg.Redis.KeyPrefix)
	}

	// ====================================================
	// Turn pipeline
	chatModel, err := llm.NewResponseModel(ctx, llm.Config{
		APIKey:   envCfg.APIKey,
		BaseURL:  envCfg.BaseURL,
		Response: envCfg.Response,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create response model")
	}

	svc, err := pipeline.NewService(ctx, pipeline.Config{
		Router:        router.NewDefault(envCfg.Language, envCfg.Intent, language.NewWhatlangDetector()),
		Scorer:        search.NewScorer(envCfg.Search),
		ChatModel:     chatModel,
		ModelName:     envCfg.Response.Model,
		Conversations: conversations.NewMessagesManager(sessionRepo, envCfg.Session),
		Webpages:      demoFetchers{},
		PDFs:          demoFetchers{},
		Transcripts:   demoFetchers{},
		Searcher:      demoFetchers{},
		Cache:         cache,
		CacheTTL:      cacheTTL,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build turn pipeline")
	}

	// ====================================================
	// Session lifecycle: login -> turns -> logout
	sessionID := uuid.NewString()
	var usageStore usage.Store = usage.NewMemoryStore(usage.Counter{})
	if rdb != nil {
		usageStore = usage.NewRedisStore(rdb, envCfg.Redis.Key("usage", sessionID))
	}
	gate := usage.NewGate(usageStore, envCfg.Usage)

	defaultLang, ok := model.ParseLanguage(envCfg.Session.DefaultLanguage)
	if !ok {
		defaultLang = session.DefaultLanguage
	}
	sess := session.New(sessionID, defaultLang, gate)
	defer sess.Close()

	testTurns := []struct {
		description string
		utterance   model.Utterance
	}{
		{
			description: "Plain greeting in the session language",
			utterance:   model.Utterance{Text: "안녕하세요, 오늘 기분 어때요?"},
		},
		{
			description: "Explicit switch to English with a PDF link",
			utterance:   model.Utterance{Text: "in English please summarize https://example.com/report.pdf"},
		},
		{
			description: "Follow-up on the same PDF (served from the fetch cache)",
			utterance:   model.Utterance{Text: "What are the key numbers in https://example.com/report.pdf?"},
		},
		{
			description: "Spanish keywords for a single turn, with search augmentation",
			utterance:   model.Utterance{Text: "hola, ¿qué tiempo hace hoy en Madrid?"},
		},
		{
			description: "YouTube summary",
			utterance:   model.Utterance{Text: "summarize https://youtu.be/dQw4w9WgXcQ"},
		},
	}

	for i, test := range testTurns {
		fmt.Printf("\n🚀 Turn %d: %s\n", i+1, test.description)
		fmt.Printf("Query: %q\n", test.utterance.Text)

		turn, err := svc.HandleTurn(ctx, sess, test.utterance)
		if err != nil {
			logx.Error().Err(err).Int("turn", i+1).Msg("Turn failed")
			continue
		}
		for _, n := range turn.Notices {
			fmt.Println(n)
		}
		fmt.Printf("[%s | %s | %s %s]\n", turn.Route.Intent.Kind, turn.Language(), turn.Usage.Icon, turn.Usage.Text)
		fmt.Printf("✅ Response %d: %s\n", i+1, turn.Reply)
		fmt.Println(strings.Repeat("─", 45))
	}

	if history, err := svc.LoadChat(ctx, sess); err != nil {
		logx.Warn().Err(err).Msg("Failed to reload chat")
	} else {
		fmt.Printf("📜 Reloaded session %s with %d stored messages\n", sess.ID, len(history.Messages))
	}

	if err := svc.NewChat(ctx, sess); err != nil {
		logx.Warn().Err(err).Msg("Failed to reset chat")
	}
	fmt.Println("🎉 All demo turns completed")
}
