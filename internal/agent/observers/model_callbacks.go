package observers

import (
	"context"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

// maxLoggedContent truncates message bodies in debug logs.
const maxLoggedContent = 200

// newModelHandler logs the user/assistant messages around model calls.
func newModelHandler() *callbackHelper.ModelCallbackHandler {
	log := logx.Component("model")
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			ev := log.Debug().Str("name", info.Name).Str("type", info.Type)
			if input != nil {
				ev = ev.Int("messages", len(input.Messages))
				if um := lastUserContent(input.Messages); um != "" {
					ev = ev.Str("user", truncate(um))
				}
			}
			ev.Msg("Model start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			ev := log.Debug().Str("name", info.Name).Str("type", info.Type)
			if output != nil && output.Message != nil {
				ev = ev.Str("assistant", truncate(strings.TrimSpace(output.Message.Content)))
			}
			if output != nil && output.TokenUsage != nil {
				ev = ev.Int("total_tokens", output.TokenUsage.TotalTokens)
			}
			ev.Msg("Model end")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			log.Error().Err(err).Str("name", info.Name).Str("type", info.Type).Msg("Model error")
			return ctx
		},
	}
}

func lastUserContent(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil {
			continue
		}
		if m.Role == schema.User {
			return strings.TrimSpace(m.Content)
		}
	}
	return ""
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxLoggedContent {
		return s
	}
	return string(r[:maxLoggedContent]) + "…"
}
