package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
)

//go:embed template/system_prompt.txt
var systemPrompt string

// MaxContentRunes bounds the fetched material inlined into the prompt.
const MaxContentRunes = 30000

var languageNames = map[model.Language]string{
	model.Korean:  "Korean (한국어)",
	model.English: "English",
	model.Spanish: "Spanish (español)",
}

var tasks = map[model.IntentKind]string{
	model.IntentPlainChat:      "Reply to the user's message naturally.",
	model.IntentWebpageSummary: "Summarize the web page in the material: key points first, then notable details.",
	model.IntentYoutubeSummary: "Summarize the YouTube video from its transcript in the material: main topic, key points, conclusion.",
	model.IntentPdfAnalysis:    "Answer the user's request about the PDF document in the material. Cite section titles when helpful.",
	model.IntentImageAnalysis:  "Analyze the attached image(s) and answer the user's request about them.",
}

// SystemInput is everything the system prompt depends on.
type SystemInput struct {
	Language model.Language
	Intent   model.IntentDecision
	Resource *model.Resource
	Search   string
}

// LanguageName returns the display name used in prompts.
func LanguageName(l model.Language) string {
	if n, ok := languageNames[l]; ok {
		return n
	}
	return languageNames[model.Korean]
}

// RenderSystem renders the system prompt via the Eino prompt component, which
// also triggers prompt callbacks.
func RenderSystem(ctx context.Context, in SystemInput) (*schema.Message, error) {
	task, ok := tasks[in.Intent.Kind]
	if !ok {
		task = tasks[model.IntentPlainChat]
	}
	vars := map[string]any{
		"LanguageName": LanguageName(in.Language),
		"Task":         task,
		"Source":       source(in.Intent),
		"Content":      "",
		"Sections":     []model.Section(nil),
		"Search":       in.Search,
	}
	if in.Resource != nil && !in.Resource.IsFailure() {
		vars["Content"] = clip(in.Resource.Content, MaxContentRunes)
		vars["Sections"] = in.Resource.Sections
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPrompt),
	)
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return nil, fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0], nil
}

func source(d model.IntentDecision) string {
	switch d.Kind {
	case model.IntentWebpageSummary, model.IntentYoutubeSummary:
		return d.URL
	case model.IntentPdfAnalysis:
		return d.Source
	default:
		return ""
	}
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
