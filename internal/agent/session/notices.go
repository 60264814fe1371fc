package session

import (
	"fmt"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
)

// NoticeKind names a user-facing message.
type NoticeKind string

const (
	NoticeLanguageSwitched NoticeKind = "language_switched"
	// NoticeUsageWarning takes (count, limit).
	NoticeUsageWarning NoticeKind = "usage_warning"
	// NoticeUsageLimit takes (count, limit).
	NoticeUsageLimit NoticeKind = "usage_limit"
	// NoticeFetchFailed takes the failure reason.
	NoticeFetchFailed NoticeKind = "fetch_failed"
	// NoticeVideoIDMissing takes the URL.
	NoticeVideoIDMissing NoticeKind = "video_id_missing"
	// NoticeSearchUsed takes the scorer reason.
	NoticeSearchUsed NoticeKind = "search_used"
)

var notices = map[NoticeKind]map[model.Language]string{
	NoticeLanguageSwitched: {
		model.Korean:  "🌐 언어가 한국어로 변경되었습니다.",
		model.English: "🌐 Language switched to English.",
		model.Spanish: "🌐 El idioma se cambió a español.",
	},
	NoticeUsageWarning: {
		model.Korean:  "⚠️ 오늘 사용량이 %d/%d 입니다. 한도에 가까워지고 있습니다.",
		model.English: "⚠️ You have used %d/%d requests today. You are close to the limit.",
		model.Spanish: "⚠️ Has usado %d/%d solicitudes hoy. Estás cerca del límite.",
	},
	NoticeUsageLimit: {
		model.Korean:  "🚫 오늘의 사용 한도(%d/%d)에 도달했습니다. 내일 다시 시도해 주세요.",
		model.English: "🚫 Daily usage limit reached (%d/%d). Please try again tomorrow.",
		model.Spanish: "🚫 Se alcanzó el límite diario (%d/%d). Inténtalo de nuevo mañana.",
	},
	NoticeFetchFailed: {
		model.Korean:  "❌ 콘텐츠를 가져오지 못했습니다: %s",
		model.English: "❌ Could not fetch the content: %s",
		model.Spanish: "❌ No se pudo obtener el contenido: %s",
	},
	NoticeVideoIDMissing: {
		model.Korean:  "❌ 유튜브 영상 ID를 찾을 수 없습니다: %s",
		model.English: "❌ Could not find a YouTube video id in %s",
		model.Spanish: "❌ No se encontró el ID del video de YouTube en %s",
	},
	NoticeSearchUsed: {
		model.Korean:  "🔎 최신 정보를 검색했습니다 (%s)",
		model.English: "🔎 Searched the web for fresh results (%s)",
		model.Spanish: "🔎 Se buscaron resultados recientes (%s)",
	},
}

// Notice renders kind in lang, falling back to DefaultLanguage for
// unsupported languages. Unknown kinds render as "".
func Notice(lang model.Language, kind NoticeKind, args ...any) string {
	byLang, ok := notices[kind]
	if !ok {
		return ""
	}
	tmpl, ok := byLang[lang]
	if !ok {
		tmpl = byLang[DefaultLanguage]
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
