package language

import (
	"github.com/abadojack/whatlanggo"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
)

// WhatlangDetector is the StatisticalDetector backed by whatlanggo's trigram
// model. Languages outside ko/en/es are reported with zero confidence.
type WhatlangDetector struct{}

func NewWhatlangDetector() WhatlangDetector {
	return WhatlangDetector{}
}

func (WhatlangDetector) Detect(text string) (model.Language, float64) {
	info := whatlanggo.Detect(text)
	switch info.Lang {
	case whatlanggo.Kor:
		return model.Korean, info.Confidence
	case whatlanggo.Eng:
		return model.English, info.Confidence
	case whatlanggo.Spa:
		return model.Spanish, info.Confidence
	}
	return "", 0
}

var _ StatisticalDetector = WhatlangDetector{}
