package speech

import (
	"sync/atomic"

	"github.com/remiges-tech/numspeak/numwords"
	"golang.org/x/text/language"
)

// SystemSetting holds the configured default number system. It is safe for
// concurrent use and may be changed while the server runs.
type SystemSetting struct {
	v atomic.Int32
}

func NewSystemSetting(s numwords.System) *SystemSetting {
	setting := &SystemSetting{}
	setting.Set(s)
	return setting
}

func (s *SystemSetting) Get() numwords.System {
	return numwords.System(s.v.Load())
}

func (s *SystemSetting) Set(system numwords.System) {
	s.v.Store(int32(system))
}

var indianRegions = map[string]bool{
	"IN": true, "PK": true, "BD": true, "NP": true, "LK": true,
}

var indianLanguages = map[string]bool{
	"hi": true, "bn": true, "mr": true, "ta": true, "te": true, "gu": true,
	"kn": true, "ml": true, "pa": true, "ur": true, "ne": true,
}

// SystemFromAcceptLanguage reports the Indian system when the most preferred
// language of an Accept-Language header is spoken in, or explicitly tagged
// with, a region that groups digits the Indian way. ok is false when the
// header does not decide.
func SystemFromAcceptLanguage(header string) (numwords.System, bool) {
	if header == "" {
		return numwords.International, false
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return numwords.International, false
	}

	tag := tags[0]
	if tag == language.Und {
		return numwords.International, false
	}
	if region, conf := tag.Region(); conf == language.Exact && indianRegions[region.String()] {
		return numwords.Indian, true
	}
	if base, _ := tag.Base(); indianLanguages[base.String()] {
		return numwords.Indian, true
	}
	return numwords.International, false
}
