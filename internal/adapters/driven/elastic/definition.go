package elastic

import (
	"embed"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driven"
)

//go:embed definitions/*.json
var definitions embed.FS

// DefaultDefinition returns the embedded index settings and mapping.
func DefaultDefinition() driven.IndexDefinition {
	settings, err := definitions.ReadFile("definitions/settings.json")
	if err != nil {
		panic("elastic: missing embedded settings: " + err.Error())
	}
	mapping, err := definitions.ReadFile("definitions/mapping.json")
	if err != nil {
		panic("elastic: missing embedded mapping: " + err.Error())
	}
	return driven.IndexDefinition{Settings: settings, Mapping: mapping}
}
