package observability

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitLoggerLevels(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"warn":    zerolog.WarnLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for raw, want := range cases {
		logger := InitLogger("test", raw, false)
		if got := logger.GetLevel(); got != want {
			t.Fatalf("InitLogger(%q) level = %v, want %v", raw, got, want)
		}
		if log.Logger.GetLevel() != want {
			t.Fatalf("expected global logger installed for %q", raw)
		}
	}
}
