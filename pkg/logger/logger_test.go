package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		" DEBUG ": LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}

	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), input)
	}
}

func TestLevelFiltering(t *testing.T) {
	var out bytes.Buffer
	log := NewWithLevel("warn", &out)

	log.Debugf("[Cache] %s", "hidden")
	log.Info("[Cache] hidden too")
	log.Warnf("[DB] %d rows", 3)
	log.Error("[App] failed")

	s := out.String()
	assert.NotContains(t, s, "hidden")
	assert.Contains(t, s, "[WARN] ")
	assert.Contains(t, s, "[DB] 3 rows")
	assert.Contains(t, s, "[ERROR] ")
	assert.Contains(t, s, "[App] failed")
}
