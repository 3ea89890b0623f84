package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlogLoggerLevel(t *testing.T) {
	require := require.New(t)

	log := NewSlog(InfoLevel, false)
	require.Equal(InfoLevel, log.Level())

	log.SetLevel(DebugLevel)
	require.Equal(DebugLevel, log.Level())

	// the level var is shared across the logger tree
	child := log.With("component", "session")
	require.Equal(DebugLevel, child.Level())

	child.SetLevel(ErrorLevel)
	require.Equal(ErrorLevel, log.Level())
}
