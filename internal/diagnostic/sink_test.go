package diagnostic

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Ring(t *testing.T) {
	m := NewMemory(3)
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Write(Record{Level: LevelDebug, Message: fmt.Sprintf("m%d", i)}))
	}

	got := m.Records("")
	require.Len(t, got, 3)
	assert.Equal(t, "m2", got[0].Message)
	assert.Equal(t, "m4", got[2].Message)
	assert.False(t, got[0].Time.IsZero())
}

func TestMemory_FilterLevel(t *testing.T) {
	m := NewMemory(10)
	_ = m.Write(Record{Level: LevelDebug, Message: "signed"})
	_ = m.Write(Record{Level: LevelError, Message: "failed"})
	_ = m.Write(Record{Message: "default level"})

	errs := m.Records(LevelError)
	require.Len(t, errs, 1)
	assert.Equal(t, "failed", errs[0].Message)

	infos := m.Records(LevelInfo)
	require.Len(t, infos, 1)
	assert.Equal(t, "default level", infos[0].Message)
}

func TestParseLevel(t *testing.T) {
	l, ok := ParseLevel("warning")
	assert.True(t, ok)
	assert.Equal(t, LevelWarning, l)

	_, ok = ParseLevel("trace")
	assert.False(t, ok)
}
