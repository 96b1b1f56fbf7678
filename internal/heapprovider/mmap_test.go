package heapprovider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMmapExtendGrowsByBlockSize(t *testing.T) {
	m, err := NewMmap(8192, 2048)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, m.Start(), m.End())

	base, ok := m.Extend()
	require.True(t, ok)
	assert.Equal(t, m.Start(), base)
	assert.Equal(t, m.Start()+2048, m.End())
}

func TestMmapExtendFailsAtCapacity(t *testing.T) {
	m, err := NewMmap(4096, 2048)
	require.NoError(t, err)
	defer m.Close()

	_, ok := m.Extend()
	require.True(t, ok)
	_, ok = m.Extend()
	require.True(t, ok)

	_, ok = m.Extend()
	assert.False(t, ok)
}
