package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDestinationStdout(t *testing.T) {
	kind, u, err := ParseDestination("-")
	require.NoError(t, err)
	assert.Equal(t, KindFile, kind)
	assert.Nil(t, u)
}

func TestParseDestinationFilePath(t *testing.T) {
	kind, u, err := ParseDestination("/tmp/events.yaml")
	require.NoError(t, err)
	assert.Equal(t, KindFile, kind)
	assert.Nil(t, u)
}

func TestParseDestinationBackend(t *testing.T) {
	kind, u, err := ParseDestination("rbh:mongo:myfs")
	require.NoError(t, err)
	assert.Equal(t, KindBackend, kind)
	require.NotNil(t, u)
	assert.Equal(t, "mongo", u.Host)
	assert.Equal(t, "/myfs", u.Path)
}

func TestParseDestinationMalformedBackend(t *testing.T) {
	_, _, err := ParseDestination("rbh:mongo")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestParseDestinationEmpty(t *testing.T) {
	_, _, err := ParseDestination("")
	assert.ErrorIs(t, err, ErrUsage)
}
