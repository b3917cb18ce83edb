package dryrun

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

func TestActuator(t *testing.T) {
	var buf bytes.Buffer
	a := New(&buf)

	require.NoError(t, a.Send(domain.CodeB3))
	require.NoError(t, a.Send(domain.CodeNone))

	assert.Equal(t, "30", buf.String())
	assert.Equal(t, []domain.OutputCode{domain.CodeB3, domain.CodeNone}, a.Sent())
	assert.NoError(t, a.Close())
}

func TestActuator_NilWriter(t *testing.T) {
	a := New(nil)
	require.NoError(t, a.Send(domain.CodeOrganic))
	assert.Len(t, a.Sent(), 1)
}
