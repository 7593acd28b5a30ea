package passphrase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSourceReadsEnvironment(t *testing.T) {
	t.Setenv("SHELL_TEST_PASS", "hunter2")
	src := NewSource("SHELL_TEST_PASS", "overlord keystore")
	got, err := src.Get()
	require.NoError(t, err)
	require.Equal(t, "hunter2", got)

	t.Setenv("SHELL_TEST_PASS", "changed")
	again, err := src.Get()
	require.NoError(t, err)
	require.Equal(t, "hunter2", again)
}

func TestSourceRejectsBlankEnvironment(t *testing.T) {
	t.Setenv("SHELL_TEST_PASS", "   ")
	_, err := NewSource("SHELL_TEST_PASS", "").Get()
	require.ErrorContains(t, err, "SHELL_TEST_PASS is set but empty")
}
