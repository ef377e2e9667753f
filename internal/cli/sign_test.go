package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetSignFlags(t *testing.T) {
	t.Helper()

	t.Cleanup(func() {
		signCmd.Flags().Set("file", "")
		signCmd.Flags().Set("kind", "1")
		signCmd.Flags().Set("content", "")
		signCmd.SetIn(nil)
	})
}

func TestReadTemplateFromFlags(t *testing.T) {
	resetSignFlags(t)

	require.NoError(t, signCmd.Flags().Set("kind", "7"))
	require.NoError(t, signCmd.Flags().Set("content", "+"))

	tmpl, err := readTemplate(signCmd)
	require.NoError(t, err)
	assert.Equal(t, 7, tmpl.Kind)
	assert.Equal(t, "+", tmpl.Content)
	assert.Zero(t, tmpl.CreatedAt)
}

func TestReadTemplateFromFile(t *testing.T) {
	resetSignFlags(t)

	f := filepath.Join(t.TempDir(), "tmpl.json")
	require.NoError(t, os.WriteFile(f, []byte(`{"kind":30023,"created_at":1700000000,"tags":[["d","post"]],"content":"body"}`), 0600))
	require.NoError(t, signCmd.Flags().Set("file", f))

	tmpl, err := readTemplate(signCmd)
	require.NoError(t, err)
	assert.Equal(t, 30023, tmpl.Kind)
	assert.EqualValues(t, 1700000000, tmpl.CreatedAt)
	require.Len(t, tmpl.Tags, 1)
	assert.Equal(t, "post", tmpl.Tags[0][1])
	assert.Equal(t, "body", tmpl.Content)
}

func TestReadTemplateFromStdin(t *testing.T) {
	resetSignFlags(t)

	signCmd.SetIn(strings.NewReader(`{"kind":1,"content":"hi"}`))
	require.NoError(t, signCmd.Flags().Set("file", "-"))

	tmpl, err := readTemplate(signCmd)
	require.NoError(t, err)
	assert.Equal(t, "hi", tmpl.Content)
}

func TestReadTemplateInvalid(t *testing.T) {
	resetSignFlags(t)

	signCmd.SetIn(strings.NewReader(`{"kind":`))
	require.NoError(t, signCmd.Flags().Set("file", "-"))

	_, err := readTemplate(signCmd)
	assert.Error(t, err)
}
