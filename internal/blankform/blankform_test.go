package blankform_test

import (
	"bytes"
	"testing"

	"github.com/Lllllllleong/inspectionrequest/internal/blankform"
	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
	"github.com/Lllllllleong/inspectionrequest/internal/layout"
	"github.com/Lllllllleong/inspectionrequest/internal/pdfdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	l, err := layout.Default()
	require.NoError(t, err)

	out, err := blankform.Generate(l, checklist.Default(), pdfdoc.Options{DisableCompression: true})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	n, err := pdfdoc.PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "Blank form should have the form page and the sign-off page")

	sizes, err := pdfdoc.PageSizes(out)
	require.NoError(t, err)
	assert.True(t, sizes[0].Close(pdfdoc.Size{Width: l.Page.Width, Height: l.Page.Height}, 0.5))

	content := string(out)
	for _, want := range []string{"INSPECTION REQUEST", "CIVIL & STRUCTURAL", "Signage installation", "Unit Name:", "SIGN-OFF"} {
		assert.Contains(t, content, want)
	}

	again, err := blankform.Generate(l, checklist.Default(), pdfdoc.Options{DisableCompression: true})
	require.NoError(t, err)
	assert.Equal(t, out, again, "Blank form should be reproducible")
}

func TestGenerateRejectsUnknownHeading(t *testing.T) {
	t.Parallel()

	l, err := layout.Parse([]byte("page: {width: 595.28, height: 841.89}\nheadings:\n  plumbing/nope: {x: 10, y: 10}\n"))
	require.NoError(t, err)

	_, err = blankform.Generate(l, checklist.Default(), pdfdoc.Options{})
	require.Error(t, err)
}
