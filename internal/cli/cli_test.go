package cli

import (
	"bytes"
	"slices"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrintake/internal/application"
	"hrintake/internal/notify"
	"hrintake/internal/wizard"
)

func TestPartNames(t *testing.T) {
	rec := application.NewRecord()
	rec.FullName = "JOHN DOE"
	rec.Photo = application.NewAttachment("me.png", "image/png", []byte{0x89, 'P', 'N', 'G'})

	payload, err := wizard.Encode(rec)
	require.NoError(t, err)

	names, err := partNames(payload)
	require.NoError(t, err)
	assert.Contains(t, names, "fullName")
	assert.Contains(t, names, "photo")
	assert.Contains(t, names, "resume")
	assert.Len(t, names, len(slices.Compact(slices.Sorted(slices.Values(names)))))

	_, err = partNames(&wizard.Payload{})
	assert.Error(t, err)
}

func TestToastSink(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	sink := toastSink(&buf)

	sink(notify.Entry{Kind: notify.KindSuccess, Message: "Submitted Successfully"})
	sink(notify.Entry{Kind: notify.KindError, Message: "Submission failed"})
	sink(notify.Entry{Kind: notify.KindInfo, Message: "PDF downloaded"})

	assert.Equal(t, "✔ Submitted Successfully\n✖ Submission failed\n• PDF downloaded\n", buf.String())
}
