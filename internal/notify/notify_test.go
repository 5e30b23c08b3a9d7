package notify

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendFallsBackToDefaultKind(t *testing.T) {
	var r Recorder
	Send(&r, Kind("shout"), "hello")
	Success(&r, "done", WithDescription("3 users"))

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, KindDefault, all[0].Kind)
	assert.Equal(t, KindSuccess, all[1].Kind)
	assert.Equal(t, "3 users", all[1].Description)
	assert.False(t, all[1].At.IsZero())
}

func TestSendToNilSinkIsNoop(t *testing.T) {
	assert.NotPanics(t, func() { Error(nil, "boom") })
}

func TestRecorderDrain(t *testing.T) {
	var r Recorder
	Warning(&r, "careful")
	assert.Len(t, r.Drain(), 1)
	assert.Empty(t, r.Drain())
}

func TestWriterFormatsLine(t *testing.T) {
	var buf bytes.Buffer
	w := Writer{W: &buf}
	Error(w, "Could not load users", WithDescription("connection refused"))
	assert.Equal(t, "✗ Could not load users — connection refused\n", buf.String())

	buf.Reset()
	Writer{W: &buf, Color: true}.Notify(Notification{Kind: KindSuccess, Text: "ok"})
	assert.True(t, strings.HasPrefix(buf.String(), colorGreen))
}

func TestLoggedForwardsAndLogs(t *testing.T) {
	var rec Recorder
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	sink := Logged{Next: &rec, Logger: logger}
	Error(sink, "fetch failed")

	assert.Len(t, rec.All(), 1)
	assert.Contains(t, logBuf.String(), "level=ERROR")
	assert.Contains(t, logBuf.String(), `text="fetch failed"`)
}
