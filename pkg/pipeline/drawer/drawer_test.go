package drawer_test

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/procdash/pkg/pipeline/drawer"
	"github.com/askiada/procdash/pkg/pipeline/measure"
	"github.com/askiada/procdash/pkg/pipeline/model"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

type failingCloser struct {
	io.Writer
}

func (failingCloser) Close() error { return assert.AnError }

func TestPipelineDrawerLabelsTimings(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	rec := measure.NewRecorder()
	opt := drawer.PipelineDrawer(drawer.NewDOTWriterDrawer(func() (io.WriteCloser, error) {
		return nopCloser{buf}, nil
	}), rec)

	read := &model.StepInfo{Kind: model.KindRoot, Name: "read records", Workers: 1}
	collect := &model.StepInfo{Kind: model.KindSink, Name: "collect", Workers: 1}

	for _, o := range []model.PipelineOption{rec, opt} {
		require.NoError(t, o.New())
		require.NoError(t, o.Register(model.Start, read))
		require.NoError(t, o.Register(read, collect))
		require.NoError(t, o.Observe(read, collect, model.Timing{Wait: 4 * time.Millisecond, Work: 2 * time.Millisecond}))
		require.NoError(t, o.Drained(collect, time.Second))
	}
	require.NoError(t, rec.Finish())
	require.NoError(t, opt.Finish())

	out := buf.String()
	assert.Contains(t, out, `rankdir="LR";`)
	assert.Contains(t, out, `"start" -> "read records"`)
	assert.Contains(t, out, `"collect" -> "end"`)
	assert.Contains(t, out, `1 x 2ms, end: 1s`)
	assert.Contains(t, out, `label="4ms"`)
	assert.Contains(t, out, `color="#f00000"`)
}

func TestDrawFailsWhenWriterFails(t *testing.T) {
	t.Parallel()

	d := drawer.NewDOTWriterDrawer(func() (io.WriteCloser, error) {
		return nil, assert.AnError
	})
	require.NoError(t, d.AddStep("start"))

	assert.ErrorIs(t, d.Draw(), assert.AnError)
}

func TestDrawFailsWhenCloseFails(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	d := drawer.NewDOTWriterDrawer(func() (io.WriteCloser, error) {
		return failingCloser{buf}, nil
	})
	require.NoError(t, d.AddStep("start"))

	err := d.Draw()
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "unable to close dot graph")
	assert.Contains(t, buf.String(), `"start"`)
}
