package h1counter

import (
	"context"
	"errors"
	"io"
	"syscall"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hons82/h1counter/h1countermock"
	"github.com/hons82/h1counter/h1countertest"
	"github.com/hons82/h1counter/log"
	"github.com/hons82/h1counter/proto"
)

const helloWorld = "<h1>Hello</h1>\n<h1>World</h1>\n"

func newTestSession(t *testing.T, chunkSize int) *Session {
	t.Helper()

	s, err := NewSession(&SessionConfig{ChunkSize: chunkSize})
	require.NoError(t, err)
	return s
}

func TestNewSession_ChunkSize(t *testing.T) {
	t.Parallel()

	for _, size := range []int{-1, 0, MaxChunkSize + 1} {
		_, err := NewSession(&SessionConfig{ChunkSize: size})
		assert.Equal(t, ConfigError, KindOf(err), "size %d", size)
	}
	for _, size := range []int{1, MaxChunkSize} {
		_, err := NewSession(&SessionConfig{ChunkSize: size})
		assert.NoError(t, err, "size %d", size)
	}
}

func TestNewSession_EmptyMarker(t *testing.T) {
	t.Parallel()

	_, err := NewSession(&SessionConfig{ChunkSize: 10, Marker: []byte{}})
	assert.Equal(t, ConfigError, KindOf(err))
}

func TestSession_Run(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		chunkSize int
		markers   int
		chunks    int
	}{
		// "<h1>Hello<" "/h1>\n<h1>W" "orld</h1>\n"
		{name: "chunk 10", chunkSize: 10, markers: 2, chunks: 3},
		// whole payload in one short chunk
		{name: "chunk 31", chunkSize: 31, markers: 2, chunks: 1},
		// "<h1>Hello</h1>\n<h" "1>World</h1>\n"
		{name: "chunk 17", chunkSize: 17, markers: 1, chunks: 2},
		// second marker straddles "1>\n<" "h1>W"
		{name: "chunk 4", chunkSize: 4, markers: 1, chunks: 8},
		{name: "chunk 1", chunkSize: 1, markers: 0, chunks: 30},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// delivery split must not matter
			for _, split := range []int{1, 3, 7, len(helloWorld)} {
				stream := h1countertest.NewStream(h1countertest.Split([]byte(helloWorld), split)...)

				r, err := newTestSession(t, tt.chunkSize).Run(context.Background(), stream)
				require.NoError(t, err)
				assert.Equal(t, len(helloWorld), r.Bytes, "split %d", split)
				assert.Equal(t, tt.markers, r.Markers, "split %d", split)
				assert.Equal(t, tt.chunks, r.Chunks, "split %d", split)
				assert.Equal(t, string(proto.DefaultRequest()), string(stream.Written()))
				assert.Equal(t, 1, stream.Closes())
			}
		})
	}
}

func TestSession_Run_MarkerSplitAcrossChunks(t *testing.T) {
	t.Parallel()

	stream := h1countertest.NewStream(h1countertest.Fragments("<h1", ">x")...)

	r, err := newTestSession(t, 3).Run(context.Background(), stream)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Markers)
	assert.Equal(t, 5, r.Bytes)
}

func TestSession_Run_ByteAccounting(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 0, 2500)
	for len(payload) < 2500 {
		payload = append(payload, "<h1>x</h1>"...)
	}

	for _, size := range []int{1, 7, 64, 250, 999, 1000} {
		stream := h1countertest.NewStream(h1countertest.Split(payload, 13)...)
		r, err := newTestSession(t, size).Run(context.Background(), stream)
		require.NoError(t, err)
		assert.Equal(t, len(payload), r.Bytes, "chunk size %d", size)
	}
}

func TestSession_Run_ShortChunkTerminates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := h1countermock.NewMockStream(ctrl)
	gomock.InOrder(
		s.EXPECT().Write(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
			return len(p), nil
		}),
		s.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
			return copy(p, "<h1>abcdef"), nil
		}),
		s.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
			return copy(p, "<h1>"), nil
		}),
		s.EXPECT().Read(gomock.Any()).Return(0, io.EOF),
		// no Read after the short chunk
		s.EXPECT().Close().Return(nil),
	)

	r, err := newTestSession(t, 10).Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Markers)
	assert.Equal(t, 14, r.Bytes)
	assert.Equal(t, 2, r.Chunks)
}

func TestSession_Run_ExactMultipleReadsToEOF(t *testing.T) {
	t.Parallel()

	stream := h1countertest.NewStream(h1countertest.Fragments("<h1>", "<h1>")...)
	r, err := newTestSession(t, 4).Run(context.Background(), stream)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Markers)
	assert.Equal(t, 8, r.Bytes)
	assert.Equal(t, 2, r.Chunks)
	// two full chunks and the empty one
	assert.Equal(t, 3, stream.ReadCalls())
}

func TestSession_Run_EmptyResponse(t *testing.T) {
	t.Parallel()

	stream := h1countertest.NewStream()
	r, err := newTestSession(t, 4).Run(context.Background(), stream)
	require.NoError(t, err)
	assert.Equal(t, &Result{}, r)
	assert.Equal(t, 1, stream.Closes())
}

func TestSession_Run_SendFailure(t *testing.T) {
	t.Parallel()

	stream := h1countertest.NewStream(h1countertest.Fragments(helloWorld)...)
	stream.WriteErrs = []error{syscall.EPIPE}

	r, err := newTestSession(t, 10).Run(context.Background(), stream)
	assert.Nil(t, r)
	assert.Equal(t, RequestSendError, KindOf(err))
	assert.ErrorIs(t, err, syscall.EPIPE)
	assert.Equal(t, 0, stream.ReadCalls())
	assert.Equal(t, 1, stream.Closes())
}

func TestSession_Run_ReceiveFailure(t *testing.T) {
	t.Parallel()

	reset := errors.New("connection reset by peer")
	stream := h1countertest.NewStream(
		h1countertest.Read{Data: []byte("<h1>abcdef")},
		h1countertest.Read{Data: []byte("<h1>"), Err: reset},
	)

	r, err := newTestSession(t, 10).Run(context.Background(), stream)
	assert.Nil(t, r)
	assert.Equal(t, ReceiveError, KindOf(err))
	assert.ErrorIs(t, err, reset)
	assert.Equal(t, 1, stream.Closes())
}

func TestSession_Run_Cancel(t *testing.T) {
	t.Parallel()

	stream := h1countertest.NewStream(h1countertest.Fragments("<h1>")...)
	stream.Hold = true

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := newTestSession(t, 10).Run(ctx, stream)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Equal(t, ReceiveError, KindOf(err))
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run should return after cancel")
	}
	assert.Equal(t, 1, stream.Closes())
}

func TestSession_Run_Logs(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger := h1countermock.NewMockLogger(ctrl)
	logger.EXPECT().Log("session", gomock.Any(), "level", 1, "action", "done",
		"markers", 2, "bytes", len(helloWorld), "chunks", 1)
	logger.EXPECT().Log(gomock.Any()).AnyTimes()

	s, err := NewSession(&SessionConfig{ChunkSize: 100, Logger: logger})
	require.NoError(t, err)

	_, err = s.Run(context.Background(), h1countertest.NewStream(h1countertest.Fragments(helloWorld)...))
	require.NoError(t, err)
}

func TestSession_Run_TraceDisabled(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger := h1countermock.NewMockLogger(ctrl)
	logger.EXPECT().Log("session", gomock.Any(), "level", 1, "action", "done",
		"markers", 0, "bytes", len(helloWorld), "chunks", len(helloWorld))

	s, err := NewSession(&SessionConfig{ChunkSize: 1, Logger: log.NewFilterLogger(logger, log.LevelInfo)})
	require.NoError(t, err)
	assert.False(t, s.trace)

	_, err = s.Run(context.Background(), h1countertest.NewStream(h1countertest.Fragments(helloWorld)...))
	require.NoError(t, err)
}
