package recorder

import (
	"errors"
	"sync"
	"testing"
	"time"

	"pitchlog/audio"
	"pitchlog/encoder"
	"pitchlog/notify"
)

type sinkRecorder struct {
	mu     sync.Mutex
	frames int
	ticks  int
}

func (s *sinkRecorder) SpectrumFrame(bins []float64) {
	s.mu.Lock()
	s.frames++
	s.mu.Unlock()
}

func (s *sinkRecorder) RecordingTick(float64) {
	s.mu.Lock()
	s.ticks++
	s.mu.Unlock()
}

func (s *sinkRecorder) frameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func TestStopWhileIdleIsNoop(t *testing.T) {
	ctx := audio.NewFakeContext(nil)
	handoffs := make(chan []byte, 1)
	r := New(ctx, nil, notify.New(time.Minute), &sinkRecorder{}, func(p []byte, _ time.Duration) {
		handoffs <- p
	})

	r.Stop()
	if r.State() != Idle {
		t.Error("state changed on boundary Stop")
	}
	select {
	case <-handoffs:
		t.Error("payload handed off from an idle recorder")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStartWhileRecordingIsNoop(t *testing.T) {
	ctx := audio.NewFakeContext(sinePCM(16000, 440))
	r := New(ctx, nil, notify.New(time.Minute), &sinkRecorder{}, func([]byte, time.Duration) {})

	r.Start()
	first := ctx.LastCapture
	r.Start()
	if ctx.LastCapture != first {
		t.Error("second Start acquired a second device")
	}
	r.Stop()
}

func TestDeviceDenied(t *testing.T) {
	ctx := audio.NewFakeContext(nil)
	ctx.Denied = true
	queue := notify.New(time.Minute)
	r := New(ctx, nil, queue, &sinkRecorder{}, func([]byte, time.Duration) {})

	r.Start()
	if r.State() != Idle {
		t.Error("expected Idle after denial")
	}
	active := queue.Active()
	if len(active) != 1 || active[0].Severity != notify.Error {
		t.Fatalf("expected one error notification, got %v", active)
	}
	if active[0].Message != "microphone access denied" {
		t.Errorf("message = %q", active[0].Message)
	}
}

func TestEncoderInitFailure(t *testing.T) {
	ctx := audio.NewFakeContext(nil)
	queue := notify.New(time.Minute)
	r := New(ctx, nil, queue, &sinkRecorder{}, func([]byte, time.Duration) {})
	r.newEncoder = func() (encoder.Encoder, error) {
		return nil, errors.New("flac init failed")
	}

	r.Start()
	if r.State() != Idle {
		t.Error("expected Idle after encoder failure")
	}
	active := queue.Active()
	if len(active) != 1 || active[0].Message != "failed to start recording" {
		t.Fatalf("expected encoder failure notification, got %v", active)
	}
	if ctx.LastCapture != nil {
		t.Error("device acquired despite encoder failure")
	}
}

func TestRecordProducesFlacPayload(t *testing.T) {
	pcm := sinePCM(16000, 440) // one second
	ctx := audio.NewFakeContext(pcm)
	sink := &sinkRecorder{}
	type result struct {
		payload  []byte
		duration time.Duration
	}
	handoffs := make(chan result, 1)
	r := New(ctx, nil, notify.New(time.Minute), sink, func(p []byte, d time.Duration) {
		handoffs <- result{p, d}
	})

	r.Start()
	if r.State() != Recording {
		t.Fatal("expected Recording after Start")
	}
	ctx.LastCapture.WaitFeed()
	r.Stop()
	if r.State() != Idle {
		t.Fatal("expected Idle after Stop")
	}

	select {
	case got := <-handoffs:
		if len(got.payload) < 4 || string(got.payload[:4]) != "fLaC" {
			t.Error("payload does not start with FLAC magic")
		}
		if got.duration < 900*time.Millisecond || got.duration > 1100*time.Millisecond {
			t.Errorf("duration = %v, want ~1s", got.duration)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no payload handed off")
	}

	if sink.frameCount() == 0 {
		t.Error("expected spectrum frames while recording")
	}
}

func TestShortRecordingDiscarded(t *testing.T) {
	ctx := audio.NewFakeContext(sinePCM(100, 440)) // well under 0.1s
	handoffs := make(chan []byte, 1)
	r := New(ctx, nil, notify.New(time.Minute), &sinkRecorder{}, func(p []byte, _ time.Duration) {
		handoffs <- p
	})

	r.Start()
	ctx.LastCapture.WaitFeed()
	r.Stop()

	select {
	case <-handoffs:
		t.Error("sub-0.1s recording should be discarded")
	case <-time.After(100 * time.Millisecond):
	}
}
