package audio

import (
	"fmt"
	"sync"
)

const fakeChunkFrames = 1024

// FakeContext replays canned PCM through the capture interfaces, for
// tests. When Denied is set, NewCapture fails the way a refused device
// grant does.
type FakeContext struct {
	pcm    []byte
	Denied bool

	// LastCapture is the most recently created capture, so tests can
	// wait for its feed to finish.
	LastCapture *FakeCapture
}

func NewFakeContext(pcm []byte) *FakeContext {
	return &FakeContext{pcm: pcm}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake mic"}}, nil
}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	if f.Denied {
		return nil, fmt.Errorf("capture device access denied")
	}
	f.LastCapture = &FakeCapture{pcm: f.pcm}
	return f.LastCapture, nil
}

func (f *FakeContext) Close() {}

// FakeCapture delivers its PCM in fixed-size chunks from a feeder
// goroutine, mirroring how the platform backends call back from their
// own threads.
type FakeCapture struct {
	pcm []byte

	mu       sync.Mutex
	cb       DataCallback
	started  bool
	feedDone chan struct{}
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) Start() error {
	f.mu.Lock()
	f.started = true
	f.feedDone = make(chan struct{})
	done := f.feedDone
	f.mu.Unlock()

	go func() {
		defer close(done)
		chunkBytes := fakeChunkFrames * 2 // 16-bit mono
		for pos := 0; pos < len(f.pcm); pos += chunkBytes {
			f.mu.Lock()
			cb := f.cb
			f.mu.Unlock()
			if cb == nil {
				return
			}
			end := min(pos+chunkBytes, len(f.pcm))
			chunk := make([]byte, end-pos)
			copy(chunk, f.pcm[pos:end])
			cb(chunk, uint32(len(chunk)/2))
		}
	}()
	return nil
}

// WaitFeed blocks until all PCM has been delivered.
func (f *FakeCapture) WaitFeed() {
	f.mu.Lock()
	done := f.feedDone
	f.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (f *FakeCapture) Stop() {
	f.WaitFeed()
	f.mu.Lock()
	f.started = false
	f.mu.Unlock()
}

func (f *FakeCapture) Close() {}

func (f *FakeCapture) DeviceName() string { return "fake mic" }

// Started reports whether the device is between Start and Stop.
func (f *FakeCapture) Started() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}
