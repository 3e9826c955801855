// Package recorder drives the live audio capture state machine:
// Idle → Recording → Idle, producing a FLAC payload on stop.
package recorder

import (
	"encoding/binary"
	"sync"
	"time"

	"pitchlog/audio"
	"pitchlog/encoder"
	"pitchlog/log"
	"pitchlog/notify"
)

type State int

const (
	Idle State = iota
	Recording
)

const tickInterval = 250 * time.Millisecond

// minFrames is the shortest recording worth handing to the pipeline;
// anything under 0.1s is an accidental tap.
const minFrames = encoder.SampleRate / 10

// FrameSink receives visualization output while recording. Calls stop
// when the recording stops, on every exit path.
type FrameSink interface {
	SpectrumFrame(bins []float64)
	RecordingTick(seconds float64)
}

// Handoff receives the finalized payload after a successful stop.
type Handoff func(payload []byte, duration time.Duration)

// Recorder owns at most one active capture. Boundary calls (Start while
// Recording, Stop while Idle) are no-ops, so the single-recording
// invariant needs no external locking.
type Recorder struct {
	ctx        audio.Context
	device     *audio.DeviceInfo
	queue      *notify.Queue
	sink       FrameSink
	handoff    Handoff
	newEncoder func() (encoder.Encoder, error)

	mu        sync.Mutex
	state     State
	capture   audio.CaptureDevice
	enc       encoder.Encoder
	an        *analyzer
	sampleBuf []int16
	blockCh   chan []int16
	encDone   chan struct{}
	tickDone  chan struct{}
	startedAt time.Time
}

func New(ctx audio.Context, device *audio.DeviceInfo, queue *notify.Queue, sink FrameSink, handoff Handoff) *Recorder {
	return &Recorder{
		ctx:        ctx,
		device:     device,
		queue:      queue,
		sink:       sink,
		handoff:    handoff,
		newEncoder: func() (encoder.Encoder, error) { return encoder.NewFlac() },
	}
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// SetDevice switches the capture device used for the next recording.
// Has no effect on a recording in progress.
func (r *Recorder) SetDevice(device *audio.DeviceInfo) {
	r.mu.Lock()
	r.device = device
	r.mu.Unlock()
}

// Start acquires the capture device and begins buffering and
// visualizing. Device denial is reported and leaves the recorder Idle.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Recording {
		return
	}

	enc, err := r.newEncoder()
	if err != nil {
		log.Errorf("recorder: encoder init: %v", err)
		r.queue.Push("failed to start recording", notify.Error)
		return
	}

	capture, err := r.ctx.NewCapture(r.device, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		log.Errorf("recorder: device acquire: %v", err)
		r.queue.Push("microphone access denied", notify.Error)
		return
	}

	r.enc = enc
	r.an = newAnalyzer()
	r.sampleBuf = nil
	r.blockCh = make(chan []int16, 64)
	r.encDone = make(chan struct{})
	r.tickDone = make(chan struct{})

	// Encoding runs off the capture callback so a slow FLAC frame never
	// stalls the device.
	go func(enc encoder.Encoder, blocks <-chan []int16, done chan<- struct{}) {
		defer close(done)
		for block := range blocks {
			if err := enc.EncodeBlock(block); err != nil {
				log.Errorf("recorder: encode: %v", err)
			}
		}
	}(enc, r.blockCh, r.encDone)

	capture.SetCallback(r.onData)

	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		capture.Close()
		close(r.blockCh)
		<-r.encDone
		log.Errorf("recorder: capture start: %v", err)
		r.queue.Push("microphone access denied", notify.Error)
		return
	}

	r.capture = capture
	r.state = Recording
	r.startedAt = time.Now()
	log.Info("recording_start: " + capture.DeviceName())

	go func(started time.Time, done <-chan struct{}) {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				r.sink.RecordingTick(time.Since(started).Seconds())
			}
		}
	}(r.startedAt, r.tickDone)
}

// Stop finalizes the payload, releases the device and hands the result
// to the extraction path. A no-op while Idle; nothing is handed off for
// recordings too short to carry speech.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if r.state != Recording {
		r.mu.Unlock()
		return
	}
	// Flip state first: in-flight callbacks drop their data from here
	// on, and the device must be drained without holding the lock they
	// contend for.
	r.state = Idle
	capture := r.capture
	r.capture = nil
	close(r.tickDone)
	r.mu.Unlock()

	capture.Stop() // returns once no callback is in flight
	capture.ClearCallback()
	capture.Close()

	r.mu.Lock()
	tail := r.sampleBuf
	r.sampleBuf = nil
	blockCh := r.blockCh
	encDone := r.encDone
	enc := r.enc
	r.enc = nil
	r.mu.Unlock()

	if len(tail) > 0 {
		blockCh <- tail
	}
	close(blockCh)
	<-encDone

	log.Info("recording_stop")

	if err := enc.Close(); err != nil {
		log.Errorf("recorder: encoder close: %v", err)
		r.queue.Push("failed to decode audio", notify.Error)
		return
	}

	frames := enc.TotalFrames()
	if frames < minFrames {
		log.Info("recording_discarded: too short")
		return
	}

	duration := time.Duration(float64(frames) / float64(encoder.SampleRate) * float64(time.Second))
	go r.handoff(enc.Bytes(), duration)
}

// onData is the capture callback: block up samples for the encoder and
// emit spectrum frames.
func (r *Recorder) onData(data []byte, _ uint32) {
	r.mu.Lock()
	if r.state != Recording {
		r.mu.Unlock()
		return
	}
	for i := 0; i+1 < len(data); i += 2 {
		r.sampleBuf = append(r.sampleBuf, int16(binary.LittleEndian.Uint16(data[i:])))
	}
	var blocks [][]int16
	for len(r.sampleBuf) >= encoder.BlockSize {
		block := make([]int16, encoder.BlockSize)
		copy(block, r.sampleBuf[:encoder.BlockSize])
		r.sampleBuf = r.sampleBuf[encoder.BlockSize:]
		blocks = append(blocks, block)
	}
	blockCh := r.blockCh
	frames := r.an.Process(data)
	r.mu.Unlock()

	for _, block := range blocks {
		blockCh <- block
	}
	for _, bins := range frames {
		r.sink.SpectrumFrame(bins)
	}
}
