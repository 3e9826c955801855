package main

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pitchlog/log"
	"pitchlog/store"
)

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// tuiSink forwards recorder visualization frames into the Bubble Tea
// event loop. Safe to call from capture callbacks.
type tuiSink struct{}

func (tuiSink) SpectrumFrame(bins []float64) {
	tuiSend(spectrumMsg{Bins: bins})
}

func (tuiSink) RecordingTick(seconds float64) {
	tuiSend(recordingTickMsg{Seconds: seconds})
}

// handoffAudio receives a finalized recording payload and runs the
// extraction pipeline off the event loop. Only the resulting message
// touches the workflow, so draft state stays confined to Update.
func (a *app) handoffAudio(payload []byte, duration time.Duration) {
	tuiSend(extractingMsg{})
	log.Info("capture: audio payload handed to extraction")
	d, err := a.pipeline.ExtractAudio(context.Background(), payload)
	if err != nil {
		tuiSend(extractFailedMsg{})
		return
	}
	tuiSend(draftProposedMsg{Draft: d})
}

// extractText runs the text path of the pipeline in the background.
func (a *app) extractText(text string) {
	go func() {
		d, err := a.pipeline.ExtractText(context.Background(), text)
		if err != nil {
			tuiSend(extractFailedMsg{})
			return
		}
		tuiSend(draftProposedMsg{Draft: d})
	}()
}

type recordingTickMsg struct{ Seconds float64 }
type spectrumMsg struct{ Bins []float64 }
type extractingMsg struct{}
type extractFailedMsg struct{}
type draftProposedMsg struct{ Draft store.Draft }
type notifyChangedMsg struct{}
