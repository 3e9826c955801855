// Package extract turns freeform text or a recorded audio payload into a
// validated draft record via the structured-extraction inference service.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pitchlog/log"
	"pitchlog/notify"
	"pitchlog/store"
)

// DefaultTimeout bounds one inference call. The service itself has no
// deadline of its own, so an unbounded call would stall the pipeline
// indefinitely.
const DefaultTimeout = 60 * time.Second

// Request is one inference call: text mode when Audio is nil, audio mode
// otherwise. The service encodes audio to base64 on the wire.
type Request struct {
	Prompt    string
	Audio     []byte
	AudioMIME string
}

// Service is the inference port: it accepts a prompt (and optionally an
// audio payload) plus the fixed target schema and returns the raw JSON
// object it produced. Values are best-effort and unvalidated; the
// pipeline owns validation and defaulting.
type Service interface {
	Name() string
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// extracted mirrors the target schema. Every field is optional on the
// wire; zero values here mean "not provided" and get defaulted.
type extracted struct {
	Opponent   string  `json:"opponent"`
	FinalScore string  `json:"finalScore"`
	Stadium    string  `json:"stadium"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	MyGoals    float64 `json:"myGoals"`
	MyAssists  float64 `json:"myAssists"`
	MatchType  string  `json:"matchType"`
	Rating     float64 `json:"rating"`
	Teammates  string  `json:"teammates"`
	AssistFrom string  `json:"assistFrom"`
	Scorer     string  `json:"scorer"`
	Comments   string  `json:"comments"`
}

// Pipeline sends capture input to the inference service and normalizes
// the response. It never mutates the store and never publishes a partial
// draft: a failed call reports an error notification and returns nothing.
type Pipeline struct {
	svc     Service
	queue   *notify.Queue
	timeout time.Duration
	now     func() time.Time
}

func NewPipeline(svc Service, queue *notify.Queue, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Pipeline{svc: svc, queue: queue, timeout: timeout, now: time.Now}
}

// ExtractText sends a freeform match report. The current date rides
// along so the service can resolve relative dates ("today", "yesterday").
func (p *Pipeline) ExtractText(ctx context.Context, text string) (store.Draft, error) {
	prompt := fmt.Sprintf(
		"Analyze this match report and extract structured data: %q. Current date is %s.",
		text, p.now().Format("2006-01-02"))

	draft, err := p.run(ctx, Request{Prompt: prompt})
	if err != nil {
		log.Errorf("extract: text: %v", err)
		p.queue.Push("failed to analyze text", notify.Error)
		return store.Draft{}, err
	}
	return draft, nil
}

// ExtractAudio sends a recorded payload.
func (p *Pipeline) ExtractAudio(ctx context.Context, payload []byte) (store.Draft, error) {
	req := Request{
		Prompt: "Extract football match performance data. " +
			"If date or time is not mentioned, use current. " +
			"Output structure should strictly follow the schema.",
		Audio:     payload,
		AudioMIME: "audio/flac",
	}

	draft, err := p.run(ctx, req)
	if err != nil {
		log.Errorf("extract: audio: %v", err)
		p.queue.Push("failed to decode audio", notify.Error)
		return store.Draft{}, err
	}
	return draft, nil
}

func (p *Pipeline) run(ctx context.Context, req Request) (store.Draft, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.svc.Generate(ctx, req)
	if err != nil {
		return store.Draft{}, err
	}

	var ex extracted
	if err := json.Unmarshal(raw, &ex); err != nil {
		return store.Draft{}, fmt.Errorf("malformed service response: %w", err)
	}
	return p.finalize(ex), nil
}

// finalize applies the total-default table so no consumer ever sees a
// missing field, whatever the service left out.
func (p *Pipeline) finalize(ex extracted) store.Draft {
	now := p.now()
	d := store.NewDraft(now)

	d.Date = ex.Date
	if d.Date == "" {
		d.Date = now.Format("2006-01-02")
	}
	d.Time = ex.Time
	if d.Time == "" {
		d.Time = now.Format("15:04")
	}
	d.Opponent = ex.Opponent
	d.Venue = ex.Stadium
	d.FinalScore = ex.FinalScore
	if d.FinalScore == "" {
		d.FinalScore = "0 - 0"
	}
	d.Teammates = ex.Teammates
	d.AssistFrom = ex.AssistFrom
	d.Scorer = ex.Scorer
	d.Notes = ex.Comments
	d.MinutesPlayed = 90
	d.Goals = clampCount(ex.MyGoals)
	d.Assists = clampCount(ex.MyAssists)
	d.Rating = clampRating(ex.Rating)
	if store.ValidCategory(ex.MatchType) {
		d.Category = store.Category(ex.MatchType)
	} else {
		d.Category = store.League
	}
	return d
}

func clampCount(v float64) int {
	if v < 0 {
		return 0
	}
	return int(v)
}

func clampRating(v float64) int {
	switch {
	case v == 0:
		return 5
	case v < 1:
		return 1
	case v > 10:
		return 10
	}
	return int(v)
}
