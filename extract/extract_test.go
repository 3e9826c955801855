package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pitchlog/notify"
	"pitchlog/store"
)

var testNow = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

func testPipeline(svc Service) (*Pipeline, *notify.Queue) {
	queue := notify.New(time.Minute)
	p := NewPipeline(svc, queue, time.Second)
	p.now = func() time.Time { return testNow }
	return p, queue
}

func TestExtractTextMapsResponse(t *testing.T) {
	svc := NewFake([]byte(`{
		"opponent": "Tigers",
		"finalScore": "4 - 2",
		"stadium": "Home Ground",
		"date": "2026-03-13",
		"time": "17:00",
		"myGoals": 3,
		"myAssists": 1,
		"matchType": "Cup",
		"rating": 9,
		"teammates": "Alex, Sam",
		"assistFrom": "Sam",
		"scorer": "Alex",
		"comments": "hat-trick"
	}`), nil)
	p, queue := testPipeline(svc)

	d, err := p.ExtractText(context.Background(), "scored a hat-trick against Tigers")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}

	if d.Opponent != "Tigers" || d.FinalScore != "4 - 2" || d.Venue != "Home Ground" {
		t.Errorf("basic fields wrong: %+v", d)
	}
	if d.Date != "2026-03-13" || d.Time != "17:00" {
		t.Errorf("date/time wrong: %s %s", d.Date, d.Time)
	}
	if d.Goals != 3 || d.Assists != 1 || d.Rating != 9 {
		t.Errorf("counts wrong: %+v", d)
	}
	if d.Category != store.Cup {
		t.Errorf("category = %s, want Cup", d.Category)
	}
	if d.MinutesPlayed != 90 {
		t.Errorf("minutes = %d, want 90", d.MinutesPlayed)
	}
	if d.ID == "" || d.CreatedAt == 0 {
		t.Error("draft missing provisional identity")
	}
	if len(queue.Active()) != 0 {
		t.Error("unexpected notifications on success")
	}
}

func TestExtractTextPromptCarriesCurrentDate(t *testing.T) {
	svc := NewFake([]byte(`{}`), nil)
	p, _ := testPipeline(svc)

	if _, err := p.ExtractText(context.Background(), "won today"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(svc.LastRequest.Prompt, "2026-03-14") {
		t.Errorf("prompt missing current date: %q", svc.LastRequest.Prompt)
	}
	if !strings.Contains(svc.LastRequest.Prompt, "won today") {
		t.Errorf("prompt missing report text: %q", svc.LastRequest.Prompt)
	}
}

func TestDefaultingOnEmptyResponse(t *testing.T) {
	p, _ := testPipeline(NewFake([]byte(`{}`), nil))

	d, err := p.ExtractText(context.Background(), "something")
	if err != nil {
		t.Fatal(err)
	}

	if d.Date != "2026-03-14" {
		t.Errorf("date = %q, want current date", d.Date)
	}
	if d.Time != "18:30" {
		t.Errorf("time = %q, want current time", d.Time)
	}
	if d.MinutesPlayed != 90 {
		t.Errorf("minutes = %d, want 90", d.MinutesPlayed)
	}
	if d.Rating != 5 {
		t.Errorf("rating = %d, want 5", d.Rating)
	}
	if d.Category != store.League {
		t.Errorf("category = %s, want League", d.Category)
	}
	if d.Goals != 0 || d.Assists != 0 {
		t.Errorf("counts = %d/%d, want 0/0", d.Goals, d.Assists)
	}
	if d.FinalScore != "0 - 0" {
		t.Errorf("finalScore = %q, want \"0 - 0\"", d.FinalScore)
	}
	if d.Opponent != "" || d.Venue != "" || d.Notes != "" {
		t.Errorf("text fields not empty: %+v", d)
	}
}

func TestNormalizationClamps(t *testing.T) {
	p, _ := testPipeline(NewFake([]byte(
		`{"matchType": "Exhibition", "rating": 14, "myGoals": -2}`), nil))

	d, err := p.ExtractText(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if d.Category != store.League {
		t.Errorf("invalid category not coerced to League: %s", d.Category)
	}
	if d.Rating != 10 {
		t.Errorf("rating = %d, want clamped 10", d.Rating)
	}
	if d.Goals != 0 {
		t.Errorf("goals = %d, want 0", d.Goals)
	}
}

func TestServiceFailureNotifies(t *testing.T) {
	p, queue := testPipeline(NewFake(nil, errors.New("boom")))

	if _, err := p.ExtractText(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	active := queue.Active()
	if len(active) != 1 || active[0].Severity != notify.Error {
		t.Fatalf("expected exactly one error notification, got %v", active)
	}
	if active[0].Message != "failed to analyze text" {
		t.Errorf("message = %q", active[0].Message)
	}
}

func TestMalformedResponseNotifies(t *testing.T) {
	p, queue := testPipeline(NewFake([]byte(`not json at all`), nil))

	if _, err := p.ExtractText(context.Background(), "x"); err == nil {
		t.Fatal("expected error on malformed response")
	}
	if len(queue.Active()) != 1 {
		t.Fatal("expected one error notification")
	}
}

func TestExtractAudio(t *testing.T) {
	svc := NewFake([]byte(`{"opponent": "Rovers"}`), nil)
	p, _ := testPipeline(svc)

	payload := []byte("fLaC....")
	d, err := p.ExtractAudio(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if d.Opponent != "Rovers" {
		t.Errorf("opponent = %q", d.Opponent)
	}
	if string(svc.LastRequest.Audio) != string(payload) {
		t.Error("payload not forwarded")
	}
	if svc.LastRequest.AudioMIME != "audio/flac" {
		t.Errorf("mime = %q", svc.LastRequest.AudioMIME)
	}
}

func TestExtractAudioFailureMessage(t *testing.T) {
	p, queue := testPipeline(NewFake(nil, errors.New("down")))

	if _, err := p.ExtractAudio(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error")
	}
	active := queue.Active()
	if len(active) != 1 || active[0].Message != "failed to decode audio" {
		t.Fatalf("expected audio error message, got %v", active)
	}
}
