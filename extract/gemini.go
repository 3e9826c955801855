package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"pitchlog/log"
)

const geminiModel = "gemini-2.5-flash"

// New picks the configured inference service from the environment.
func New() (Service, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return NewGemini(key), nil
	}
	return nil, fmt.Errorf("set GEMINI_API_KEY environment variable")
}

// targetSchema is the fixed schema requested from the service,
// independent of the full record field set.
var targetSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"opponent":   map[string]any{"type": "STRING"},
		"finalScore": map[string]any{"type": "STRING"},
		"stadium":    map[string]any{"type": "STRING"},
		"date":       map[string]any{"type": "STRING", "description": "YYYY-MM-DD format"},
		"time":       map[string]any{"type": "STRING", "description": "HH:MM format"},
		"myGoals":    map[string]any{"type": "NUMBER"},
		"myAssists":  map[string]any{"type": "NUMBER"},
		"matchType":  map[string]any{"type": "STRING", "description": "One of: League, Cup, Friendly, Tournament"},
		"rating":     map[string]any{"type": "NUMBER", "description": "1-10 performance rating"},
		"teammates":  map[string]any{"type": "STRING"},
		"assistFrom": map[string]any{"type": "STRING"},
		"scorer":     map[string]any{"type": "STRING"},
		"comments":   map[string]any{"type": "STRING"},
	},
}

// Gemini calls the generateContent endpoint in JSON response mode.
type Gemini struct {
	client *TracedClient
	apiURL string
	apiKey string
}

func NewGemini(apiKey string) *Gemini {
	return &Gemini{
		client: NewTracedClient(),
		apiURL: "https://generativelanguage.googleapis.com/v1beta/models/" + geminiModel + ":generateContent",
		apiKey: apiKey,
	}
}

func (g *Gemini) Name() string { return "gemini" }

// Warm pre-opens the connection; called once at startup.
func (g *Gemini) Warm() {
	go g.client.WarmConnection(g.apiURL)
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type geminiRequest struct {
	Contents []struct {
		Parts []geminiPart `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseMIMEType string `json:"response_mime_type"`
		ResponseSchema   any    `json:"response_schema"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) Generate(ctx context.Context, r Request) ([]byte, error) {
	var parts []geminiPart
	mode := "text"
	if r.Audio != nil {
		mode = "audio"
		parts = append(parts, geminiPart{InlineData: &inlineData{
			MIMEType: r.AudioMIME,
			Data:     base64.StdEncoding.EncodeToString(r.Audio),
		}})
	}
	parts = append(parts, geminiPart{Text: r.Prompt})

	var body geminiRequest
	body.Contents = make([]struct {
		Parts []geminiPart `json:"parts"`
	}, 1)
	body.Contents[0].Parts = parts
	body.GenerationConfig.ResponseMIMEType = "application/json"
	body.GenerationConfig.ResponseSchema = targetSchema

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(resp.Body))
	}

	var gResp geminiResponse
	if err := json.Unmarshal(resp.Body, &gResp); err != nil {
		return nil, fmt.Errorf("gemini response parse error: %w", err)
	}
	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini response has no candidates")
	}

	m := resp.Metrics
	log.Extraction(log.ExtractionMetrics{
		Mode:        mode,
		PayloadKB:   float64(len(payload)) / 1024,
		DNSMs:       float64(m.DNS.Milliseconds()),
		TLSMs:       float64(m.TLS.Milliseconds()),
		TTFBMs:      float64(m.TTFB.Milliseconds()),
		TotalMs:     float64(m.Total.Milliseconds()),
		ConnReused:  m.ConnReused,
		TLSProtocol: m.TLSProtocol,
	})

	return []byte(gResp.Candidates[0].Content.Parts[0].Text), nil
}
