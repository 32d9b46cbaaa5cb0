package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/medibook/medibook-api/pkg/metrics"
)

type Urgency string

const (
	UrgencyLow      Urgency = "LOW"
	UrgencyModerate Urgency = "MODERATE"
	UrgencyHigh     Urgency = "HIGH"
)

// Assessment is the structured result of running a symptom description
// through the triage model. RawText keeps the full model output so the
// client can render it even when section extraction fails.
type Assessment struct {
	PatientID          uuid.UUID `json:"patient_id"`
	Urgency            Urgency   `json:"urgency"`
	PossibleConditions string    `json:"possible_conditions"`
	Recommendations    string    `json:"recommendations"`
	RawText            string    `json:"raw_text"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// TriageModel is the narrow surface the service needs from a generative
// model. *GeminiModel satisfies it; tests supply a canned stub.
type TriageModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiModel wraps the Gemini API client behind TriageModel.
type GeminiModel struct {
	client  *genai.Client
	modelID string
}

func NewGeminiModel(ctx context.Context, apiKey, modelID string) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiModel{client: client, modelID: modelID}, nil
}

func (m *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	model := m.client.GenerativeModel(m.modelID)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

func (m *GeminiModel) Close() error {
	return m.client.Close()
}

// TriageService produces a preliminary urgency assessment from free-text
// symptoms. It is advisory only and never writes clinical records.
type TriageService struct {
	model      TriageModel
	maxRetries int
	baseDelay  time.Duration
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewTriageService(model TriageModel, maxRetries int, baseDelay time.Duration, m *metrics.Collector, log *zap.Logger) *TriageService {
	return &TriageService{
		model:      model,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		metrics:    m,
		log:        log,
	}
}

func (s *TriageService) Assess(ctx context.Context, patientID uuid.UUID, symptoms string) (*Assessment, error) {
	if patientID == uuid.Nil {
		return nil, newValidationError("patientId")
	}
	if strings.TrimSpace(symptoms) == "" {
		return nil, newValidationError("symptoms")
	}

	text, err := s.generateWithRetry(ctx, triagePrompt(symptoms))
	if err != nil {
		s.log.Error("triage model call failed",
			zap.String("patient_id", patientID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("triage model: %w", err)
	}

	a := parseAssessment(text)
	a.PatientID = patientID
	a.GeneratedAt = time.Now().UTC()

	if s.metrics != nil {
		s.metrics.TriageAssessmentsTotal.WithLabelValues(string(a.Urgency)).Inc()
	}
	s.log.Info("triage assessment generated",
		zap.String("patient_id", patientID.String()),
		zap.String("urgency", string(a.Urgency)),
	)
	return a, nil
}

func (s *TriageService) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	delay := s.baseDelay
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		text, err := s.model.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		// Only rate limiting is worth waiting out; everything else fails fast.
		if !isRateLimited(err) || attempt == s.maxRetries {
			return "", err
		}

		s.log.Warn("triage model rate limited, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return "", lastErr
}

func isRateLimited(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests
}

func triagePrompt(symptoms string) string {
	return fmt.Sprintf(`You are a medical triage assistant for a telehealth service.
A patient reports the following symptoms:

%s

Respond with exactly these sections:
1. Urgency Level: one of low, medium, or high.
2. Possible Conditions: a short list of plausible causes.
3. Recommended Next Steps: what the patient should do before seeing a doctor.

Keep the answer brief. Do not provide a diagnosis.`, strings.TrimSpace(symptoms))
}

var (
	urgencyRe    = regexp.MustCompile(`(?i)urgency level[^\n]*?\b(low|medium|high)\b`)
	conditionsRe = regexp.MustCompile(`(?is)possible conditions[:\s]*(.*?)(?:\n\s*(?:\d+\.|recommended next steps)|\z)`)
	stepsRe      = regexp.MustCompile(`(?is)recommended next steps[:\s]*(.*?)\z`)
)

// parseAssessment extracts the structured fields from the model's free-text
// answer. Extraction is best effort: an unparseable answer still comes back
// as a MODERATE assessment with the raw text attached.
func parseAssessment(text string) *Assessment {
	a := &Assessment{
		Urgency: UrgencyModerate,
		RawText: text,
	}

	if m := urgencyRe.FindStringSubmatch(text); m != nil {
		switch strings.ToLower(m[1]) {
		case "low":
			a.Urgency = UrgencyLow
		case "high":
			a.Urgency = UrgencyHigh
		}
	}
	if m := conditionsRe.FindStringSubmatch(text); m != nil {
		a.PossibleConditions = strings.TrimSpace(m[1])
	}
	if m := stepsRe.FindStringSubmatch(text); m != nil {
		a.Recommendations = strings.TrimSpace(m[1])
	}
	return a
}
