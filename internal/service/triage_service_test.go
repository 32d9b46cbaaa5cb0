package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

type stubModel struct {
	responses []string
	errs      []error
	calls     int
}

func (m *stubModel) Generate(_ context.Context, _ string) (string, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return m.responses[len(m.responses)-1], nil
}

func newTriage(model TriageModel) *TriageService {
	return NewTriageService(model, 3, time.Millisecond, nil, zap.NewNop())
}

const sampleResponse = `1. Urgency Level: low
2. Possible Conditions: tension headache, mild dehydration
3. Recommended Next Steps: rest, hydrate, and monitor symptoms for 48 hours.`

func TestAssess(t *testing.T) {
	model := &stubModel{responses: []string{sampleResponse}}
	svc := newTriage(model)

	patientID := uuid.New()
	a, err := svc.Assess(context.Background(), patientID, "mild headache since yesterday")
	require.NoError(t, err)

	assert.Equal(t, patientID, a.PatientID)
	assert.Equal(t, UrgencyLow, a.Urgency)
	assert.Contains(t, a.PossibleConditions, "tension headache")
	assert.Contains(t, a.Recommendations, "hydrate")
	assert.Equal(t, sampleResponse, a.RawText)
	assert.False(t, a.GeneratedAt.IsZero())
	assert.Equal(t, 1, model.calls)
}

func TestAssessValidation(t *testing.T) {
	svc := newTriage(&stubModel{responses: []string{sampleResponse}})

	var validErr *ValidationError

	_, err := svc.Assess(context.Background(), uuid.Nil, "symptoms")
	require.ErrorAs(t, err, &validErr)

	_, err = svc.Assess(context.Background(), uuid.New(), "   ")
	require.ErrorAs(t, err, &validErr)
}

func TestAssessRetriesOnRateLimit(t *testing.T) {
	rateLimited := &googleapi.Error{Code: http.StatusTooManyRequests}
	model := &stubModel{
		errs:      []error{rateLimited, rateLimited, nil},
		responses: []string{"", "", sampleResponse},
	}
	svc := newTriage(model)

	a, err := svc.Assess(context.Background(), uuid.New(), "chest tightness")
	require.NoError(t, err)
	assert.Equal(t, UrgencyLow, a.Urgency)
	assert.Equal(t, 3, model.calls)
}

func TestAssessFailsFastOnOtherErrors(t *testing.T) {
	model := &stubModel{errs: []error{errors.New("model unavailable")}}
	svc := newTriage(model)

	_, err := svc.Assess(context.Background(), uuid.New(), "fever")
	require.Error(t, err)
	assert.Equal(t, 1, model.calls)
}

func TestAssessGivesUpAfterMaxRetries(t *testing.T) {
	rateLimited := &googleapi.Error{Code: http.StatusTooManyRequests}
	model := &stubModel{
		errs: []error{rateLimited, rateLimited, rateLimited, rateLimited, rateLimited},
	}
	svc := newTriage(model)

	_, err := svc.Assess(context.Background(), uuid.New(), "fever")
	require.Error(t, err)
	// Initial attempt plus three retries.
	assert.Equal(t, 4, model.calls)
}

func TestParseAssessment(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Urgency
	}{
		{"low", "Urgency Level: low", UrgencyLow},
		{"medium maps to moderate", "Urgency Level: medium", UrgencyModerate},
		{"high", "1. Urgency Level: HIGH, seek care promptly", UrgencyHigh},
		{"case insensitive header", "urgency level is Low for this patient", UrgencyLow},
		{"unparseable defaults to moderate", "I cannot assess this.", UrgencyModerate},
		{"empty defaults to moderate", "", UrgencyModerate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := parseAssessment(tc.text)
			assert.Equal(t, tc.want, a.Urgency)
			assert.Equal(t, tc.text, a.RawText)
		})
	}
}

func TestParseAssessmentSections(t *testing.T) {
	a := parseAssessment(sampleResponse)
	assert.Equal(t, "tension headache, mild dehydration", a.PossibleConditions)
	assert.Equal(t, "rest, hydrate, and monitor symptoms for 48 hours.", a.Recommendations)

	// Missing sections stay empty rather than failing.
	b := parseAssessment("Urgency Level: high")
	assert.Empty(t, b.PossibleConditions)
	assert.Empty(t, b.Recommendations)
}
