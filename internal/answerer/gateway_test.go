package answerer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/apply-agent/internal/llm"
	"github.com/jonathan/apply-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	InvokeFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (*llm.Response, error)
	Prompts    []string
	Tiers      []llm.ModelTier
}

func (m *MockLLMClient) Invoke(ctx context.Context, prompt string, tier llm.ModelTier) (*llm.Response, error) {
	m.Prompts = append(m.Prompts, prompt)
	m.Tiers = append(m.Tiers, tier)
	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, prompt, tier)
	}
	return &llm.Response{}, nil
}

func (m *MockLLMClient) Close() error {
	return nil
}

// replies answers prompts in order
func replies(texts ...string) func(context.Context, string, llm.ModelTier) (*llm.Response, error) {
	i := 0
	return func(_ context.Context, _ string, _ llm.ModelTier) (*llm.Response, error) {
		text := texts[i]
		i++
		return &llm.Response{Text: text, Usage: llm.Usage{TotalTokens: 10}}, nil
	}
}

func testResume() (*types.Resume, *types.Profile) {
	yes := true
	resume := &types.Resume{
		PersonalInformation: &types.PersonalInformation{Name: "Ada", Email: "ada@example.com"},
		ExperienceDetails:   []types.ExperienceDetails{{Position: "Backend Engineer", Company: "Initech"}},
		EducationDetails:    []types.EducationDetails{{Institution: "MIT", FieldOfStudy: "CS"}},
		Projects:            []types.Project{{Name: "kv-store"}},
	}
	profile := &types.Profile{
		LegalAuthorization: &types.LegalAuthorization{USWorkAuthorization: &yes},
		Availability:       &types.Availability{NoticePeriod: "2 weeks"},
	}
	return resume, profile
}

func TestAnswerTextual_RoutesThroughSection(t *testing.T) {
	resume, profile := testResume()
	client := &MockLLMClient{InvokeFunc: replies("The best section is Legal Authorization.", "Yes")}
	g := New(client, resume, profile, nil)

	answer, err := g.AnswerTextual(context.Background(), "Are you authorized to work in the US?")

	require.NoError(t, err)
	assert.Equal(t, "Yes", answer)
	require.Len(t, client.Prompts, 2)
	assert.Contains(t, client.Prompts[0], "Are you authorized to work in the US?")
	assert.Equal(t, llm.TierLite, client.Tiers[0])
	assert.Contains(t, client.Prompts[1], "us_work_authorization: true", "profile section is rendered as context")
}

func TestAnswerTextual_ResumeWinsOverProfile(t *testing.T) {
	resume, profile := testResume()
	yes := true
	no := false
	resume.LegalAuthorization = &types.LegalAuthorization{USWorkAuthorization: &no}
	profile.LegalAuthorization = &types.LegalAuthorization{USWorkAuthorization: &yes}
	client := &MockLLMClient{InvokeFunc: replies("legal authorization", "No")}
	g := New(client, resume, profile, nil)

	_, err := g.AnswerTextual(context.Background(), "Work authorization?")

	require.NoError(t, err)
	assert.Contains(t, client.Prompts[1], "us_work_authorization: false")
}

func TestAnswerTextual_UnknownSectionIsError(t *testing.T) {
	resume, profile := testResume()
	client := &MockLLMClient{InvokeFunc: replies("I am not sure")}
	g := New(client, resume, profile, nil)

	_, err := g.AnswerTextual(context.Background(), "Favourite colour?")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestAnswerTextual_MissingSectionIsError(t *testing.T) {
	resume, profile := testResume()
	client := &MockLLMClient{InvokeFunc: replies("Salary Expectations")}
	g := New(client, resume, profile, nil)

	_, err := g.AnswerTextual(context.Background(), "Desired salary?")

	assert.ErrorIs(t, err, ErrSectionMissing)
	var sErr *SectionError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "salary_expectations", sErr.Section)
}

func TestAnswerTextual_CoverLetterSkipsClassification(t *testing.T) {
	resume, profile := testResume()
	client := &MockLLMClient{InvokeFunc: replies("I am excited to apply.")}
	g := New(client, resume, profile, nil)
	g.SetJob(&types.Job{Description: "We build distributed databases."})

	answer, err := g.AnswerTextual(context.Background(), CoverLetterQuestion)

	require.NoError(t, err)
	assert.Equal(t, "I am excited to apply.", answer)
	require.Len(t, client.Prompts, 1)
	assert.Contains(t, client.Prompts[0], "We build distributed databases.")
	assert.Equal(t, llm.TierAdvanced, client.Tiers[0])
}

func TestAnswerTextual_ClassifiedAsCoverLetter(t *testing.T) {
	resume, profile := testResume()
	client := &MockLLMClient{InvokeFunc: replies("Cover letter", "Body text")}
	g := New(client, resume, profile, nil)

	answer, err := g.AnswerTextual(context.Background(), "Why do you want this job?")

	require.NoError(t, err)
	assert.Equal(t, "Body text", answer)
	assert.Equal(t, llm.TierAdvanced, client.Tiers[1])
}

func TestAnswerNumeric(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  int
	}{
		{"plain number", "7", 7},
		{"number in sentence", "I have 4 years, maybe 5", 4},
		{"no digits uses default", "several", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resume, profile := testResume()
			client := &MockLLMClient{InvokeFunc: replies(tt.reply)}
			g := New(client, resume, profile, nil)

			got, err := g.AnswerNumeric(context.Background(), "Years of Go?", 5)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, client.Prompts[0], "Initech")
			assert.Contains(t, client.Prompts[0], "kv-store")
		})
	}
}

func TestAnswerNumeric_PropagatesInvokeError(t *testing.T) {
	client := &MockLLMClient{InvokeFunc: func(context.Context, string, llm.ModelTier) (*llm.Response, error) {
		return nil, &llm.RetryExhaustedError{Attempts: 3, Cause: errors.New("boom")}
	}}
	g := New(client, nil, nil, nil)

	_, err := g.AnswerNumeric(context.Background(), "Years?", 5)

	var exhausted *llm.RetryExhaustedError
	assert.ErrorAs(t, err, &exhausted)
}

func TestAnswerFromOptions(t *testing.T) {
	resume, profile := testResume()
	client := &MockLLMClient{InvokeFunc: replies("yes.")}
	g := New(client, resume, profile, nil)

	answer, err := g.AnswerFromOptions(context.Background(), "Willing to relocate?", []string{"Yes", "No"})

	require.NoError(t, err)
	assert.Equal(t, "Yes", answer)
	assert.True(t, strings.Contains(client.Prompts[0], "- Yes\n- No"))
}

func TestAnswerFromOptions_NoOptions(t *testing.T) {
	client := &MockLLMClient{}
	g := New(client, nil, nil, nil)

	_, err := g.AnswerFromOptions(context.Background(), "Pick one", nil)

	assert.ErrorIs(t, err, ErrNoOptions)
	assert.Empty(t, client.Prompts)
}

func TestBestMatch(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		options []string
		want    string
	}{
		{"exact ignoring case", "NO", []string{"Yes", "No"}, "No"},
		{"closest", "Bachelors degree", []string{"High school", "Bachelor's Degree", "Master's Degree"}, "Bachelor's Degree"},
		{"tie goes to first", "ab", []string{"aa", "bb"}, "aa"},
		{"single option", "anything", []string{"Only"}, "Only"},
		{"no options", "x", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BestMatch(tt.text, tt.options))
		})
	}
}

func TestExtractSection(t *testing.T) {
	tests := []struct {
		reply   string
		want    string
		wantErr bool
	}{
		{"Personal information", "personal_information", false},
		{"section: EXPERIENCE DETAILS.", "experience_details", false},
		{"salary expectations", "salary_expectations", false},
		{"cover Letter", "cover_letter", false},
		{"hobbies", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			got, err := ExtractSection(tt.reply)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractInteger(t *testing.T) {
	n, ok := ExtractInteger("about 12 or 13")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = ExtractInteger("none")
	assert.False(t, ok)
}
