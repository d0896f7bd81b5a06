package answerer

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/apply-agent/internal/llm"
	"github.com/jonathan/apply-agent/internal/prompts"
	"github.com/jonathan/apply-agent/internal/types"
	"go.uber.org/zap"
)

const promptFile = "answering.yaml"

// Gateway answers application questions through the language model.
// The client is expected to carry its own retry policy (see llm.RetryingClient).
type Gateway struct {
	client  llm.Client
	resume  *types.Resume
	profile *types.Profile
	log     *zap.Logger
	job     *types.Job
}

// New creates a Gateway over the given client and candidate data
func New(client llm.Client, resume *types.Resume, profile *types.Profile, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		client:  client,
		resume:  resume,
		profile: profile,
		log:     log,
	}
}

// SetJob sets the posting whose description feeds the cover-letter prompt
func (g *Gateway) SetJob(job *types.Job) {
	g.job = job
}

// AnswerTextual answers a free-text question. The question is first routed to a
// resume section by a classification call; the fixed cover-letter request skips routing.
func (g *Gateway) AnswerTextual(ctx context.Context, question string) (string, error) {
	section := coverLetterSection
	if question != CoverLetterQuestion {
		reply, err := g.invoke(ctx, "section-classifier", map[string]string{"Question": question}, llm.TierLite)
		if err != nil {
			return "", fmt.Errorf("failed to classify question: %w", err)
		}
		section, err = ExtractSection(reply)
		if err != nil {
			return "", err
		}
	}

	if section == coverLetterSection {
		description := ""
		if g.job != nil {
			description = g.job.Description
		}
		return g.invoke(ctx, coverLetterSection, map[string]string{
			"Resume":         renderContext(g.resume),
			"JobDescription": description,
		}, llm.TierAdvanced)
	}

	record, err := lookupSection(g.resume, g.profile, section)
	if err != nil {
		return "", err
	}

	g.log.Debug("Answering textual question", zap.String("question", question), zap.String("section", section))
	return g.invoke(ctx, section, map[string]string{
		"Section":  renderContext(record),
		"Question": question,
	}, llm.TierStandard)
}

// AnswerNumeric answers a question expecting a whole number. When the reply holds
// no digits, defaultValue is returned instead of an error.
func (g *Gateway) AnswerNumeric(ctx context.Context, question string, defaultValue int) (int, error) {
	data := map[string]string{"Question": question}
	if g.resume != nil {
		data["Education"] = renderContext(g.resume.EducationDetails)
		data["Experience"] = renderContext(g.resume.ExperienceDetails)
		data["Projects"] = renderContext(g.resume.Projects)
	}

	reply, err := g.invoke(ctx, "numeric", data, llm.TierStandard)
	if err != nil {
		return 0, err
	}

	n, ok := ExtractInteger(reply)
	if !ok {
		g.log.Warn("No number in reply, using default",
			zap.String("question", question),
			zap.String("reply", reply),
			zap.Int("default", defaultValue))
		return defaultValue, nil
	}
	return n, nil
}

// AnswerFromOptions asks the model to choose among options and returns the
// option closest to its reply.
func (g *Gateway) AnswerFromOptions(ctx context.Context, question string, options []string) (string, error) {
	if len(options) == 0 {
		return "", ErrNoOptions
	}

	reply, err := g.invoke(ctx, "options", map[string]string{
		"Resume":   renderContext(g.resume),
		"Question": question,
		"Options":  "- " + strings.Join(options, "\n- "),
	}, llm.TierStandard)
	if err != nil {
		return "", err
	}

	best := BestMatch(reply, options)
	g.log.Debug("Chose option", zap.String("question", question), zap.String("reply", reply), zap.String("option", best))
	return best, nil
}

// invoke renders a template and calls the model
func (g *Gateway) invoke(ctx context.Context, key string, data map[string]string, tier llm.ModelTier) (string, error) {
	template, err := prompts.Get(promptFile, key)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Invoke(ctx, prompts.Format(template, data), tier)
	if err != nil {
		return "", fmt.Errorf("failed to invoke %s prompt: %w", key, err)
	}

	g.log.Debug("LLM usage",
		zap.String("prompt", key),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return strings.TrimSpace(resp.Text), nil
}
