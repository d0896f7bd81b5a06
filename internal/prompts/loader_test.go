package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const answeringFile = "answering.yaml"

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(answeringFile, "section-classifier")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Question}}")
	assert.Contains(t, prompt, "Salary Expectations")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.yaml", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(answeringFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.yaml", "some-key")
	})
}

func TestAnsweringPrompts_Complete(t *testing.T) {
	ClearCache()

	required := []string{
		"section-classifier", "numeric", "options", "cover_letter",
		"personal_information", "self_identification", "legal_authorization", "work_preferences",
		"education_details", "experience_details", "projects", "availability",
		"salary_expectations", "certifications", "languages", "interests",
	}

	keys, err := List(answeringFile)
	require.NoError(t, err)
	for _, key := range required {
		assert.Contains(t, keys, key)
	}

	for _, key := range required[4:] {
		prompt := MustGet(answeringFile, key)
		assert.Contains(t, prompt, "{{.Section}}", key)
		assert.Contains(t, prompt, "{{.Question}}", key)
	}
	assert.Contains(t, MustGet(answeringFile, "options"), "{{.Options}}")
	assert.Contains(t, MustGet(answeringFile, "cover_letter"), "{{.JobDescription}}")
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	result := Format(template, data)
	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", result)
}

func TestFormat_ValuesAreNotReexpanded(t *testing.T) {
	result := Format("{{.A}} and {{.B}}", map[string]string{"A": "{{.B}}", "B": "b"})
	assert.Equal(t, "{{.B}} and b", result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"

	result := Format(template, map[string]string{})
	assert.Equal(t, template, result) // Placeholder remains
}

func TestList_Sorted(t *testing.T) {
	ClearCache()

	keys, err := List(answeringFile)
	require.NoError(t, err)
	assert.IsNonDecreasing(t, keys)
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get(answeringFile, "numeric")
	require.NoError(t, err)

	prompt2, err := Get(answeringFile, "numeric")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
