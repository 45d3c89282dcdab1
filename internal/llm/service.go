// Package llm wraps the generative model behind the two content
// surfaces the apps consume: exam question sets and short advisory
// text. Both are single-shot calls with no retry; a failure is logged
// and substituted with a safe fallback so no session is ever blocked
// on the upstream model.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"ethiosuite/internal/exam"
	"ethiosuite/internal/inventory"
	"ethiosuite/internal/monitoring"
)

// MaxQuestions caps the size of a generated question set.
const MaxQuestions = 100

// Service issues content-generation calls against a language model.
type Service struct {
	model llms.LLM
}

// New wraps an existing model.
func New(model llms.LLM) *Service {
	return &Service{model: model}
}

// NewOpenAI initializes the default OpenAI-backed service.
func NewOpenAI(apiKey, modelName string) (*Service, error) {
	model, err := openai.New(
		openai.WithModel(modelName),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}
	return New(model), nil
}

// fallbackQuestions is returned when generation fails, so the exam flow
// degrades to a single placeholder instead of leaving the user stuck.
func fallbackQuestions() []exam.Question {
	return []exam.Question{
		{
			ID:                 1,
			Text:               "The question service is unavailable. This is a fallback question. Which of the following is a primary color?",
			Options:            []string{"Green", "Purple", "Red", "Orange"},
			CorrectOptionIndex: 2,
			Explanation:        "Red is a primary color along with Blue and Yellow.",
			Topic:              "General Knowledge",
		},
	}
}

// GenerateExamQuestions requests a simulated exit-exam paper for the
// given configuration. The model is asked for strict JSON; anything
// that fails to come back or parse is substituted with the fallback.
func (s *Service) GenerateExamQuestions(ctx context.Context, cfg exam.Config) ([]exam.Question, error) {
	prompt := fmt.Sprintf(`You are an expert academic examiner for Ethiopian Higher Education Institutions.
Create a simulated Exit Exam for the department of %q for the year %s, %s.

Generate %d challenging multiple-choice questions that reflect the standard curriculum for this field.
The questions should cover various key topics within the department.

Return the response strictly as a JSON array. Each element must be an object with:
  "id" (integer), "text" (the question), "options" (array of exactly 4 strings),
  "correctOptionIndex" (0-3), "explanation" (why the answer is correct),
  "topic" (the sub-topic, e.g. "Data Structures").
Return only the JSON array, no other text.`, cfg.Department, cfg.Year, cfg.Session, MaxQuestions)

	raw, err := llms.GenerateFromSinglePrompt(ctx, s.model, prompt, llms.WithJSONMode())
	if err != nil {
		log.Printf("llm: exam generation failed: %v", err)
		monitoring.GenerationFailures.Inc()
		return fallbackQuestions(), nil
	}

	questions, err := parseQuestions(raw)
	if err != nil {
		log.Printf("llm: discarding malformed exam payload: %v", err)
		monitoring.GenerationFailures.Inc()
		return fallbackQuestions(), nil
	}
	return questions, nil
}

// parseQuestions decodes and sanity-checks a generated question set.
func parseQuestions(raw string) ([]exam.Question, error) {
	var questions []exam.Question
	if err := json.Unmarshal([]byte(stripFences(raw)), &questions); err != nil {
		return nil, fmt.Errorf("failed to decode question set: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("empty question set")
	}
	if len(questions) > MaxQuestions {
		questions = questions[:MaxQuestions]
	}
	for i, q := range questions {
		if len(q.Options) != 4 {
			return nil, fmt.Errorf("question %d has %d options, want 4", i, len(q.Options))
		}
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex > 3 {
			return nil, fmt.Errorf("question %d has correct index %d out of range", i, q.CorrectOptionIndex)
		}
	}
	return questions, nil
}

// stripFences removes a markdown code fence the model may wrap the
// payload in despite instructions.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// StudyTip asks for a short, encouraging coaching tip. Failures fall
// back to a static message.
func (s *Service) StudyTip(ctx context.Context, score float64, department string) string {
	prompt := fmt.Sprintf(
		"Give a short, encouraging, and specific study tip for a %s student who just scored %.0f%% on a practice exit exam. Keep it under 50 words.",
		department, score,
	)

	tip, err := llms.GenerateFromSinglePrompt(ctx, s.model, prompt)
	if err != nil {
		log.Printf("llm: study tip failed: %v", err)
		monitoring.GenerationFailures.Inc()
		return "Consistency is key. Review your weak areas and try again!"
	}
	if strings.TrimSpace(tip) == "" {
		return "Keep practicing to improve your score!"
	}
	return strings.TrimSpace(tip)
}

// AnalyzeInventory produces a short operational briefing over the
// current ledger and recent activity for the factory assistant.
func (s *Service) AnalyzeInventory(ctx context.Context, items []inventory.Item, transactions []inventory.Transaction) (string, error) {
	var b strings.Builder
	b.WriteString("You are an operations analyst for a small candy factory. Current inventory:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %s (%s): %v %s in stock, reorder at %v, ETB %v per unit\n",
			item.Name, item.Category, item.Quantity, item.Unit, item.MinStock, item.CostPerUnit)
	}

	b.WriteString("\nRecent activity (newest first):\n")
	recent := transactions
	if len(recent) > 20 {
		recent = recent[:20]
	}
	for _, tx := range recent {
		fmt.Fprintf(&b, "- [%s] %s\n", tx.Type, tx.Details)
	}

	b.WriteString("\nIn under 120 words, point out low or at-risk stock, unusual activity, and one concrete restocking recommendation.")

	analysis, err := llms.GenerateFromSinglePrompt(ctx, s.model, b.String())
	if err != nil {
		return "", fmt.Errorf("inventory analysis failed: %w", err)
	}
	return strings.TrimSpace(analysis), nil
}
