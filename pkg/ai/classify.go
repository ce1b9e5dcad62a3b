package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ResultKind tags the outcome of a classification call
type ResultKind int

const (
	// ResultOK means the model answered with a usable object
	ResultOK ResultKind = iota
	// ResultParseFailure means the model answered but no object with a title could be read
	ResultParseFailure
	// ResultRequestFailure means the call itself failed or timed out
	ResultRequestFailure
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultParseFailure:
		return "parse_failure"
	case ResultRequestFailure:
		return "request_failure"
	}
	return "unknown"
}

// Classification is the structured task a model produced for one message
type Classification struct {
	Title       string
	Description string
	Context     string
	Category    string
	Topic       string
}

// ClassifyResult is Ok(Classification) | ParseFailure(Raw) | RequestFailure(Err)
type ClassifyResult struct {
	Kind           ResultKind
	Classification Classification
	Raw            string
	Err            error
}

// Prompt is a registered prompt template
type Prompt struct {
	System      string
	Temperature float64
	MaxTokens   int
	// InputLimit caps the user input in runes; zero means unlimited
	InputLimit int
}

// PromptTaskExtraction turns a chat message into a development task
const PromptTaskExtraction = "task-extraction"

const taskExtractionSystemPrompt = `You extract actionable development tasks from chat messages.

Return ONLY valid JSON (no markdown, no explanation):
{
  "title": "Clear actionable title starting with verb (max 150 chars)",
  "description": "2-3 sentences explaining what was requested and why. Include key requirements.",
  "context": "Files, technologies, APIs, or dependencies mentioned",
  "category": "feature|bugfix|refactor|config|docs|research",
  "topic": "Short topic name (1-3 words) describing the feature area"
}

Rules:
- Title MUST start with action verb (Add, Fix, Update, Implement, Configure, Create, Build, Remove, etc.)
- Description should capture the full intent, not just summarize
- Context extracts technical specifics (file paths, package names, API endpoints)
- Omit sensitive data (API keys, passwords, tokens, secrets)
- Category: feature (new functionality), bugfix (fixing issues), refactor (code improvement), config (setup/configuration), docs (documentation), research (investigation/exploration)
- Topic: A short label for the feature area (e.g., "Authentication", "Docker Integration", "UI Components", "API Endpoints", "Database", "Testing", "Claude Parsing", "Calendar Sync", "Email Import", "Export", "Settings", "Performance", "Security")
- If unclear, set category to "research" and topic to "General"`

// DefaultPrompts returns the built-in prompt registry
func DefaultPrompts() map[string]Prompt {
	return map[string]Prompt{
		PromptTaskExtraction: {
			System:      taskExtractionSystemPrompt,
			Temperature: 0.2,
			MaxTokens:   350,
			InputLimit:  1500,
		},
	}
}

// TaskClassifier runs registered prompts against a Completer and turns the
// free-form answer into a tagged result
type TaskClassifier struct {
	completer Completer
	prompts   map[string]Prompt
	timeout   time.Duration
}

// NewTaskClassifier creates a classifier. A zero timeout leaves the caller's
// context as the only deadline.
func NewTaskClassifier(completer Completer, timeout time.Duration) *TaskClassifier {
	return &TaskClassifier{
		completer: completer,
		prompts:   DefaultPrompts(),
		timeout:   timeout,
	}
}

// Classify never returns an error value directly; failures are carried in the result
func (c *TaskClassifier) Classify(ctx context.Context, promptID, input string) ClassifyResult {
	prompt, ok := c.prompts[promptID]
	if !ok {
		return ClassifyResult{Kind: ResultRequestFailure, Err: fmt.Errorf("unknown prompt %q", promptID)}
	}

	if prompt.InputLimit > 0 {
		input = truncateRunes(input, prompt.InputLimit)
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	raw, err := c.completer.Complete(callCtx, CompletionRequest{
		System:      prompt.System,
		Prompt:      input,
		Temperature: prompt.Temperature,
		MaxTokens:   prompt.MaxTokens,
	})
	if err != nil {
		return ClassifyResult{Kind: ResultRequestFailure, Err: err}
	}

	obj, ok := ParseLooseJSON(raw)
	if !ok {
		return ClassifyResult{Kind: ResultParseFailure, Raw: raw}
	}

	title, _ := obj["title"].(string)
	if strings.TrimSpace(title) == "" {
		return ClassifyResult{Kind: ResultParseFailure, Raw: raw}
	}

	return ClassifyResult{
		Kind: ResultOK,
		Raw:  raw,
		Classification: Classification{
			Title:       strings.TrimSpace(title),
			Description: stringField(obj, "description"),
			Context:     stringField(obj, "context"),
			Category:    stringField(obj, "category"),
			Topic:       stringField(obj, "topic"),
		},
	}
}

func stringField(obj map[string]interface{}, key string) string {
	s, _ := obj[key].(string)
	return s
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
