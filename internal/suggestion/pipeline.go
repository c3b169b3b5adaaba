package suggestion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Token budgets for the completion call. The larger budget leaves room
// for the DetailedNutrition block.
const (
	maxTokensBasic     = 150
	maxTokensNutrition = 500
)

// ErrInvalidRequest is returned when the caller supplied no input text.
// No model call is made in that case.
var ErrInvalidRequest = errors.New("user input is required")

// Message is one entry in the chat exchange sent to the model provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionClient is the model-provider boundary: one request, one raw
// text reply.
type CompletionClient interface {
	Complete(ctx context.Context, messages []Message, maxTokens int) (string, error)
}

// UpstreamError wraps a model-provider failure with enough detail to
// tell an error response (with status code) from a no-response or a
// request-construction failure.
type UpstreamError struct {
	Kind       UpstreamErrorKind
	StatusCode int
	Err        error
}

// UpstreamErrorKind classifies provider failures.
type UpstreamErrorKind string

const (
	UpstreamErrorResponse UpstreamErrorKind = "error_response"
	UpstreamNoResponse    UpstreamErrorKind = "no_response"
	UpstreamRequestSetup  UpstreamErrorKind = "request_setup"
)

func (e *UpstreamError) Error() string {
	if e.Kind == UpstreamErrorResponse {
		return fmt.Sprintf("model provider returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("model provider failure (%s): %v", e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IncompleteSuggestionError reports which Suggestion fields came back
// empty after parsing.
type IncompleteSuggestionError struct {
	Fields []string
}

func (e *IncompleteSuggestionError) Error() string {
	return fmt.Sprintf("incomplete suggestion, missing: %s", strings.Join(e.Fields, ", "))
}

// Result is the outcome of one pipeline run. StatedCalories carries the
// calorie text the model wrote when a computed value replaced it.
type Result struct {
	Suggestion     Suggestion             `json:"suggestion"`
	Nutrition      *DetailedNutritionInfo `json:"detailedNutrition,omitempty"`
	StatedCalories string                 `json:"statedCalories,omitempty"`
}

// Pipeline runs prompt building, the completion call, parsing, and
// validation for a single suggestion request. It is stateless and safe
// for concurrent use; cancellation and timeouts come from the caller's
// context.
type Pipeline struct {
	client CompletionClient
	log    zerolog.Logger
}

// NewPipeline creates a Pipeline backed by the given model provider.
func NewPipeline(client CompletionClient, log zerolog.Logger) *Pipeline {
	return &Pipeline{client: client, log: log}
}

// Generate produces one validated Suggestion from the request context.
func (p *Pipeline) Generate(ctx context.Context, rc RequestContext) (*Result, error) {
	if strings.TrimSpace(rc.FreeText) == "" {
		return nil, ErrInvalidRequest
	}

	systemMessage, userMessage := BuildPrompt(rc)
	maxTokens := maxTokensBasic
	if rc.IncludeNutrition {
		maxTokens = maxTokensNutrition
	}

	raw, err := p.client.Complete(ctx, []Message{
		{Role: "system", Content: systemMessage},
		{Role: "user", Content: userMessage},
	}, maxTokens)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			return nil, err
		}
		return nil, &UpstreamError{Kind: UpstreamNoResponse, Err: err}
	}

	parsed, err := Parse(raw)
	if err != nil {
		var missing *MissingFieldError
		if !errors.As(err, &missing) {
			return nil, err
		}
		// Missing labels are not fatal here: the non-empty validation
		// below reports the exact field list.
		p.log.Warn().Strs("fields", missing.Fields).Msg("model reply missing fields")
	}

	result := &Result{
		Suggestion: Suggestion{
			Item:           parsed.Item,
			Description:    parsed.Description,
			Source:         parsed.Location,
			EstimatedPrice: parsed.Price,
			Calories:       parsed.Calories,
		},
	}

	if parsed.HasNutrition {
		nutrition := parsed.Nutrition
		result.Nutrition = &nutrition
		computed := fmt.Sprintf("%d cal", CalculateCalories(nutrition))
		if parsed.Calories != "" && parsed.Calories != computed {
			result.StatedCalories = parsed.Calories
		}
		result.Suggestion.Calories = computed
	}

	if missing := emptyFields(result.Suggestion); len(missing) > 0 {
		return nil, &IncompleteSuggestionError{Fields: missing}
	}

	return result, nil
}

func emptyFields(s Suggestion) []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"item", s.Item},
		{"description", s.Description},
		{"source", s.Source},
		{"estimatedPrice", s.EstimatedPrice},
		{"calories", s.Calories},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
