package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lwozdev/10x-cards/internal/domain"
)

const (
	openAIProviderName   = "openai"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"

	// The provider call must fail, not hang, past this ceiling.
	defaultCallTimeout = 60 * time.Second

	generateTemperature = 0.7
	suggestTemperature  = 0.2

	// SuggestName works on an excerpt, not the whole text.
	suggestExcerptLen = 500

	maxCompletionTokens = 4096
)

const generateSystemPrompt = `You are an assistant that turns study material into question/answer flashcards. ` +
	`Respond strictly with JSON matching this schema: ` +
	`{"flashcards":[{"front":string,"back":string}],"suggested_name":string}. ` +
	`Each front is at most 1000 characters, each back at most 1000 characters. ` +
	`suggested_name is a short deck title in the language of the material. ` +
	`Cover the important facts, one fact per card, no duplicates.`

const suggestSystemPrompt = `You are an assistant that names flashcard decks. ` +
	`Respond strictly with JSON: {"name":string}. ` +
	`The name is at most 100 characters, in the language of the excerpt.`

// OpenAIOptions configures the OpenAI-compatible generation client.
type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
	CallTimeout  time.Duration
	Retry        RetryPolicy
	Logger       zerolog.Logger
}

// OpenAIGenerator implements Generator against an OpenAI-compatible
// chat/completions endpoint.
type OpenAIGenerator struct {
	apiKey       string
	model        string
	baseURL      string
	organization string
	client       *http.Client
	callTimeout  time.Duration
	retry        RetryPolicy
	logger       zerolog.Logger
}

// NewOpenAIGenerator validates the options and builds a client.
func NewOpenAIGenerator(opts OpenAIOptions) (*OpenAIGenerator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	policy := opts.Retry
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy()
	}
	return &OpenAIGenerator{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        model,
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
		callTimeout:  timeout,
		retry:        policy,
		logger:       opts.Logger,
	}, nil
}

// Name returns the provider identifier.
func (g *OpenAIGenerator) Name() string {
	return openAIProviderName
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature,omitempty"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type chatErrorResponse struct {
	Error struct {
		Message    string  `json:"message"`
		RetryAfter float64 `json:"retry_after"`
	} `json:"error"`
}

type generationPayload struct {
	Flashcards    []cardPayload `json:"flashcards"`
	SuggestedName string        `json:"suggested_name"`
}

type cardPayload struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type namePayload struct {
	Name string `json:"name"`
}

// Generate sends the sanitized text to the provider and parses the response
// into validated flashcard candidates.
func (g *OpenAIGenerator) Generate(ctx context.Context, text domain.SourceText) (*Result, error) {
	sanitized, err := sanitizeSourceText(text.String())
	if err != nil {
		return nil, err
	}

	payload := chatRequest{
		Model:       g.model,
		Temperature: generateTemperature,
		MaxTokens:   maxCompletionTokens,
		ResponseFormat: &chatFormat{
			Type: "json_object",
		},
		Messages: []chatMessage{
			{Role: "system", Content: generateSystemPrompt},
			{Role: "user", Content: sanitized},
		},
	}

	resp, err := g.chatWithRetry(ctx, payload)
	if err != nil {
		return nil, err
	}

	parsed, err := parseModelPayload[generationPayload](resp.content)
	if err != nil {
		return nil, &ProviderError{Kind: KindParse, Message: fmt.Sprintf("decode flashcards payload: %v", err)}
	}
	if parsed.Flashcards == nil {
		return nil, &ProviderError{Kind: KindParse, Message: "response has no flashcards field"}
	}

	cards := make([]domain.GeneratedCard, 0, len(parsed.Flashcards))
	for i, c := range parsed.Flashcards {
		card, err := domain.NewGeneratedCard(c.Front, c.Back)
		if err != nil {
			// Invalid elements are skipped, not fatal.
			g.logger.Warn().Err(err).Int("index", i).Msg("skipping invalid generated card")
			continue
		}
		cards = append(cards, card)
	}
	if len(cards) == 0 {
		return nil, &ProviderError{Kind: KindParse, Message: "no valid flashcards in response"}
	}

	name := strings.TrimSpace(parsed.SuggestedName)
	if name == "" {
		name = suggestedNameFromText(sanitized)
	}
	name = truncateRunes(name, domain.SetNameMaxLen)

	model := resp.model
	if model == "" {
		model = g.model
	}
	return &Result{
		Cards:            cards,
		SuggestedName:    name,
		Model:            model,
		PromptTokens:     resp.promptTokens,
		CompletionTokens: resp.completionTokens,
	}, nil
}

// SuggestName performs a lighter-weight call over a truncated excerpt with a
// low temperature for determinism.
func (g *OpenAIGenerator) SuggestName(ctx context.Context, text domain.SourceText) (string, error) {
	sanitized, err := sanitizeSourceText(text.String())
	if err != nil {
		return "", err
	}
	excerpt := truncateRunes(sanitized, suggestExcerptLen)

	payload := chatRequest{
		Model:       g.model,
		Temperature: suggestTemperature,
		ResponseFormat: &chatFormat{
			Type: "json_object",
		},
		Messages: []chatMessage{
			{Role: "system", Content: suggestSystemPrompt},
			{Role: "user", Content: excerpt},
		},
	}

	resp, err := g.chatWithRetry(ctx, payload)
	if err != nil {
		return "", err
	}
	parsed, err := parseModelPayload[namePayload](resp.content)
	if err != nil {
		return "", &ProviderError{Kind: KindParse, Message: fmt.Sprintf("decode name payload: %v", err)}
	}
	name := strings.TrimSpace(parsed.Name)
	if name == "" {
		return "", &ProviderError{Kind: KindParse, Message: "response has no name"}
	}
	return truncateRunes(name, domain.SetNameMaxLen), nil
}

type chatResult struct {
	content          string
	model            string
	promptTokens     int
	completionTokens int
}

// chatWithRetry runs one provider call per attempt under the retry policy.
func (g *OpenAIGenerator) chatWithRetry(ctx context.Context, payload chatRequest) (*chatResult, error) {
	var result *chatResult
	err := g.retry.Do(ctx, g.logger, func() error {
		res, err := g.doChat(ctx, payload)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		// Context errors can surface bare from the retry loop's sleep:
		// cancellation means the caller walked away, deadlines are timeouts.
		if errors.Is(err, context.Canceled) {
			return nil, &ProviderError{Kind: KindCanceled, Message: err.Error()}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &ProviderError{Kind: KindTimeout, Message: err.Error()}
		}
		if pe, ok := AsProviderError(err); ok {
			return nil, pe
		}
		return nil, WrapUnexpected(err)
	}
	return result, nil
}

// doChat performs a single bounded attempt against /chat/completions.
func (g *OpenAIGenerator) doChat(ctx context.Context, payload chatRequest) (*chatResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, &ProviderError{Kind: KindInvalidRequest, Message: fmt.Sprintf("encode request: %v", err)}
	}
	endpoint := fmt.Sprintf("%s/chat/completions", g.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, &ProviderError{Kind: KindInvalidRequest, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	if g.organization != "" {
		req.Header.Set("OpenAI-Organization", g.organization)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, providerErrorFromResponse(resp, body)
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &ProviderError{Kind: KindParse, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if len(out.Choices) == 0 {
		return nil, &ProviderError{Kind: KindParse, Message: "no choices in response"}
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return nil, &ProviderError{Kind: KindParse, Message: "empty response content"}
	}
	return &chatResult{
		content:          content,
		model:            out.Model,
		promptTokens:     out.Usage.PromptTokens,
		completionTokens: out.Usage.CompletionTokens,
	}, nil
}

// providerErrorFromResponse classifies a non-200 status and extracts the
// provider message plus any retry-after hint.
func providerErrorFromResponse(resp *http.Response, body []byte) *ProviderError {
	pe := &ProviderError{
		Kind:       classifyStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("status %d", resp.StatusCode),
	}
	var errBody chatErrorResponse
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Error.Message != "" {
		pe.Message = errBody.Error.Message
	}
	if pe.Kind == KindRateLimited {
		pe.RetryAfter = retryAfterHint(resp.Header.Get("Retry-After"), errBody.Error.RetryAfter)
	}
	return pe
}

// retryAfterHint prefers the Retry-After header (seconds) over the body field.
func retryAfterHint(header string, bodySeconds float64) time.Duration {
	if header != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if bodySeconds > 0 {
		return time.Duration(bodySeconds * float64(time.Second))
	}
	return 0
}

// parseModelPayload decodes model output that may be wrapped in a code fence
// or prose around the JSON fragment.
func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

var _ Generator = (*OpenAIGenerator)(nil)
