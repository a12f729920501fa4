package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/1Welcorn/Estilista-Virtual/internal/infra"
)

// Classified failures recognized from the remote error message. The API does
// not expose stable machine-readable codes for these, so matching mirrors the
// strings the service is known to return.
var (
	ErrInvalidAPIKey  = errors.New("genai: api key not valid")
	ErrQuotaExhausted = errors.New("genai: quota exhausted")
	ErrNoImage        = errors.New("genai: no image in response")
	ErrNoAPIKey       = errors.New("genai: api key not configured")
)

// KeySource resolves the Gemini API key at call time so a key stored after
// startup is picked up without restarting.
type KeySource interface {
	GeminiAPIKey(ctx context.Context) (string, error)
}

// StaticKey is a KeySource for a fixed key from the environment.
type StaticKey string

func (s StaticKey) GeminiAPIKey(context.Context) (string, error) { return string(s), nil }

// Options controls how the Gemini client is configured.
type Options struct {
	Keys       KeySource
	BaseURL    string
	ImageModel string
	TextModel  string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a thin facade over the Gemini generateContent REST endpoint.
// It performs exactly one outbound call per operation: no caching, no
// retries, no rate limiting. Failures are terminal for the attempt.
type Client struct {
	keys       KeySource
	baseURL    string
	imageModel string
	textModel  string
	httpClient *http.Client
	logger     *infra.Logger
}

// Part is one element of a multimodal request: either text or inline image data.
type Part struct {
	Text   string
	Inline *Blob
}

// Blob carries raw image bytes plus their MIME type.
type Blob struct {
	MIME string
	Data []byte
}

// Text builds a text part.
func Text(s string) Part { return Part{Text: s} }

// Image builds an inline image part.
func Image(mime string, data []byte) Part { return Part{Inline: &Blob{MIME: mime, Data: data}} }

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Status  string `json:"status,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with a generous timeout will be created.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image"
	}
	textModel := opts.TextModel
	if textModel == "" {
		textModel = "gemini-2.5-flash"
	}

	keys := opts.Keys
	if keys == nil {
		keys = StaticKey("")
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		keys:       keys,
		baseURL:    baseURL,
		imageModel: imageModel,
		textModel:  textModel,
		httpClient: client,
		logger:     logger,
	}
}

// GenerateImage sends the parts to the image model and returns the first
// inline image found in the response. A response without an image part fails
// with ErrNoImage.
func (c *Client) GenerateImage(ctx context.Context, parts []Part) (*Blob, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: encodeParts(parts)}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, c.imageModel, payload, &response); err != nil {
		return nil, err
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("decode inline data: %w", err)
			}
			mime := part.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			c.logger.Debug().Str("model", c.imageModel).Int("bytes", len(data)).Msg("genai: image generated")
			return &Blob{MIME: mime, Data: data}, nil
		}
	}

	return nil, ErrNoImage
}

// GenerateText sends the parts to the text model and returns the concatenated
// text of the first candidate, trimmed. A textless response yields "".
func (c *Client) GenerateText(ctx context.Context, parts []Part) (string, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: encodeParts(parts)}},
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, c.textModel, payload, &response); err != nil {
		return "", err
	}

	var b strings.Builder
	if len(response.Candidates) > 0 {
		for _, part := range response.Candidates[0].Content.Parts {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func encodeParts(parts []Part) []geminiPart {
	out := make([]geminiPart, 0, len(parts))
	for _, p := range parts {
		if p.Inline != nil {
			out = append(out, geminiPart{InlineData: &geminiInlineData{
				MimeType: p.Inline.MIME,
				Data:     base64.StdEncoding.EncodeToString(p.Inline.Data),
			}})
			continue
		}
		out = append(out, geminiPart{Text: p.Text})
	}
	return out
}

func (c *Client) invoke(ctx context.Context, model string, payload any, out any) error {
	key, err := c.keys.GeminiAPIKey(ctx)
	if err != nil {
		return fmt.Errorf("resolve api key: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return ErrNoAPIKey
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", key)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	var apiErr geminiErrorResponse
	message := ""
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
		message = apiErr.Error.Message
		if message == "" {
			message = apiErr.Error.Status
		}
	}
	if classified := classify(resp.StatusCode, message); classified != nil {
		c.logger.Warn().Int("status", resp.StatusCode).Str("message", message).Msg("genai: classified failure")
		return fmt.Errorf("%w: %s", classified, message)
	}
	if message != "" {
		return fmt.Errorf("gemini status %d: %s", resp.StatusCode, message)
	}
	return fmt.Errorf("gemini status %d", resp.StatusCode)
}

func classify(status int, message string) error {
	switch {
	case strings.Contains(message, "API key not valid"),
		strings.Contains(message, "API_KEY_INVALID"),
		strings.Contains(message, "Requested entity was not found"):
		return ErrInvalidAPIKey
	case status == http.StatusTooManyRequests,
		strings.Contains(message, "RESOURCE_EXHAUSTED"),
		strings.Contains(message, "429"):
		return ErrQuotaExhausted
	}
	return nil
}
