package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"challan-reconciler/core/reconcile"

	"cloud.google.com/go/vertexai/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// generator is the part of *genai.GenerativeModel the extractor uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini extracts documents with a Gemini model on Vertex AI.
type Gemini struct {
	model   generator
	client  *genai.Client
	timeout time.Duration
	maxEdge int
	logger  *zap.Logger
}

// NewGemini connects to Vertex AI and configures the model for JSON output.
func NewGemini(ctx context.Context, cfg Config, logger *zap.Logger) (*Gemini, error) {
	if !cfg.Enabled() {
		return nil, errors.New("extractor project id and region must be set")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemInstruction)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	}

	g := newGemini(model, time.Duration(cfg.TimeoutSeconds)*time.Second, logger)
	g.client = client
	g.maxEdge = cfg.MaxImageEdge
	return g, nil
}

func newGemini(model generator, timeout time.Duration, logger *zap.Logger) *Gemini {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gemini{model: model, timeout: timeout, logger: logger}
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// ExtractChallan reads a delivery challan.
func (g *Gemini) ExtractChallan(ctx context.Context, img Image) (*reconcile.Challan, error) {
	raw, err := g.generate(ctx, DocumentChallan, img)
	if err != nil {
		return nil, err
	}
	challan, err := DecodeChallan([]byte(raw))
	if err != nil {
		g.logger.Warn("Unparseable challan response", zap.String("file", img.Name), zap.Error(err))
		return nil, err
	}
	g.logger.Debug("Challan extracted",
		zap.String("file", img.Name),
		zap.Int("lines", len(challan.Lines)))
	return challan, nil
}

// ExtractSticker reads one product sticker.
func (g *Gemini) ExtractSticker(ctx context.Context, img Image) (*reconcile.Sticker, error) {
	raw, err := g.generate(ctx, DocumentSticker, img)
	if err != nil {
		return nil, err
	}
	sticker, err := DecodeSticker([]byte(raw))
	if err != nil {
		g.logger.Warn("Unparseable sticker response", zap.String("file", img.Name), zap.Error(err))
		return nil, err
	}
	return sticker, nil
}

func (g *Gemini) generate(ctx context.Context, t DocumentType, img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", &ExtractionError{DocType: t, Err: errors.New("empty image")}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	img = Downscale(img, g.maxEdge)

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx,
		genai.Blob{MIMEType: img.mimeType(), Data: img.Data},
		genai.Text(BuildPrompt(t)),
	)
	if err != nil {
		g.logger.Error("Extraction call failed",
			zap.String("type", string(t)),
			zap.String("file", img.Name),
			zap.Error(err))
		return "", &ExtractionError{DocType: t, Err: fmt.Errorf("%w: %v", ErrModelUnavailable, err)}
	}

	text := responseText(resp)
	g.logger.Debug("Extraction call finished",
		zap.String("type", string(t)),
		zap.String("file", img.Name),
		zap.Duration("took", time.Since(start)))

	if text == "" {
		return "", &ExtractionError{DocType: t, Err: errors.New("model returned no text")}
	}
	return text, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
