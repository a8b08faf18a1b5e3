package extractor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	mu    sync.Mutex
	text  string
	err   error
	calls [][]genai.Part
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, parts)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(f.text)}}},
		},
	}, nil
}

func TestGemini_ExtractChallan(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n{\"challan_number\":\"DC-1\",\"lines\":[{\"material_description\":\"Tee\",\"size\":\"S\",\"qty_units_expected\":3}]}\n```"}
	g := newGemini(gen, time.Second, zap.NewNop())

	c, err := g.ExtractChallan(context.Background(), Image{Data: []byte{0xff, 0xd8}, Name: "challan.jpg"})
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].ExpectedQty)

	require.Len(t, gen.calls, 1)
	blob, ok := gen.calls[0][0].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, DefaultMIMEType, blob.MIMEType)
	prompt, ok := gen.calls[0][1].(genai.Text)
	require.True(t, ok)
	assert.Contains(t, string(prompt), "'CHALLAN'")
}

func TestGemini_ExtractSticker(t *testing.T) {
	gen := &fakeGenerator{text: `{"style":"Men's","code_size":"M","mrp":799,"net_qty":1}`}
	g := newGemini(gen, 0, nil)

	s, err := g.ExtractSticker(context.Background(), Image{Data: []byte("png"), MIMEType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "Men's", s.Style)
	assert.Equal(t, "image/png", gen.calls[0][0].(genai.Blob).MIMEType)
}

func TestGemini_TransportFailure(t *testing.T) {
	g := newGemini(&fakeGenerator{err: errors.New("deadline exceeded")}, time.Second, zap.NewNop())

	_, err := g.ExtractSticker(context.Background(), Image{Data: []byte("x")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))

	var exErr *ExtractionError
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, DocumentSticker, exErr.DocType)
	assert.Empty(t, exErr.Raw)
}

func TestGemini_UnparseableResponse(t *testing.T) {
	g := newGemini(&fakeGenerator{text: "Sorry, the image is blurry."}, time.Second, zap.NewNop())

	_, err := g.ExtractChallan(context.Background(), Image{Data: []byte("x")})
	var exErr *ExtractionError
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, "Sorry, the image is blurry.", exErr.Raw)
	assert.Contains(t, err.Error(), "raw response")
}

func TestGemini_EmptyInputs(t *testing.T) {
	gen := &fakeGenerator{text: ""}
	g := newGemini(gen, time.Second, zap.NewNop())

	_, err := g.ExtractChallan(context.Background(), Image{})
	assert.Error(t, err)
	assert.Empty(t, gen.calls)

	_, err = g.ExtractChallan(context.Background(), Image{Data: []byte("x")})
	assert.Error(t, err)
}

func TestNewGemini_RequiresProject(t *testing.T) {
	_, err := NewGemini(context.Background(), Config{Region: "us-central1"}, zap.NewNop())
	assert.Error(t, err)
}

func TestGemini_DownscalesLargePhotos(t *testing.T) {
	gen := &fakeGenerator{text: `{"style":"Tee","code_size":"L"}`}
	g := newGemini(gen, 0, nil)
	g.maxEdge = 50

	_, err := g.ExtractSticker(context.Background(), pngImage(t, 200, 100))
	require.NoError(t, err)

	require.Len(t, gen.calls, 1)
	blob, ok := gen.calls[0][0].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", blob.MIMEType)
}
