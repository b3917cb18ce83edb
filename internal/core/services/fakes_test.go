package services

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
)

// --- Detection pipeline fakes ---

type frameResult struct {
	frame domain.Frame
	err   error
}

// fakeFrameSource replays results in order, then fails every read.
type fakeFrameSource struct {
	mu      sync.Mutex
	results []frameResult
	closed  bool
}

func (f *fakeFrameSource) Open(_ context.Context) error { return nil }

func (f *fakeFrameSource) Read(_ context.Context) (domain.Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.results) == 0 {
		return domain.Frame{}, errors.New("stream ended")
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r.frame, r.err
}

func (f *fakeFrameSource) Close() error {
	f.closed = true
	return nil
}

type fakeDetector struct {
	dets    []domain.Detection
	err     error
	names   []string
	lastImg image.Image
	lastMin float32
	calls   int
}

func (f *fakeDetector) Detect(_ context.Context, img image.Image, minConfidence float32) ([]domain.Detection, error) {
	f.calls++
	f.lastImg = img
	f.lastMin = minConfidence
	return f.dets, f.err
}

func (f *fakeDetector) ClassNames() []string { return f.names }
func (f *fakeDetector) Ping(_ context.Context) error { return nil }
func (f *fakeDetector) Close() error { return nil }

type fakeActuator struct {
	sent []domain.OutputCode
	err  error
}

func (f *fakeActuator) Send(code domain.OutputCode) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, code)
	return nil
}

func (f *fakeActuator) Close() error { return nil }

// fakeDisplay reports quit once shown quitAfter frames. Zero never quits.
type fakeDisplay struct {
	shown     int
	quitAfter int
	err       error
}

func (f *fakeDisplay) Show(_ context.Context, _ image.Image, _ []domain.Detection, _ domain.OutputCode) (bool, error) {
	f.shown++
	return f.quitAfter > 0 && f.shown >= f.quitAfter, f.err
}

func (f *fakeDisplay) Close() error { return nil }

// --- Chat pipeline fakes ---

// fakeEmbedding maps each text to a vector via vectors, or to a unit vector
// of dims (default 2) when unknown.
type fakeEmbedding struct {
	model     string
	dims      int
	vectors   map[string][]float32
	err       error
	batchErr  error
	batchSize []int
}

func (f *fakeEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	v := make([]float32, f.Dimensions())
	v[0] = 1
	return v, nil
}

func (f *fakeEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	f.batchSize = append(f.batchSize, len(texts))
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedding) Dimensions() int {
	if f.dims == 0 {
		return 2
	}
	return f.dims
}

func (f *fakeEmbedding) ModelName() string {
	if f.model == "" {
		return "fake-embed"
	}
	return f.model
}
func (f *fakeEmbedding) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedding) Close() error { return nil }

type fakeLLM struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeLLM) ModelName() string { return "fake-llm" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error { return nil }

type fakePromptStore struct {
	prompts map[string]string
	err     error
}

func (f *fakePromptStore) Load(name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.prompts[name], nil
}

func (f *fakePromptStore) Reload() {}

// failingVectorIndex wraps errors around every call.
type failingVectorIndex struct {
	driven.VectorIndex
	err error
}

func (f *failingVectorIndex) Reset(_ context.Context) error { return f.err }

func (f *failingVectorIndex) Search(_ context.Context, _ []float32, _ int) ([]driven.VectorHit, error) {
	return nil, f.err
}
