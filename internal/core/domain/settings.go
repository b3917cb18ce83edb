package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is the Google Gemini hosted API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p != AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key for hosted providers.
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key for hosted providers.
	APIKey string

	// RequestsPerMinute caps hosted API calls. Zero disables the limit.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// CameraSettings configures the frame source.
type CameraSettings struct {
	// Backend is "mjpeg" (pure Go) or "opencv".
	Backend string

	// StreamURL is the MJPEG stream address.
	StreamURL string

	// Width and Height are requested from capture backends that support it.
	Width  int
	Height int
}

// PreprocessSettings holds the brightness/contrast transform constants.
type PreprocessSettings struct {
	Alpha float64
	Beta  float64
}

// DetectorSettings configures the object detector.
type DetectorSettings struct {
	// Endpoint is the detection sidecar base URL.
	Endpoint string

	// Model is the weights file the sidecar should use.
	Model string

	// Confidence is the minimum detection confidence.
	Confidence float32

	// Selection decides which detection drives the output code.
	Selection SelectionPolicy

	// Classes names class indices for annotation labels.
	Classes []string

	// Timeout bounds a single detection request.
	Timeout time.Duration
}

// SerialSettings configures the actuator link.
type SerialSettings struct {
	// Backend is "serial" or "log" (dry run).
	Backend string

	// Port is the device name, e.g. COM3 or /dev/ttyUSB0.
	Port string

	// Baud is the line speed.
	Baud int
}

// DisplaySettings configures the annotated preview.
type DisplaySettings struct {
	// Backend is "preview", "window" or "none".
	Backend string

	// Addr is the listen address for the preview server.
	Addr string

	// Title is the window title.
	Title string
}

// StoreSettings configures the seed store.
type StoreSettings struct {
	// Driver is "sqlite", "postgres" or "memory".
	Driver string

	// DSN is the postgres connection string.
	DSN string

	// DataDir holds the sqlite database.
	DataDir string
}

// IndexSettings configures the vector index and retrieval.
type IndexSettings struct {
	// Dir is the persisted index directory.
	Dir string

	// Mode is rebuild or incremental.
	Mode IndexMode

	// TopK is the number of documents retrieved per question.
	TopK int

	// MinSimilarity drops hits scoring below it. Zero disables the threshold.
	MinSimilarity float64
}

// ServerSettings configures the web UI.
type ServerSettings struct {
	Addr  string
	Watch bool
}

// Settings is the complete application configuration.
type Settings struct {
	Camera     CameraSettings
	Preprocess PreprocessSettings
	Detector   DetectorSettings
	Serial     SerialSettings
	Display    DisplaySettings
	Store      StoreSettings
	Index      IndexSettings
	LLM        LLMSettings
	Embedding  EmbeddingSettings
	Server     ServerSettings
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Camera: CameraSettings{
			Backend:   "mjpeg",
			StreamURL: "http://192.168.4.102:81/stream",
			Width:     640,
			Height:    480,
		},
		Preprocess: PreprocessSettings{
			Alpha: 1.2,
			Beta:  30,
		},
		Detector: DetectorSettings{
			Endpoint:   "http://localhost:8000",
			Model:      "pendeteksisampah.pt",
			Confidence: 0.3,
			Selection:  SelectLast,
			Classes:    []string{"organik", "anorganik", "B3"},
			Timeout:    15 * time.Second,
		},
		Serial: SerialSettings{
			Backend: "serial",
			Port:    "COM3",
			Baud:    9600,
		},
		Display: DisplaySettings{
			Backend: "preview",
			Addr:    ":8090",
			Title:   "Deteksi Sampah",
		},
		Store: StoreSettings{
			Driver: "sqlite",
		},
		Index: IndexSettings{
			Mode: IndexModeRebuild,
			TopK: 5,
		},
		LLM: LLMSettings{
			Provider:          AIProviderGemini,
			Model:             "gemini-1.5-flash",
			RequestsPerMinute: 60,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderGemini,
			Model:    "text-embedding-004",
		},
		Server: ServerSettings{
			Addr: ":8080",
		},
	}
}

// Validate checks settings that would otherwise fail deep inside a pipeline.
func (s Settings) Validate() error {
	if s.Detector.Confidence < 0 || s.Detector.Confidence > 1 {
		return fmt.Errorf("%w: detector.confidence must be within [0,1], got %v",
			ErrInvalidInput, s.Detector.Confidence)
	}
	if !s.Detector.Selection.IsValid() {
		return fmt.Errorf("%w: detector.selection %q", ErrInvalidInput, s.Detector.Selection)
	}
	if s.Serial.Baud <= 0 {
		return fmt.Errorf("%w: serial.baud must be positive", ErrInvalidInput)
	}
	if !s.Index.Mode.IsValid() {
		return fmt.Errorf("%w: index.mode %q", ErrInvalidInput, s.Index.Mode)
	}
	if s.Index.TopK <= 0 {
		return fmt.Errorf("%w: index.top_k must be positive", ErrInvalidInput)
	}
	if s.Index.Dir != "" && s.Store.DataDir != "" && within(s.Store.DataDir, s.Index.Dir) {
		return fmt.Errorf("%w: index.dir %q must not contain store.data_dir %q",
			ErrInvalidInput, s.Index.Dir, s.Store.DataDir)
	}
	return nil
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// EmbeddingDimensions returns known embedding dimensions per model.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"text-embedding-004":     768,
		"embedding-001":          768,
		"nomic-embed-text":       768,
		"all-minilm":             384,
		"mxbai-embed-large":      1024,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
	}
}
