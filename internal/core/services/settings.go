package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
	"github.com/pilah-labs/pilah/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyCameraBackend   = "camera.backend"
	keyCameraStreamURL = "camera.stream_url"
	keyCameraWidth     = "camera.width"
	keyCameraHeight    = "camera.height"
	keyPreAlpha        = "preprocess.alpha"
	keyPreBeta         = "preprocess.beta"
	keyDetEndpoint     = "detector.endpoint"
	keyDetModel        = "detector.model"
	keyDetConfidence   = "detector.confidence"
	keyDetSelection    = "detector.selection"
	keyDetClasses      = "detector.classes"
	keyDetTimeout      = "detector.timeout"
	keySerialBackend   = "serial.backend"
	keySerialPort      = "serial.port"
	keySerialBaud      = "serial.baud"
	keyDisplayBackend  = "display.backend"
	keyDisplayAddr     = "display.addr"
	keyDisplayTitle    = "display.title"
	keyStoreDriver     = "store.driver"
	keyStoreDSN        = "store.dsn"
	keyStoreDataDir    = "store.data_dir"
	keyIndexDir        = "index.dir"
	keyIndexMode       = "index.mode"
	keyIndexTopK       = "index.top_k"
	keyIndexMinSim     = "index.min_similarity"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMRPM          = "llm.requests_per_minute"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyServerAddr      = "server.addr"
	keyServerWatch     = "server.watch"
)

// Environment overrides.
//
//nolint:gosec // G101: These are environment variable names.
const (
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvStreamURL       = "PILAH_STREAM_URL"
	EnvSerialPort      = "PILAH_SERIAL_PORT"
	EnvDatabaseDSN     = "PILAH_DATABASE_DSN"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindList
	kindDuration
)

var settingKeys = []struct {
	key  string
	kind valueKind
}{
	{keyCameraBackend, kindString},
	{keyCameraStreamURL, kindString},
	{keyCameraWidth, kindInt},
	{keyCameraHeight, kindInt},
	{keyPreAlpha, kindFloat},
	{keyPreBeta, kindFloat},
	{keyDetEndpoint, kindString},
	{keyDetModel, kindString},
	{keyDetConfidence, kindFloat},
	{keyDetSelection, kindString},
	{keyDetClasses, kindList},
	{keyDetTimeout, kindDuration},
	{keySerialBackend, kindString},
	{keySerialPort, kindString},
	{keySerialBaud, kindInt},
	{keyDisplayBackend, kindString},
	{keyDisplayAddr, kindString},
	{keyDisplayTitle, kindString},
	{keyStoreDriver, kindString},
	{keyStoreDSN, kindString},
	{keyStoreDataDir, kindString},
	{keyIndexDir, kindString},
	{keyIndexMode, kindString},
	{keyIndexTopK, kindInt},
	{keyIndexMinSim, kindFloat},
	{keyLLMProvider, kindString},
	{keyLLMModel, kindString},
	{keyLLMBaseURL, kindString},
	{keyLLMAPIKey, kindString},
	{keyLLMRPM, kindInt},
	{keyEmbedProvider, kindString},
	{keyEmbedModel, kindString},
	{keyEmbedBaseURL, kindString},
	{keyEmbedAPIKey, kindString},
	{keyServerAddr, kindString},
	{keyServerWatch, kindBool},
}

// SettingsService maps the config store onto domain.Settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	baseDir     string
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// baseDir is where data and index directories default to; empty disables that.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator, baseDir string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		baseDir:     baseDir,
		lookupEnv:   os.LookupEnv,
	}
}

// WithEnv replaces the environment lookup. Used by tests.
func (s *SettingsService) WithEnv(lookup func(string) (string, bool)) *SettingsService {
	s.lookupEnv = lookup
	return s
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	d := domain.DefaultSettings()
	if s.baseDir != "" {
		d.Store.DataDir = filepath.Join(s.baseDir, "data")
		d.Index.Dir = filepath.Join(s.baseDir, "index")
	}
	return d
}

// Get retrieves the effective settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := s.GetDefaults()

	settings := &domain.Settings{
		Camera: domain.CameraSettings{
			Backend:   s.getString(keyCameraBackend, d.Camera.Backend),
			StreamURL: s.getString(keyCameraStreamURL, d.Camera.StreamURL),
			Width:     s.getInt(keyCameraWidth, d.Camera.Width),
			Height:    s.getInt(keyCameraHeight, d.Camera.Height),
		},
		Preprocess: domain.PreprocessSettings{
			Alpha: s.getFloat(keyPreAlpha, d.Preprocess.Alpha),
			Beta:  s.getFloat(keyPreBeta, d.Preprocess.Beta),
		},
		Detector: domain.DetectorSettings{
			Endpoint:   s.getString(keyDetEndpoint, d.Detector.Endpoint),
			Model:      s.getString(keyDetModel, d.Detector.Model),
			Confidence: float32(s.getFloat(keyDetConfidence, float64(d.Detector.Confidence))),
			Selection:  domain.SelectionPolicy(s.getString(keyDetSelection, string(d.Detector.Selection))),
			Classes:    s.getList(keyDetClasses, d.Detector.Classes),
			Timeout:    s.getDuration(keyDetTimeout, d.Detector.Timeout),
		},
		Serial: domain.SerialSettings{
			Backend: s.getString(keySerialBackend, d.Serial.Backend),
			Port:    s.getString(keySerialPort, d.Serial.Port),
			Baud:    s.getInt(keySerialBaud, d.Serial.Baud),
		},
		Display: domain.DisplaySettings{
			Backend: s.getString(keyDisplayBackend, d.Display.Backend),
			Addr:    s.getString(keyDisplayAddr, d.Display.Addr),
			Title:   s.getString(keyDisplayTitle, d.Display.Title),
		},
		Store: domain.StoreSettings{
			Driver:  s.getString(keyStoreDriver, d.Store.Driver),
			DSN:     s.configStore.GetString(keyStoreDSN),
			DataDir: s.getString(keyStoreDataDir, d.Store.DataDir),
		},
		Index: domain.IndexSettings{
			Dir:           s.getString(keyIndexDir, d.Index.Dir),
			Mode:          domain.IndexMode(s.getString(keyIndexMode, string(d.Index.Mode))),
			TopK:          s.getInt(keyIndexTopK, d.Index.TopK),
			MinSimilarity: s.getFloat(keyIndexMinSim, d.Index.MinSimilarity),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:             s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerMinute: s.getInt(keyLLMRPM, d.LLM.RequestsPerMinute),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Server: domain.ServerSettings{
			Addr:  s.getString(keyServerAddr, d.Server.Addr),
			Watch: s.getBool(keyServerWatch, d.Server.Watch),
		},
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv overlays environment variables. API keys from the environment
// only fill keys the config file leaves empty.
func (s *SettingsService) applyEnv(settings *domain.Settings) {
	if v, ok := s.lookupEnv(EnvStreamURL); ok && v != "" {
		settings.Camera.StreamURL = v
	}
	if v, ok := s.lookupEnv(EnvSerialPort); ok && v != "" {
		settings.Serial.Port = v
	}
	if v, ok := s.lookupEnv(EnvDatabaseDSN); ok && v != "" {
		settings.Store.DSN = v
	}

	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envKeyFor(settings.LLM.Provider)
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envKeyFor(settings.Embedding.Provider)
	}
}

func (s *SettingsService) envKeyFor(p domain.AIProvider) string {
	var name string
	switch p {
	case domain.AIProviderGemini:
		name = EnvGeminiAPIKey
	case domain.AIProviderOpenAI:
		name = EnvOpenAIAPIKey
	case domain.AIProviderAnthropic:
		name = EnvAnthropicAPIKey
	default:
		return ""
	}
	v, _ := s.lookupEnv(name)
	return v
}

// Keys lists every settable key.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// Set parses raw according to the key's type and persists it.
func (s *SettingsService) Set(key, raw string) error {
	kind, ok := kindOf(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	value, err := parseValue(kind, raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	if err := s.checkValue(key, value); err != nil {
		return err
	}

	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func kindOf(key string) (valueKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return 0, false
}

func parseValue(kind valueKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		return b, nil
	case kindDuration:
		if _, err := time.ParseDuration(raw); err != nil {
			return nil, err
		}
		return raw, nil
	case kindList:
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	default:
		return raw, nil
	}
}

// checkValue rejects values of enumerated keys before they are persisted.
func (s *SettingsService) checkValue(key string, value any) error {
	str, _ := value.(string)
	switch key {
	case keyDetSelection:
		if !domain.SelectionPolicy(str).IsValid() {
			return fmt.Errorf("%w: %s must be last or confidence", domain.ErrInvalidInput, key)
		}
	case keyIndexMode:
		if !domain.IndexMode(str).IsValid() {
			return fmt.Errorf("%w: %s must be rebuild or incremental", domain.ErrInvalidInput, key)
		}
	case keyLLMProvider, keyEmbedProvider:
		p := domain.AIProvider(str)
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, str)
		}
		if key == keyEmbedProvider && !p.SupportsEmbeddings() {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, p)
		}
	case keyDetConfidence:
		if f, _ := value.(float64); f < 0 || f > 1 {
			return fmt.Errorf("%w: %s must be within [0,1]", domain.ErrInvalidInput, key)
		}
	}
	return nil
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	if val := s.configStore.GetStringSlice(key); len(val) > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
