package agent

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"kpi_extractor/pkg/core/llm"

	"gopkg.in/yaml.v2"
)

type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

type AgentConfig struct {
	Provider    string                 `yaml:"provider"` // Optional override
	Model       string                 `yaml:"model"`
	Description string                 `yaml:"description"`
	Options     map[string]interface{} `yaml:"options"`
}

// LoadConfig reads a models.yaml file. A missing file yields an empty config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider
	log       *slog.Logger
}

func NewManager(config Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		config: config,
		log:    logger,
		providers: map[string]llm.Provider{
			llm.NameOpenAI:       &llm.OpenAIProvider{Logger: logger},
			llm.NameGemini:       &llm.GeminiProvider{},
			llm.NameGeminiLegacy: &llm.GeminiLegacyProvider{},
			llm.NameDeepSeek:     &llm.DeepSeekProvider{Logger: logger},
			llm.NameQwen:         &llm.QwenProvider{Logger: logger},
		},
	}
}

// RegisterProvider adds or replaces a provider under name.
func (m *Manager) RegisterProvider(name string, p llm.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[name] = p
}

func (m *Manager) GetProvider(agentType string) llm.Provider {
	_, p := m.resolve(agentType)
	return p
}

// ProviderFor names the provider agentType currently resolves to.
func (m *Manager) ProviderFor(agentType string) string {
	name, _ := m.resolve(agentType)
	return name
}

// Agents lists the configured agent names in sorted order.
func (m *Manager) Agents() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.config.Agents))
	for k := range m.config.Agents {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// resolve picks the agent override, then the active provider, then openai.
func (m *Manager) resolve(agentType string) (string, llm.Provider) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return agentConfig.Provider, p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return m.config.ActiveProvider, p
	}
	return llm.NameOpenAI, m.providers[llm.NameOpenAI]
}

// GetProviderByName retrieves a provider instance by its specific name (e.g. "deepseek", "gemini")
func (m *Manager) GetProviderByName(name string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.providers[name]
}

// ExecutePrompt handles instruction adaptation before sending to the model.
// Per-agent model and options from the config are applied under the caller's options.
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	name, provider := m.resolve(agentType)
	if provider == nil {
		return "", fmt.Errorf("no provider available for agent %s", agentType)
	}

	merged := make(map[string]interface{}, len(options)+2)
	m.mu.RLock()
	if ac, ok := m.config.Agents[agentType]; ok {
		for k, v := range ac.Options {
			merged[k] = v
		}
		if ac.Model != "" {
			merged[llm.OptModel] = ac.Model
		}
	}
	m.mu.RUnlock()
	for k, v := range options {
		merged[k] = v
	}

	m.log.Debug("agent.execute", "agent", agentType, "provider", name)

	adaptedSystemPrompt := provider.AdaptInstructions(rawSystemPrompt)
	return provider.GenerateResponse(ctx, rawPrompt, adaptedSystemPrompt, merged)
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	m.log.Info("agent.provider_switched", "provider", newProvider)
	return nil
}

func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}

// Available lists registered provider names in sorted order.
func (m *Manager) Available() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for k := range m.providers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
