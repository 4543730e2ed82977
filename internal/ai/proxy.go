package ai

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modfin/bellman"
	"github.com/modfin/bellman/models/gen"
	"github.com/modfin/bellman/services/anthropic"
	"github.com/modfin/bellman/services/openai"
	"github.com/modfin/bellman/services/vertexai"
)

type Credentials struct {
	BellmanURL     string `cli:"bellman-url"`
	BellmanKeyName string `cli:"bellman-key-name"`
	BellmanKey     string `cli:"bellman-key"`

	VertexAICredential string `cli:"vertexai-credential"`
	VertexAIProject    string `cli:"vertexai-project"`
	VertexAIRegion     string `cli:"vertexai-region"`

	OpenAIKey    string `cli:"openai-key"`
	AnthropicKey string `cli:"anthropic-key"`
}

func New(credentials Credentials, logger *slog.Logger) (*Proxy, error) {
	proxy := newProxy()

	if credentials.AnthropicKey != "" {
		client := anthropic.New(credentials.AnthropicKey)

		proxy.RegisterGen(client)

		logger.Debug("adding llm provider", "provider", client.Provider())

	}
	if credentials.OpenAIKey != "" {
		client := openai.New(credentials.OpenAIKey)

		proxy.RegisterGen(client)

		logger.Debug("adding llm provider", "provider", client.Provider())

	}

	if credentials.VertexAIRegion != "" && credentials.VertexAIProject != "" {
		client, err := vertexai.New(vertexai.GoogleConfig{
			Project:    credentials.VertexAIProject,
			Region:     credentials.VertexAIRegion,
			Credential: credentials.VertexAICredential,
		})
		if err != nil {
			return nil, err
		}

		proxy.RegisterGen(client)
		logger.Debug("adding llm provider", "provider", client.Provider())

	}

	if credentials.BellmanKey != "" && credentials.BellmanURL != "" {
		client := bellman.New(credentials.BellmanURL, bellman.Key{
			Name:  credentials.BellmanKeyName,
			Token: credentials.BellmanKey,
		})
		proxy.RegisterGen(client)
		logger.Debug("adding llm provider", "provider", client.Provider())
	}

	return proxy, nil

}

var ErrNoModelProvided = errors.New("no model was provided")
var ErrClientNotFound = errors.New("client not found")

// Proxy hands out generators keyed by provider name. Registration happens
// once at startup from whatever credentials were supplied.
type Proxy struct {
	gens map[string]gen.Gen
}

func newProxy() *Proxy {
	p := &Proxy{
		gens: map[string]gen.Gen{},
	}

	return p
}

func (p *Proxy) RegisterGen(llm gen.Gen) {
	p.gens[llm.Provider()] = llm
}

// HasGen reports whether a client is registered for the provider.
func (p *Proxy) HasGen(provider string) bool {
	_, ok := p.gens[provider]
	return ok
}

func (p *Proxy) Gen(mod gen.Model) (*gen.Generator, error) {
	client, ok := p.gens[mod.Provider]
	if !ok {
		return nil, fmt.Errorf("no client registered for provider '%s', %w", mod.Provider, ErrClientNotFound)
	}

	if client == nil {
		return nil, ErrClientNotFound
	}

	if mod.Provider == bellman.Provider {
		provider, name, found := strings.Cut(mod.Name, "/")

		if !found {
			return nil, fmt.Errorf("invalid bellman model name '%s', %w", mod.Name, ErrNoModelProvided)
		}
		mod.Provider = provider
		mod.Name = name
	}

	if mod.Name == "" {
		return nil, fmt.Errorf("mod.Name is not set, %w", ErrNoModelProvided)
	}

	return client.Generator(gen.WithModel(mod)), nil
}

// ParseModel splits a "Provider/model-name" string into a gen.Model.
func ParseModel(s string) gen.Model {
	provider, name, _ := strings.Cut(s, "/")
	return gen.Model{
		Provider: provider,
		Name:     name,
	}
}
