package routing

import (
	"sort"

	"github.com/ai-gateway/chat-relay/internal/provider"
)

// Router maps models to providers.
type Router struct {
	providers map[string]provider.Provider
	defaultP  provider.Provider
}

func New() *Router {
	return &Router{providers: make(map[string]provider.Provider)}
}

// Register associates a model with a provider implementation. The first
// registered provider becomes the default.
func (r *Router) Register(model string, p provider.Provider) {
	r.providers[model] = p
	if r.defaultP == nil {
		r.defaultP = p
	}
}

// ProviderFor returns the provider for a model or the default provider.
func (r *Router) ProviderFor(model string) provider.Provider {
	if p, ok := r.providers[model]; ok {
		return p
	}
	return r.defaultP
}

// Models lists registered model names in sorted order.
func (r *Router) Models() []string {
	models := make([]string, 0, len(r.providers))
	for m := range r.providers {
		models = append(models, m)
	}
	sort.Strings(models)
	return models
}
