package providers

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/akazantsev/surebet/internal/pkg/config"
)

// Factory builds an Adapter from one provider's config entry.
type Factory func(cfg config.ProviderConfig) (Adapter, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes an adapter type available under the given name
// (the `type` field of a provider config entry).
func Register(name string, f Factory) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		panic("providers: empty name in Register")
	}
	if f == nil {
		panic("providers: nil factory in Register for " + n)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[n]; exists {
		panic("providers: duplicate registration for " + n)
	}
	registry[n] = f
}

// FactoryByName returns the factory for an adapter type.
func FactoryByName(name string) (Factory, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[n]
	return f, ok
}

// AvailableNames lists registered adapter types, sorted.
func AvailableNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// BuildRoster constructs one adapter per provider config entry. Entries
// without their own timeout inherit fetchTimeout.
func BuildRoster(cfgs []config.ProviderConfig, fetchTimeout time.Duration) ([]Adapter, error) {
	roster := make([]Adapter, 0, len(cfgs))
	for _, pc := range cfgs {
		if pc.Timeout <= 0 {
			pc.Timeout = fetchTimeout
		}
		f, ok := FactoryByName(pc.Type)
		if !ok {
			return nil, fmt.Errorf("unknown adapter type %q for provider %q (available: %v)",
				pc.Type, pc.Name, AvailableNames())
		}
		a, err := f(pc)
		if err != nil {
			return nil, fmt.Errorf("failed to build adapter for provider %q: %w", pc.Name, err)
		}
		roster = append(roster, a)
	}
	return roster, nil
}
