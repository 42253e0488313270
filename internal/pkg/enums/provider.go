package enums

import "strings"

// Provider identifies a bookmaker by its stable integer ID.
type Provider int

const (
	ProviderUnknown     Provider = 0
	ProviderFonbet      Provider = 1
	ProviderPinnacle    Provider = 2
	ProviderMarathonbet Provider = 3
	ProviderOlimp       Provider = 4
	ProviderZenit       Provider = 5
	ProviderLeon        Provider = 6
	ProviderXbet        Provider = 7
	ProviderBetcity     Provider = 8
	ProviderBaltbet     Provider = 9
	ProviderGGBet       Provider = 10
)

var providerNames = map[Provider]string{
	ProviderFonbet:      "fonbet",
	ProviderPinnacle:    "pinnacle",
	ProviderMarathonbet: "marathonbet",
	ProviderOlimp:       "olimp",
	ProviderZenit:       "zenit",
	ProviderLeon:        "leon",
	ProviderXbet:        "1xbet",
	ProviderBetcity:     "betcity",
	ProviderBaltbet:     "baltbet",
	ProviderGGBet:       "ggbet",
}

// Name returns the lowercase bookmaker name used in config, logs and cache keys.
func (p Provider) Name() string {
	if n, ok := providerNames[p]; ok {
		return n
	}
	return "unknown"
}

// IsValid checks if the provider is known.
func (p Provider) IsValid() bool {
	_, ok := providerNames[p]
	return ok
}

// ParseProvider resolves a bookmaker name from config to its Provider ID.
func ParseProvider(name string) (Provider, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for p, pn := range providerNames {
		if pn == n {
			return p, true
		}
	}
	return ProviderUnknown, false
}
