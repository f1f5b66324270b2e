package universe

import (
	"context"
	"sort"
	"time"

	"MoverScan/pkg/cache"
	"MoverScan/pkg/logger"
)

const (
	// DefaultName is used when no universe is requested or the requested
	// name is unknown.
	DefaultName = "comprehensive"

	compositeTTL = 24 * time.Hour
)

var namedLists = map[string][]string{
	"sp500":         sp500Top100,
	"nasdaq":        nasdaq100,
	"retail":        retailFavorites,
	"etfs":          etfs,
	"ipos":          recentIPOs,
	"short":         highShortInterest,
	"chinese":       chineseADRs,
	"biotech":       biotechMovers,
	"semiconductor": semiconductor,
	"ev":            evAuto,
	"crypto":        cryptoExposed,
	"defense":       defense,
	"cloud":         cloudSaaS,
	"fintech":       fintech,
	"gaming":        gaming,
	"ecommerce":     ecommerce,
	"energy":        energyExtended,
	"smallcap":      russell2000Liquid,
}

// compositeSources maps composite universes to their member lists.
var compositeSources = map[string][][]string{
	"sp500_extended": {sp500Top100, sp500Next100},
	DefaultName: {
		sp500Top100, sp500Next100, nasdaq100, etfs, retailFavorites,
		recentIPOs, highShortInterest, semiconductor, biotechMovers,
		cloudSaaS, fintech, chineseADRs,
	},
	"all": {
		sp500Top100, sp500Next100, nasdaq100, etfs, retailFavorites,
		recentIPOs, highShortInterest, chineseADRs, biotechMovers,
		semiconductor, evAuto, cryptoExposed, defense, cloudSaaS,
		fintech, gaming, ecommerce, energyExtended, russell2000Liquid,
	},
}

// Provider serves curated scan universes. Composites are deduplicated,
// sorted for stable ordering and cached, since membership changes on the
// order of weeks.
type Provider struct {
	store cache.Service
	log   *logger.Logger
}

// NewProvider creates a universe provider. store may be nil, in which
// case composites are recomputed on every call.
func NewProvider(store cache.Service, log *logger.Logger) *Provider {
	return &Provider{store: store, log: log}
}

// Names lists every known universe, sorted.
func (p *Provider) Names() []string {
	names := make([]string, 0, len(namedLists)+len(compositeSources))
	for name := range namedLists {
		names = append(names, name)
	}
	for name := range compositeSources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetUniverse resolves a universe name to its symbols, with delisted
// tickers removed. Unknown names fall back to the comprehensive
// composite with a warning.
func (p *Provider) GetUniverse(ctx context.Context, name string) ([]string, error) {
	if name == "" {
		name = DefaultName
	}

	if list, ok := namedLists[name]; ok {
		return filterActive(list), nil
	}

	sources, ok := compositeSources[name]
	if !ok {
		if p.log != nil {
			p.log.Warn("unknown universe, using default",
				logger.String("requested", name),
				logger.String("default", DefaultName))
		}
		name = DefaultName
		sources = compositeSources[name]
	}

	symbols, _, err := cache.Fetch(ctx, p.store, p.cacheKey(name), compositeTTL,
		func(context.Context) ([]string, error) {
			return composite(sources), nil
		})
	if err != nil {
		return composite(sources), nil
	}
	return symbols, nil
}

func (p *Provider) cacheKey(name string) string {
	key, err := cache.Key("moverscan", "universe", name)
	if err != nil {
		return ""
	}
	return key
}

// composite merges the source lists, drops duplicates and delisted
// symbols, and sorts for a stable order.
func composite(sources [][]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range sources {
		for _, sym := range list {
			if _, dup := seen[sym]; dup {
				continue
			}
			if _, dead := delisted[sym]; dead {
				continue
			}
			seen[sym] = struct{}{}
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

func filterActive(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, sym := range list {
		if _, dead := delisted[sym]; dead {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}
