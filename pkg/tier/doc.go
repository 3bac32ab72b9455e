// Package tier defines the subscription tier catalog: a static, immutable
// table mapping tier names to prices, quota limits, capability flags and
// billing provider price IDs.
//
// The catalog is built once at startup, either from the built-in defaults
// (price IDs supplied via environment variables) or from a YAML file.
// Construction validates that price IDs map to tiers bijectively, so webhook
// processing can rely on ByPriceID resolving to at most one tier.
package tier
