package core

// ProviderConfig describes which upstream is reachable for the current call.
// It is derived per request from the caller's headers plus server environment.
//
// Invariant: when HasPlatformAccess is true, platform credentials take absolute
// precedence and caller-supplied keys are ignored even if present.
type ProviderConfig struct {
	HasPlatformAccess bool
	PlatformKey       string
	KimiKey           string
	DeepSeekKey       string
}
