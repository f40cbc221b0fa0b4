package config

const (
	envProvider       = "TOURNAMENT_PROVIDER"
	envTournamentFile = "TOURNAMENT_FILE"
	envSimulations    = "SIMULATIONS"
	envLanguage       = "REPORT_LANGUAGE"

	// ProviderFixture serves the built-in tournament definition.
	ProviderFixture = "fixture"
	// ProviderFile reads the tournament definition from TOURNAMENT_FILE.
	ProviderFile = "file"

	dotenvFile = ".env"
)
