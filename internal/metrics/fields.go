package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrProvider = "provider"
	AttrCache    = "cache"
	AttrOutcome  = "outcome"
)
