package redis

const (
	// KeyPrefix namespaces every key this service writes.
	KeyPrefix = "notedocs:"
	// KeyStatsSnapshot holds the JSON-encoded bookmark stats.
	KeyStatsSnapshot = KeyPrefix + "stats:snapshot"
)
