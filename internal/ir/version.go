package ir

// Version constants recorded with every harness run.
const (
	// IRVersion is the ZoneSpec schema version.
	IRVersion = "1"

	// EngineVersion is the zone engine version.
	EngineVersion = "0.1.0"
)
