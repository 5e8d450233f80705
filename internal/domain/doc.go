// Package domain models synthetic crowd-safety readings for monitored
// locations in Varanasi.
//
// # Registry
//
// The monitored locations are compiled in ([DefaultRegistry]). A record's id
// is derived from its registry position ("LOC-100" for index 0), so ids are
// stable across generations but not across registry edits. [Registry.Validate]
// rejects empty names, duplicates, non-positive capacities and out-of-range
// coordinates before any generation happens.
//
// # Generation
//
// [Generator.Generate] returns a [Snapshot] holding one [LocationRecord] per
// registry entry, in registry order. Each call draws fresh values; nothing is
// carried over except the position of the injected [Source]. A seeded source
// ([NewSource]) makes the whole snapshot reproducible.
//
// Scenario selection (one uniform draw per location):
//
//	r > 0.95  Emergency   5%
//	r > 0.80  Weekend    15%
//	r > 0.60  Festival   20%
//	else      Normal     60%
//
// Surge ratio and confidence base by scenario:
//
//	Festival   15.0 – 35.0   0.75
//	Weekend     2.0 –  5.0   0.90
//	Emergency   0.3 –  0.8   0.65
//	Normal      1.0 –  2.0   0.95
//
// Risk is min(100, d × surge × 5) where the live density d is a draw in
// [0.5, 2.0) times surge, floored to an integer. Festivals override this with min(100, 50 + u×50): festivals are
// always reported as elevated, independent of the density draw.
//
// Confidence is base ± 0.05, rounded to two decimals and clamped to [0, 1].
//
// # Derived fields
//
// Infrastructure fields are correlated with crowd and risk after the draws:
//
//	roadCondition      risk > 80 → Blocked (70%) / Construction (30%); risk < 30 → Good
//	wasteIndex         crowd > 1.5×capacity High Accumulation; > capacity Moderate
//	electricityStatus  Outage 2%, Fluctuating 9.8%, Stable otherwise
//	busFrequency       2–9 per hour, −4 (min 0) on obstructed roads
//	sanitationScore    60–99, −30 at High Accumulation
//	diseaseRisk        High if sanitation < 40 or risk > 90; Moderate if sanitation < 70
//	aqi                100–199, +50 Construction dust, +20 when buses > 5
//
// The road correlation runs one way only: high risk forces an obstructed road,
// but an obstructed road says nothing about risk.
//
// # Schemas
//
// [LocationRecord] is the canonical layout (schema version 2). [CoreRecord] is
// the deprecated minimal layout without infrastructure fields.
package domain
