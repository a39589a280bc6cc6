// Package domain models AEMET daily climatological records and the
// province summary and siting-risk computations built on top of them.
//
// # Data Source
//
// Records come from the AEMET OpenData endpoint
// /api/valores/climatologicos/diarios/datos/fechaini/{start}/fechafin/{end}/todasestaciones.
// The endpoint does not return data directly: it answers with a small JSON
// envelope whose "datos" field is a short-lived URL serving the actual JSON
// array of records. Each record is one station on one day.
//
// Timestamps in the path use "2006-01-02T15:04:05UTC", a literal UTC suffix
// rather than a zone offset. See [FormatTimestamp].
//
// # AEMET Data Conventions
//
// Every field arrives as a string. Numeric fields use a comma as decimal
// separator ("12,5") and may carry sentinel tokens:
//
//	""        no measurement              → absent
//	"Varias"  several values that day     → absent
//	"Ip"      inapreciable precipitation  → 0.0
//
// Anything else that does not parse after comma-to-dot substitution is
// treated as absent. See [CleanNumeric].
//
// Province is a free-text field ("MALAGA", "STA. CRUZ DE TENERIFE") and is
// matched by case-sensitive substring. See [FilterProvince].
//
// # Aggregation
//
// Grouped reductions skip absent values. mean, min, max and first are absent
// for a group with no value; sum is 0. Groups are ordered by station name.
//
// # Risk Score
//
// Three per-station metrics are min-max normalized across the stations of the
// province: mean temperature (higher is riskier), total precipitation and
// altitude (both inverted, lower is riskier). The composite is
// 0.4*temp + 0.3*prec + 0.3*alt rounded to 3 decimals. A metric with no spread
// across stations cannot be normalized and is reported as
// [ErrDegenerateRange].
package domain
