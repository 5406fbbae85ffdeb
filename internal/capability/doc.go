// Package capability presents the generation backends behind one
// uniform adapter contract.
//
// Each adapter owns a single modality (prose, image, music, speech),
// translates a resolved prompt into its backend's wire format, and
// returns raw artifact bytes plus provenance. Dispatchers never talk to
// a backend directly and never learn backend-specific request shapes.
package capability
