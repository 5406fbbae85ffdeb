// Package generation synthesizes media artifacts from SIS documents.
//
// The dispatcher resolves the effective policy through the layered
// Media→Scene→Story→built-in override chain, builds a deterministic
// prompt from the resolved policy plus the document's semantics, and
// hands the prompt to the capability adapter for the requested
// modality. Each generated artifact becomes a new MediaSIS with
// immutable provenance, registered and linked in the external index.
package generation
