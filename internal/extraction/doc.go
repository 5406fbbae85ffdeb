// Package extraction turns raw content into validated SIS documents.
//
// The dispatcher resolves the content kind from the bytes themselves,
// invokes the structured-output model with a kind-specific prompt, and
// normalizes the response into a Scene or Media document. Responses
// that invent characters the source cannot support are rejected rather
// than repaired.
package extraction
