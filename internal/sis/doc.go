// Package sis defines the Semantic Interface Structure document model:
// the Story, Scene, and Media layers, their shared policy and semantics
// shapes, and the structural validator.
//
// Documents are plain JSON and meant to be hand-editable. Validation is
// diagnostic rather than pass/fail: it reports every violation found in
// one pass so a document can be corrected in a single editing session.
package sis
