// Package sisstore persists SIS documents as individual JSON files.
//
// One document per file, named by document ID, pretty-printed so
// operators can inspect and hand-edit them. The store never validates
// content; callers run sis.Validate before acting on what they load.
package sisstore
