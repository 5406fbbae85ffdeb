// Package sisindex maintains the SQLite-backed link index relating SIS
// documents to each other.
//
// SIS documents themselves never hold cross-references; a story does not
// list its scenes and a scene does not list its media. All relationships
// live here as annotated links: story→scene links carry a structural
// role and an ordering position, scene→media links carry ordering only.
// Keeping references external means documents stay hand-editable and
// relationships can be rebuilt or verified without touching document
// content.
package sisindex
