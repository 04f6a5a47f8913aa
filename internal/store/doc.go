// Package store reads the post archive from the filesystem.
//
// Posts live at <root>/YYYY/M/D/slug.md, pages at <root>/slug.md. A sibling
// <id>.redirect file marks a document that redirects elsewhere; its first line
// is the HTTP status and its second line the destination URL.
package store
