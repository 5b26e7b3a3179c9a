// Package csvstore implements the shelf storage backend on a single
// comma-delimited file with a header row.
//
// The file is the only source of truth. Store owns the table and backup
// paths, creates the table on first use, and migrates an older header to the
// current schema. Repository implements types.Repository on top of Store.
//
// Every rewrite (migration, delete, modify, restore) builds a staging file in
// the table's directory and renames it over the target, so a reader sees
// either the old complete file or the new complete file. Two writer processes
// can still interleave; the last rename wins.
package csvstore
