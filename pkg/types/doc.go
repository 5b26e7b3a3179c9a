// Package types defines the schema, record, and configuration types for the
// shelf book catalog, together with the Repository interface and the standard
// errors shared by every storage implementation.
package types
