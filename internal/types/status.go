package types

// Status is the row state of an upload or report. Lookups only see published rows.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)
