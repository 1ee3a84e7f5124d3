package types

import "time"

// FileItem pairs a result file's display name with its file reference.
// The reference is either an opaque file id or a full download URL.
type FileItem struct {
	Name string
	Ref  string
}

// CaseRecord is the per-case metadata record written after a successful fetch.
type CaseRecord struct {
	PublicationNo string    `yaml:"publication_no"`
	CaseID        string    `yaml:"case_id"`
	CaseNo        string    `yaml:"case_no"`
	Files         []string  `yaml:"files,omitempty"`
	FetchedAt     time.Time `yaml:"fetched_at"`
}
