package gtlib

import (
	"context"
	"fmt"
)

// Metadata keys consumed when building a submission request.
const (
	MetaURL           = "url"
	MetaCollectionURL = "collectionUrl"
	MetaQuality       = "quality"
	MetaFormat        = "format"
	MetaFolder        = "folder"
)

// Default request values applied when the schedule metadata leaves them out.
const (
	DefaultQuality = "best"
	// DefaultFormat is the format for scheduled jobs. Ad hoc additions
	// default to "any" instead; that choice belongs to the caller.
	DefaultFormat = "mp4"
)

// SubmitRequest is a flat job-submission request for the download server.
type SubmitRequest struct {
	URL       string `json:"url"`
	Quality   string `json:"quality"`
	Format    string `json:"format"`
	Folder    string `json:"folder,omitempty"`
	AutoStart bool   `json:"auto_start"`
}

// Submitter produces a concrete download job from a submission request.
// Submit may block on network I/O; it returns the created job's identifier.
type Submitter interface {
	Submit(ctx context.Context, req *SubmitRequest) (string, error)
}

// BuildSubmitRequest derives a job submission from the schedule's metadata.
// COLLECTION schedules read the collection URL, all other kinds a plain
// URL; quality and format fall back to their defaults. A schedule whose
// metadata yields no URL cannot be submitted.
func (s *Schedule) BuildSubmitRequest() (*SubmitRequest, error) {
	urlKey := MetaURL
	if s.Type() == TypeCollection {
		urlKey = MetaCollectionURL
	}
	url := s.Metadata[urlKey]
	if url == "" {
		return nil, fmt.Errorf("%w: missing %q", ErrNoActionableURL, urlKey)
	}
	req := &SubmitRequest{
		URL:       url,
		Quality:   s.Metadata[MetaQuality],
		Format:    s.Metadata[MetaFormat],
		Folder:    s.Metadata[MetaFolder],
		AutoStart: true,
	}
	if req.Quality == "" {
		req.Quality = DefaultQuality
	}
	if req.Format == "" {
		req.Format = DefaultFormat
	}
	return req, nil
}
