// Package ingest describes uploaded assets and the jobs that index them.
package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// MediaType is the coarse asset type derived from the file extension.
type MediaType string

// Asset media types.
const (
	MediaImage MediaType = "IMAGE"
	MediaVideo MediaType = "VIDEO"
	MediaMesh  MediaType = "MESH"
)

var extensions = map[string]MediaType{
	"jpg":  MediaImage,
	"jpeg": MediaImage,
	"png":  MediaImage,
	"gif":  MediaImage,
	"mp4":  MediaVideo,
	"mov":  MediaVideo,
	"obj":  MediaMesh,
	"gltf": MediaMesh,
}

// MediaTypeOf maps a filename to its media type by extension, case-insensitively.
func MediaTypeOf(filename string) (MediaType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return "", fmt.Errorf("file %q has no extension", filename)
	}
	t, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file type %q of %q", ext, filename)
	}
	return t, nil
}

// Pipeline names a content-specific processing graph of the engine.
type Pipeline string

// Engine pipelines.
const (
	PipelineImage Pipeline = "IMAGE"
	PipelineVideo Pipeline = "VIDEO"
	PipelineMesh  Pipeline = "MESH"
)

// ChoosePipeline selects the pipeline from the first uploaded file.
func ChoosePipeline(firstFilename string) (Pipeline, error) {
	t, err := MediaTypeOf(firstFilename)
	if err != nil {
		return "", err
	}
	switch t {
	case MediaImage:
		return PipelineImage, nil
	case MediaVideo:
		return PipelineVideo, nil
	default:
		return PipelineMesh, nil
	}
}

// Kind is the upload route kind: image, video or model.
type Kind string

// Upload route kinds.
const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindModel Kind = "model"
)

// ParseKind validates a route kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindImage, KindVideo, KindModel:
		return k, nil
	}
	return "", fmt.Errorf("unknown ingest kind %q", s)
}

// Pipeline returns the pipeline a kind is served by.
func (k Kind) Pipeline() Pipeline {
	switch k {
	case KindImage:
		return PipelineImage
	case KindVideo:
		return PipelineVideo
	default:
		return PipelineMesh
	}
}

// Status is the four-state job model.
type Status string

// Job states.
const (
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusUnknown   Status = "UNKNOWN"
)

// Job is the receipt of a submitted ingest.
type Job struct {
	ID          string    `json:"jobId"`
	AssetIDs    []string  `json:"assetIds"`
	SubmittedAt time.Time `json:"timestamp"`
}

// JobStatus is the engine state of a job.
type JobStatus struct {
	ID        string    `json:"jobId"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// File is one uploaded file.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadSeekCloser, error)
}

// Asset describes one file as it is stored in the asset bucket.
type Asset struct {
	ID         string
	Filename   string
	MediaType  MediaType
	MimeType   string
	Size       int64
	UploadedAt time.Time
}
