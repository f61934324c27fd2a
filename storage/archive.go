package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dastin1501/PPL-Referee/models"
	"github.com/gosimple/slug"
)

// ScheduleArchiver keeps a snapshot of every saved schedule document.
type ScheduleArchiver interface {
	Archive(ctx context.Context, t *models.Tournament, doc *models.ScheduleDocument) (*UploadResult, error)
}

type uploaderArchiver struct {
	uploader FileUploader
}

// NewScheduleArchiver stores snapshots through any FileUploader.
func NewScheduleArchiver(uploader FileUploader) ScheduleArchiver {
	return &uploaderArchiver{uploader: uploader}
}

// NewCloudflareR2Archiver archives snapshots to an R2 bucket.
func NewCloudflareR2Archiver(cfg CloudflareR2UploaderConfig) (ScheduleArchiver, error) {
	uploader, err := NewCloudflareR2Uploader(cfg)
	if err != nil {
		return nil, err
	}
	return NewScheduleArchiver(uploader), nil
}

// ArchiveKey is "schedules/<tournament-slug>-<id>/<date>.json".
func ArchiveKey(t *models.Tournament, date string) string {
	prefix := slug.Make(t.Name)
	if prefix == "" {
		prefix = "tournament"
	}
	day := slug.Make(date)
	if day == "" {
		day = "undated"
	}
	return fmt.Sprintf("schedules/%s-%s/%s.json", prefix, strconv.Itoa(t.ID), day)
}

func (a *uploaderArchiver) Archive(ctx context.Context, t *models.Tournament, doc *models.ScheduleDocument) (*UploadResult, error) {
	if t == nil || doc == nil {
		return nil, fmt.Errorf("archive requires a tournament and a document")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schedule snapshot: %w", err)
	}
	key := ArchiveKey(t, doc.ScheduleDate)
	res, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to archive schedule %s: %w", key, err)
	}
	return res, nil
}
