package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/rohits-web03/cloudvault/internal/domain"
	"github.com/rohits-web03/cloudvault/internal/models"
	"github.com/rohits-web03/cloudvault/internal/utils"
)

type UploadInput struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
	FolderID    *uuid.UUID // nil stores the file at the root
	Path        string
}

// UploadFile stores the content first and then the metadata row, together
// with the quota change. If the metadata write fails the blob is removed again.
func (m *Manager) UploadFile(ctx context.Context, ownerID uuid.UUID, in UploadInput) (*models.File, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := checkSize(in.Size); err != nil {
		return nil, err
	}
	if m.opts.MaxUploadBytes > 0 && in.Size > m.opts.MaxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds the %d byte upload limit", domain.ErrValidation, m.opts.MaxUploadBytes)
	}
	if in.Body == nil {
		return nil, fmt.Errorf("%w: file content is required", domain.ErrValidation)
	}

	filePath := strings.TrimSpace(in.Path)
	if in.FolderID != nil {
		folder, err := m.folders.FindByID(ctx, ownerID, *in.FolderID)
		if err != nil {
			return nil, fmt.Errorf("folder: %w", err)
		}
		if filePath == "" {
			filePath = folder.Path
		}
	}
	if filePath == "" {
		filePath = "/"
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key, err := blobKey(ownerID, name)
	if err != nil {
		return nil, err
	}
	blob, err := m.blobs.Put(ctx, key, in.Body, in.Size, contentType)
	if err != nil {
		m.logger.Error("blob upload failed", "owner_id", ownerID, "name", name, "error", err)
		return nil, err
	}

	file := &models.File{
		Name:         name,
		OriginalName: in.Name,
		BlobID:       blob.ID,
		BlobLocation: blob.Location,
		MimeType:     contentType,
		Size:         in.Size,
		FolderID:     in.FolderID,
		OwnerID:      ownerID,
		Path:         filePath,
	}
	err = m.tx.WithinTx(ctx, func(ctx context.Context) error {
		// The folder may have been deleted while the content was uploading.
		if in.FolderID != nil {
			if _, err := m.folders.FindByID(ctx, ownerID, *in.FolderID); err != nil {
				return fmt.Errorf("folder: %w", err)
			}
		}
		if err := m.files.Create(ctx, file); err != nil {
			return err
		}
		return m.quota.OnUpload(ctx, ownerID, in.Size)
	})
	if err != nil {
		if delErr := m.deleteBlob(context.WithoutCancel(ctx), blob.ID); delErr != nil {
			m.logger.Error("failed to remove blob after metadata error",
				"blob_id", blob.ID,
				"error", delErr,
			)
			// The row was never committed, so the orphan points at no file.
			orphan := *file
			orphan.ID = uuid.Nil
			m.recordOrphan(context.WithoutCancel(ctx), &orphan, delErr)
		}
		return nil, err
	}

	m.logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"owner_id", ownerID,
		"folder_id", file.FolderID,
		"size", file.Size,
	)
	return file, nil
}

func blobKey(ownerID uuid.UUID, name string) (string, error) {
	key, err := utils.ObjectKey(ownerID.String(), name)
	if err != nil {
		return "", fmt.Errorf("generate blob key: %w", err)
	}
	return key, nil
}

func (m *Manager) GetFile(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error) {
	return m.files.FindByID(ctx, ownerID, fileID)
}

// Download is where a client fetches a file's content from.
type Download struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// DownloadURL presigns a short-lived URL for the file. If presigning fails it
// falls back to the stored location, which works for public buckets.
func (m *Manager) DownloadURL(ctx context.Context, ownerID, fileID uuid.UUID) (*Download, error) {
	file, err := m.files.FindByID(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}

	pctx, cancel := context.WithTimeout(ctx, m.opts.BlobTimeout)
	defer cancel()
	url, err := m.blobs.PresignGet(pctx, file.BlobID, m.opts.PresignTTL)
	if err != nil {
		if file.BlobLocation == "" {
			return nil, err
		}
		m.logger.Warn("presign failed, using stored location", "file_id", file.ID, "error", err)
		url = file.BlobLocation
	}

	return &Download{
		URL:      url,
		FileName: file.OriginalName,
		MimeType: file.MimeType,
		Size:     file.Size,
	}, nil
}

// DeleteFile removes one file. A blob failure is reported, not returned.
func (m *Manager) DeleteFile(ctx context.Context, ownerID, fileID uuid.UUID) (*DeleteReport, error) {
	file, err := m.files.FindByID(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}

	report := &DeleteReport{}
	removed, err := m.removeFile(ctx, file, report)
	if err != nil {
		return report, err
	}
	if !removed {
		return report, fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
	}

	m.logger.Info("file deleted", "id", file.ID, "name", file.Name, "owner_id", ownerID)
	return report, nil
}
