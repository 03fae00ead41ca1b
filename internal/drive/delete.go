package drive

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rohits-web03/cloudvault/internal/domain"
	"github.com/rohits-web03/cloudvault/internal/models"
)

// maxRequeue bounds how often one folder is walked again because new entries
// appeared in it while the delete was running.
const maxRequeue = 3

type deleteFrame struct {
	id       uuid.UUID
	depth    int
	expanded bool
	requeued int
}

// DeleteFolder removes folderID with every folder and file below it.
//
// The subtree is walked depth-first with an explicit stack and each folder is
// removed only after everything under it. Blob failures are collected in the
// report and never stop the walk. Only a store failure aborts, and what it
// leaves behind is a smaller but still well-formed subtree.
func (m *Manager) DeleteFolder(ctx context.Context, ownerID, folderID uuid.UUID) (*DeleteReport, error) {
	root, err := m.folders.FindByID(ctx, ownerID, folderID)
	if err != nil {
		return nil, err
	}

	report := &DeleteReport{}
	stack := []deleteFrame{{id: root.ID}}
	seen := map[uuid.UUID]struct{}{root.ID: {}}

	for len(stack) > 0 {
		top := len(stack) - 1
		frame := stack[top]

		if !frame.expanded {
			stack[top].expanded = true
			children, err := m.folders.ListChildren(ctx, ownerID, &frame.id)
			if err != nil {
				return report, fmt.Errorf("list subfolders of %s: %w", frame.id, err)
			}
			for _, child := range children {
				// Ids come from clients; never trust the tree to stay in one owner.
				if child.OwnerID != ownerID {
					m.logger.Warn("skipping folder of another owner", "folder_id", child.ID, "owner_id", ownerID)
					continue
				}
				if _, loop := seen[child.ID]; loop {
					m.logger.Warn("folder cycle detected", "folder_id", child.ID, "parent_id", frame.id)
					continue
				}
				if frame.depth+1 > m.opts.MaxTreeDepth {
					return report, fmt.Errorf("%w: %w", domain.ErrValidation, ErrTreeTooDeep)
				}
				seen[child.ID] = struct{}{}
				stack = append(stack, deleteFrame{id: child.ID, depth: frame.depth + 1})
			}
			continue
		}

		stack = stack[:top]
		removed, err := m.purgeFolder(ctx, ownerID, frame.id, report)
		if err != nil {
			return report, err
		}
		if !removed {
			if frame.requeued >= maxRequeue {
				return report, fmt.Errorf("%w: folder %s keeps receiving new entries", domain.ErrConflict, frame.id)
			}
			stack = append(stack, deleteFrame{id: frame.id, depth: frame.depth, requeued: frame.requeued + 1})
		}
	}

	m.logger.Info("folder deleted",
		"id", root.ID,
		"name", root.Name,
		"owner_id", ownerID,
		"folders", report.FoldersDeleted,
		"files", report.FilesDeleted,
		"bytes", report.BytesReleased,
		"blob_failures", len(report.BlobFailures),
	)
	return report, nil
}

// purgeFolder deletes the files directly in folderID and then the folder row.
// It returns false, without deleting the row, if the folder is not empty by
// then; the caller walks it again.
func (m *Manager) purgeFolder(ctx context.Context, ownerID, folderID uuid.UUID, report *DeleteReport) (bool, error) {
	files, err := m.files.ListInFolder(ctx, ownerID, &folderID)
	if err != nil {
		return false, fmt.Errorf("list files of %s: %w", folderID, err)
	}
	for i := range files {
		if _, err := m.removeFile(ctx, &files[i], report); err != nil {
			return false, err
		}
	}

	empty := true
	var deleted bool
	err = m.tx.WithinTx(ctx, func(ctx context.Context) error {
		hasChildren, err := m.folders.HasChildren(ctx, ownerID, folderID)
		if err != nil {
			return err
		}
		fileCount, err := m.files.CountInFolder(ctx, ownerID, folderID)
		if err != nil {
			return err
		}
		if hasChildren || fileCount > 0 {
			empty = false
			return nil
		}
		deleted, err = m.folders.Delete(ctx, ownerID, folderID)
		return err
	})
	if errors.Is(err, domain.ErrConflict) {
		// A child was inserted after the emptiness check.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete folder %s: %w", folderID, err)
	}
	if !empty {
		return false, nil
	}
	if deleted {
		report.FoldersDeleted++
		m.logger.Debug("deleted folder", "id", folderID)
	}
	return true, nil
}

// removeFile makes one attempt at the blob and then deletes the metadata row
// and releases the quota in a single transaction, whatever the blob outcome.
// It reports false if the row was already gone, in which case whoever removed
// it owns the blob outcome.
func (m *Manager) removeFile(ctx context.Context, file *models.File, report *DeleteReport) (bool, error) {
	blobErr := m.deleteBlob(ctx, file.BlobID)

	var removed bool
	err := m.tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := m.files.Delete(ctx, file.OwnerID, file.ID)
		if err != nil || !ok {
			return err
		}
		removed = true
		return m.quota.OnDelete(ctx, file.OwnerID, file.Size)
	})
	if err != nil {
		return false, fmt.Errorf("delete file %s: %w", file.ID, err)
	}

	if !removed {
		return false, nil
	}

	if blobErr != nil {
		m.logger.Warn("blob delete failed, metadata removed",
			"file_id", file.ID,
			"blob_id", file.BlobID,
			"error", blobErr,
		)
		report.BlobFailures = append(report.BlobFailures, BlobFailure{
			FileID: file.ID,
			BlobID: file.BlobID,
			Error:  blobErr.Error(),
		})
		m.recordOrphan(ctx, file, blobErr)
	}

	report.FilesDeleted++
	report.BytesReleased += file.Size
	m.logger.Debug("deleted file", "id", file.ID, "name", file.Name)
	return true, nil
}
