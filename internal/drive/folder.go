package drive

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rohits-web03/cloudvault/internal/domain"
	"github.com/rohits-web03/cloudvault/internal/models"
)

type CreateFolderInput struct {
	Name     string
	ParentID *uuid.UUID // nil creates a root folder
	Path     string     // display path; derived from the parent when empty
}

// CreateFolder adds a folder under ParentID. The parent must belong to ownerID.
func (m *Manager) CreateFolder(ctx context.Context, ownerID uuid.UUID, in CreateFolderInput) (*models.Folder, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}

	parentPath := "/"
	if in.ParentID != nil {
		parent, err := m.folders.FindByID(ctx, ownerID, *in.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
		parentPath = parent.Path
	}

	exists, err := m.folders.SiblingExists(ctx, ownerID, in.ParentID, name, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check for duplicate names: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: a folder named %q already exists in this location", domain.ErrConflict, name)
	}

	folderPath := strings.TrimSpace(in.Path)
	if folderPath == "" {
		folderPath = path.Join(parentPath, name)
	}

	folder := &models.Folder{
		Name:     name,
		ParentID: in.ParentID,
		OwnerID:  ownerID,
		Path:     folderPath,
	}
	// The unique index settles concurrent creates that both passed the check above.
	if err := m.folders.Create(ctx, folder); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: a folder named %q already exists in this location", domain.ErrConflict, name)
		}
		return nil, err
	}

	m.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"owner_id", ownerID,
		"parent_id", folder.ParentID,
	)
	return folder, nil
}

// RenameFolder changes a folder's name in place. Path is left alone.
func (m *Manager) RenameFolder(ctx context.Context, ownerID, folderID uuid.UUID, newName string) (*models.Folder, error) {
	name, err := cleanName(newName)
	if err != nil {
		return nil, err
	}

	folder, err := m.folders.FindByID(ctx, ownerID, folderID)
	if err != nil {
		return nil, err
	}
	if folder.Name == name {
		return folder, nil
	}

	exists, err := m.folders.SiblingExists(ctx, ownerID, folder.ParentID, name, folder.ID)
	if err != nil {
		return nil, fmt.Errorf("check for duplicate names: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: a folder named %q already exists in this location", domain.ErrConflict, name)
	}

	if err := m.folders.Rename(ctx, ownerID, folder.ID, name); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: a folder named %q already exists in this location", domain.ErrConflict, name)
		}
		return nil, err
	}

	m.logger.Info("folder renamed", "id", folder.ID, "from", folder.Name, "to", name)
	folder.Name = name
	return folder, nil
}

// FolderView is a folder with its parent and a path derived from the parent chain.
type FolderView struct {
	models.Folder
	Parent       *models.Folder `json:"parent,omitempty"`
	ResolvedPath string         `json:"resolvedPath"`
}

func (m *Manager) GetFolder(ctx context.Context, ownerID, folderID uuid.UUID) (*FolderView, error) {
	folder, err := m.folders.FindByID(ctx, ownerID, folderID)
	if err != nil {
		return nil, err
	}

	view := &FolderView{Folder: *folder}
	if folder.ParentID != nil {
		parent, err := m.folders.FindByID(ctx, ownerID, *folder.ParentID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		view.Parent = parent
	}

	resolved, err := m.ResolvePath(ctx, ownerID, folder)
	if err != nil {
		m.logger.Warn("failed to resolve folder path", "folder_id", folder.ID, "error", err)
		resolved = folder.Path
	}
	view.ResolvedPath = resolved
	return view, nil
}

// ResolvePath walks the parent chain to build "/a/b/c". Unlike Folder.Path it
// is always current.
func (m *Manager) ResolvePath(ctx context.Context, ownerID uuid.UUID, folder *models.Folder) (string, error) {
	names := []string{folder.Name}
	seen := map[uuid.UUID]struct{}{folder.ID: {}}

	for next := folder.ParentID; next != nil; {
		if _, loop := seen[*next]; loop {
			return "", fmt.Errorf("folder %s is its own ancestor", *next)
		}
		if len(names) > m.opts.MaxTreeDepth {
			return "", ErrTreeTooDeep
		}
		seen[*next] = struct{}{}

		parent, err := m.folders.FindByID(ctx, ownerID, *next)
		if err != nil {
			return "", fmt.Errorf("ancestor %s: %w", *next, err)
		}
		names = append(names, parent.Name)
		next = parent.ParentID
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return "/" + strings.Join(names, "/"), nil
}

// Listing is the content of one folder, or of the owner's root.
type Listing struct {
	Files   []models.File   `json:"files"`
	Folders []models.Folder `json:"folders"`
}

// ListChildren returns the files and folders directly under folderID, newest
// first. A nil folderID lists the root.
func (m *Manager) ListChildren(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) (*Listing, error) {
	if folderID != nil {
		if _, err := m.folders.FindByID(ctx, ownerID, *folderID); err != nil {
			return nil, err
		}
	}

	var listing Listing
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		folders, err := m.folders.ListChildren(gctx, ownerID, folderID)
		if err != nil {
			return fmt.Errorf("list folders: %w", err)
		}
		listing.Folders = folders
		return nil
	})
	g.Go(func() error {
		files, err := m.files.ListInFolder(gctx, ownerID, folderID)
		if err != nil {
			return fmt.Errorf("list files: %w", err)
		}
		listing.Files = files
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &listing, nil
}
