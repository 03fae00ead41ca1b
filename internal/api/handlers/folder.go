package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/rohits-web03/cloudvault/internal/drive"
	"github.com/rohits-web03/cloudvault/internal/models"
	"github.com/rohits-web03/cloudvault/internal/utils"
)

type FolderService interface {
	CreateFolder(ctx context.Context, ownerID uuid.UUID, in drive.CreateFolderInput) (*models.Folder, error)
	GetFolder(ctx context.Context, ownerID, folderID uuid.UUID) (*drive.FolderView, error)
	RenameFolder(ctx context.Context, ownerID, folderID uuid.UUID, name string) (*models.Folder, error)
	DeleteFolder(ctx context.Context, ownerID, folderID uuid.UUID) (*drive.DeleteReport, error)
}

type FolderHandler struct {
	folders FolderService
	logger  *slog.Logger
}

func NewFolderHandler(folders FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{folders: folders, logger: logger}
}

// POST /api/v1/folders
// Create godoc
// @Summary Create a folder
// @Description Creates a folder at the root or under parentId. Names must be unique among siblings.
// @Tags Folders
// @Accept json
// @Produce json
// @Param body body object true "name, parentId, path"
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload "Invalid name"
// @Failure 404 {object} utils.Payload "Parent not found"
// @Failure 409 {object} utils.Payload "Name already taken"
// @Router /api/v1/folders [post]
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	var input struct {
		Name     string  `json:"name"`
		ParentID *string `json:"parentId"`
		Path     string  `json:"path"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	var rawParent string
	if input.ParentID != nil {
		rawParent = *input.ParentID
	}
	parentID, err := optionalID(rawParent, "parentId")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	folder, err := h.folders.CreateFolder(r.Context(), p.UserID, drive.CreateFolderInput{
		Name:     input.Name,
		ParentID: parentID,
		Path:     input.Path,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Folder created successfully",
		Data:    folder,
	})
}

// GET /api/v1/folders/{id}
// Get godoc
// @Summary Get a folder
// @Description Returns the folder, its parent and its path resolved from the parent chain.
// @Tags Folders
// @Produce json
// @Param id path string true "Folder ID"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/folders/{id} [get]
func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	view, err := h.folders.GetFolder(r.Context(), p.UserID, id)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Folder retrieved successfully",
		Data:    view,
	})
}

// PUT /api/v1/folders/{id}
// Rename godoc
// @Summary Rename a folder
// @Tags Folders
// @Accept json
// @Produce json
// @Param id path string true "Folder ID"
// @Param body body object true "name"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /api/v1/folders/{id} [put]
func (h *FolderHandler) Rename(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	folder, err := h.folders.RenameFolder(r.Context(), p.UserID, id, input.Name)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Folder renamed successfully",
		Data:    folder,
	})
}

// DELETE /api/v1/folders/{id}
// Delete godoc
// @Summary Delete a folder and everything in it
// @Description Removes the folder, all subfolders and files. Blobs that could not be deleted are listed as warnings.
// @Tags Folders
// @Produce json
// @Param id path string true "Folder ID"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/v1/folders/{id} [delete]
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	// A client hanging up must not leave the delete half done.
	report, err := h.folders.DeleteFolder(context.WithoutCancel(r.Context()), p.UserID, id)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	message := "Folder deleted successfully"
	if len(report.BlobFailures) > 0 {
		message = "Folder deleted; some stored content could not be removed yet"
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: message,
		Data:    report,
	})
}
