package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/rohits-web03/cloudvault/internal/drive"
	"github.com/rohits-web03/cloudvault/internal/models"
	"github.com/rohits-web03/cloudvault/internal/utils"
)

const multipartMemory = 32 << 20

type FileService interface {
	UploadFile(ctx context.Context, ownerID uuid.UUID, in drive.UploadInput) (*models.File, error)
	GetFile(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error)
	ListChildren(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) (*drive.Listing, error)
	DownloadURL(ctx context.Context, ownerID, fileID uuid.UUID) (*drive.Download, error)
	DeleteFile(ctx context.Context, ownerID, fileID uuid.UUID) (*drive.DeleteReport, error)
}

type FileHandler struct {
	files          FileService
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewFileHandler(files FileService, maxUploadBytes int64, logger *slog.Logger) *FileHandler {
	return &FileHandler{files: files, maxUploadBytes: maxUploadBytes, logger: logger}
}

// POST /api/v1/files/upload
// Upload godoc
// @Summary Upload a file
// @Description Stores the file content and records it at the root or in folderId.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param folderId formData string false "Target folder"
// @Param path formData string false "Display path"
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 404 {object} utils.Payload "Folder not found"
// @Failure 502 {object} utils.Payload "Storage failure"
// @Router /api/v1/files/upload [post]
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	if h.maxUploadBytes > 0 {
		// Leave room for the multipart framing around the file.
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+(1<<20))
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			badRequest(w, "File exceeds the upload limit")
			return
		}
		badRequest(w, "Invalid file upload form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	src, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "No file provided")
		return
	}
	defer src.Close()

	folderID, err := optionalID(r.FormValue("folderId"), "folderId")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	file, err := h.files.UploadFile(r.Context(), p.UserID, drive.UploadInput{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        src,
		FolderID:    folderID,
		Path:        r.FormValue("path"),
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "File uploaded successfully",
		Data:    file,
	})
}

// GET /api/v1/files
// List godoc
// @Summary List a folder
// @Description Returns the files and folders directly under folderId, or under the root when it is omitted.
// @Tags Files
// @Produce json
// @Param folderId query string false "Folder ID"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/files [get]
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	folderID, err := optionalID(r.URL.Query().Get("folderId"), "folderId")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	listing, err := h.files.ListChildren(r.Context(), p.UserID, folderID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Files retrieved successfully",
		Data:    listing,
	})
}

// GET /api/v1/files/{id}
// Get godoc
// @Summary Get file metadata
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/files/{id} [get]
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	file, err := h.files.GetFile(r.Context(), p.UserID, id)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File retrieved successfully",
		Data:    file,
	})
}

// DELETE /api/v1/files/{id}
// Delete godoc
// @Summary Delete a file
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/files/{id} [delete]
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	report, err := h.files.DeleteFile(context.WithoutCancel(r.Context()), p.UserID, id)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File deleted successfully",
		Data:    report,
	})
}
