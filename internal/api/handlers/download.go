package handlers

import (
	"net/http"

	"github.com/rohits-web03/cloudvault/internal/utils"
)

// GET /api/v1/files/download/{id}
// Download godoc
// @Summary Generate a download URL
// @Description Returns a temporary signed URL for the file content.
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} utils.Payload "Presigned download URL generated successfully"
// @Failure 400 {object} utils.Payload "Invalid file id"
// @Failure 404 {object} utils.Payload "File not found"
// @Failure 502 {object} utils.Payload "Storage failure"
// @Router /api/v1/files/download/{id} [get]
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
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

	download, err := h.files.DownloadURL(r.Context(), p.UserID, id)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	// Redirect browsers straight to the content when asked to.
	if r.URL.Query().Get("redirect") == "true" {
		http.Redirect(w, r, download.URL, http.StatusTemporaryRedirect)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Presigned download URL generated successfully",
		Data:    download,
	})
}
