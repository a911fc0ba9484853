package visitors

import (
	"fmt"
	"net/http"
	"path/filepath"

	"gatepass/models"
	"gatepass/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
)

const idPhotoDir = "static/idpic"

// UploadIDPhoto stores the visitor's ID image with a thumbnail and records
// the file on the visit.
func (h *Handlers) UploadIDPhoto(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.Engine.Visits().FindByID(r.Context(), ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, _, err := r.FormFile("idphoto")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "idphoto file is required")
		return
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "failed to decode image")
		return
	}

	fileName := v.VisitID + ".jpg"
	originalPath := filepath.Join(idPhotoDir, fileName)
	thumbDir := filepath.Join(idPhotoDir, "thumb")
	thumbnailPath := filepath.Join(thumbDir, fileName)

	if err := utils.EnsureDir(idPhotoDir); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create upload directory")
		return
	}
	if err := utils.EnsureDir(thumbDir); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create thumbnail directory")
		return
	}

	if err := imaging.Save(img, originalPath); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to save image")
		return
	}
	thumbImg := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumbImg, thumbnailPath); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to save thumbnail")
		return
	}

	idFile := "/" + idPhotoDir + "/" + fileName
	if err := h.Engine.Visits().Update(r.Context(), v.VisitID, models.VisitUpdate{IDFile: &idFile}); err != nil {
		respondEngineError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"idFile":    idFile,
		"thumbnail": fmt.Sprintf("/%s/thumb/%s", idPhotoDir, fileName),
	})
}
