package httpapi

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/medimate/internal/common"
	"github.com/dmitrijs2005/medimate/internal/server/services"
	"github.com/gin-gonic/gin"
)

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || errors.Is(err, multipart.ErrMessageTooLarge)
}

func (a *API) handleUpload(c *gin.Context) {
	in := services.UploadInput{
		UserID:    c.PostForm("userId"),
		PatientID: c.PostForm("patientId"),
		Title:     c.PostForm("title"),
	}

	fileHeader, err := c.FormFile("audio")
	switch {
	case err == nil:
		upload, err := fileHeader.Open()
		if err != nil {
			a.writeError(c, common.NewPublicError(common.ErrorInternal, "Error during file upload", err), errorBody)
			return
		}
		defer upload.Close()

		in.Filename = fileHeader.Filename
		in.ContentType = fileHeader.Header.Get("Content-Type")
		in.Body = upload
		in.Size = fileHeader.Size
	case isTooLarge(err):
		a.writeError(c, common.NewPublicError(common.ErrPayloadTooLarge, "File too large", nil), errorBody)
		return
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// leave Body nil, the service reports the missing field
	default:
		a.writeError(c, common.NewPublicError(common.ErrValidation, "Invalid multipart form", err), errorBody)
		return
	}

	rec, err := a.audio.Upload(c.Request.Context(), callerID(c), in)
	if err != nil {
		a.writeError(c, err, errorBody)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Audio uploaded and processed successfully",
		"data":    rec,
	})
}

func (a *API) handleListRecords(c *gin.Context) {
	recs, err := a.audio.List(c.Request.Context(), callerID(c))
	if err != nil {
		a.writeError(c, err, errorBody)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Audio records retrieved successfully",
		"data":    recs,
	})
}

func (a *API) handleGetRecord(c *gin.Context) {
	rec, err := a.audio.Get(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		a.writeError(c, err, errorBody)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Audio record retrieved successfully",
		"data":    rec,
	})
}

func (a *API) handleDownload(c *gin.Context) {
	blob, err := a.audio.Download(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		a.writeError(c, err, errorBody)
		return
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if blob.Filename != "" {
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": blob.Filename}))
	}
	c.Data(http.StatusOK, contentType, blob.Data)
}

func (a *API) handleUpdateRecord(c *gin.Context) {
	var in services.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		if isTooLarge(err) {
			a.writeError(c, common.NewPublicError(common.ErrPayloadTooLarge, "Request body too large", nil), errorBody)
			return
		}
		a.writeError(c, bindingError(err), errorBody)
		return
	}

	rec, err := a.audio.Update(c.Request.Context(), callerID(c), c.Param("id"), in)
	if err != nil {
		a.writeError(c, err, errorBody)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Audio record updated",
		"data":    rec,
	})
}

func (a *API) handleDeleteRecord(c *gin.Context) {
	if err := a.audio.Delete(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		a.writeError(c, err, errorBody)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Audio record deleted successfully"})
}
