package handlers

import (
	"argocrm/storage"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// Upload folders accepted by the API; anything else is rejected so clients
// cannot write outside the known prefixes.
var uploadFolders = map[string]bool{
	"quotes":        true,
	"rfqs":          true,
	"registrations": true,
}

const maxUploadSize = 20 << 20 // 20 MB

// UploadFileHandler stores an attachment
// @Summary Upload file
// @Description Upload a file (multipart form, field name: file) into a folder; returns the opaque storage key
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param folder formData string true "Target folder: quotes, rfqs or registrations"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/upload [post]
func UploadFileHandler(minioClient *storage.MinIOClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		folder := c.PostForm("folder")
		if !uploadFolders[folder] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fileHeader.Size > maxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file", "details": err.Error()})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file", "details": err.Error()})
			return
		}

		key, err := minioClient.UploadFile(data, fileHeader.Filename, folder)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "File uploaded successfully",
			"key":     key,
			"size":    fileHeader.Size,
		})
	}
}

// validFileKey rejects path traversal and malformed keys before they reach
// object storage.
func validFileKey(key string) bool {
	if key == "" || strings.Contains(key, "..") || strings.Contains(key, "//") {
		return false
	}
	if strings.HasPrefix(key, "/") {
		return false
	}
	parts := strings.SplitN(key, "/", 2)
	return len(parts) == 2 && uploadFolders[parts[0]]
}

// ServeFileHandler streams a stored attachment
// @Summary Serve file
// @Description Stream a stored file by key from query param ?file=key
// @Tags Files
// @Produce application/octet-stream
// @Param file query string true "Storage key"
// @Success 200 {file} file "File content"
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/get-file [get]
func ServeFileHandler(minioClient *storage.MinIOClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Query("file")
		if !validFileKey(key) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file key"})
			return
		}

		exists, err := minioClient.FileExists(key)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check file", "details": err.Error()})
			return
		}
		if !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}

		data, err := minioClient.DownloadFile(key)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch file", "details": err.Error()})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("inline;filename=%s", filepath.Base(key)))
		c.Data(http.StatusOK, storage.ContentTypeForKey(key), data)
	}
}

// DeleteFileHandler removes a stored attachment
// @Summary Delete file
// @Description Delete a stored file by key
// @Tags Files
// @Produce json
// @Param file query string true "Storage key"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/delete-file [delete]
func DeleteFileHandler(minioClient *storage.MinIOClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Query("file")
		if !validFileKey(key) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file key"})
			return
		}

		if err := minioClient.DeleteFile(key); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete file", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
	}
}
