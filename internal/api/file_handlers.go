package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mwantia/godepot/pkg/files"
)

func (s *Server) handleUpload(c *gin.Context) {
	// Bound the request body at the transport boundary so an oversized
	// upload never reaches the pipeline.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.svc.MaxUploadSize()+1)

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeErrorMessage(c, http.StatusRequestEntityTooLarge, "Uploaded file exceeds the size limit")
			return
		}
		writeErrorMessage(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	content, err := header.Open()
	if err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	defer content.Close()

	info, err := s.svc.Ingest(c.Request.Context(), files.IngestInput{
		Content:      content,
		OriginalName: header.Filename,
		Mimetype:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		UploadedBy:   c.PostForm("uploadedBy"),
		Description:  c.PostForm("description"),
		Tags:         files.ParseTags(c.PostForm("tags")),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "File uploaded successfully",
		"file":    info,
	})
}

func (s *Server) handleList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	infos, total, err := s.svc.List(c.Request.Context(), files.ListOptions{
		UploadedBy: c.Query("user"),
		Page:       page,
		PageSize:   limit,
		SortBy:     c.DefaultQuery("sortBy", "createdAt"),
		SortOrder:  c.DefaultQuery("sortOrder", "desc"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}

	c.JSON(http.StatusOK, gin.H{
		"files": infos,
		"pagination": gin.H{
			"current":    page,
			"total":      pages,
			"count":      len(infos),
			"totalFiles": total,
		},
	})
}

func (s *Server) handleGet(c *gin.Context) {
	info, err := s.svc.GetMetadata(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func (s *Server) handleDownload(c *gin.Context) {
	download, err := s.svc.OpenDownload(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer download.Content.Close()

	c.DataFromReader(http.StatusOK, download.Size, download.Mimetype, download.Content, map[string]string{
		"Content-Disposition": `attachment; filename="` + download.OriginalName + `"`,
	})
}

func (s *Server) handleUpdate(c *gin.Context) {
	var in files.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	info, err := s.svc.UpdateMetadata(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File updated successfully",
		"file":    info,
	})
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File deleted successfully",
	})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.svc.Summarize(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
