package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/sortit/internal/common"
	"github.com/Veraticus/sortit/internal/dataset"
	"github.com/Veraticus/sortit/internal/engine"
	"github.com/Veraticus/sortit/internal/labels"
	"github.com/Veraticus/sortit/internal/model"
	"github.com/Veraticus/sortit/internal/storage"
)

// apiSource marks results from /api/resolve.
const apiSource = "api"

// multipartSlack allows for form boundaries and headers around the image.
const multipartSlack = 1 << 20

// errorResponse is the body of every non-2xx API response. Result carries
// the fallback classification when the label source was unavailable.
type errorResponse struct {
	Result *model.ClassificationResult `json:"result,omitempty"`
	Error  string                      `json:"error"`
}

type categoryInfo struct {
	Name     model.Category `json:"name"`
	Keywords []string       `json:"keywords"`
	model.Disposal
}

type categoriesResponse struct {
	Categories     []categoryInfo `json:"categories"`
	ContainerWords []string       `json:"container_words"`
}

type historyResponse struct {
	Items []model.ClassificationResult `json:"items"`
	Count int                          `json:"count"`
}

func abortWithError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"source":  s.engine.SourceName(),
		"history": s.history != nil,
	})
}

// classifyImage handles POST /api/classify with a multipart "image" field.
func (s *Server) classifyImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes+multipartSlack)

	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusRequestEntityTooLarge, fmt.Errorf("image exceeds %d bytes", s.maxUploadBytes))
			return
		}
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("missing image upload: %w", err))
		return
	}
	if header.Size > s.maxUploadBytes {
		abortWithError(c, http.StatusRequestEntityTooLarge, fmt.Errorf("image exceeds %d bytes", s.maxUploadBytes))
		return
	}

	f, err := header.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, s.maxUploadBytes+1))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err))
		return
	}
	if int64(len(data)) > s.maxUploadBytes {
		abortWithError(c, http.StatusRequestEntityTooLarge, fmt.Errorf("image exceeds %d bytes", s.maxUploadBytes))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "application/octet-stream" {
		mimeType = ""
	}

	result, err := s.engine.ClassifyImage(c.Request.Context(), labels.Image{Data: data, MimeType: mimeType})
	s.metrics.ObserveResult(result)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrNoSource):
			abortWithError(c, http.StatusServiceUnavailable, err)
		case errors.Is(err, common.ErrEmptyImage):
			abortWithError(c, http.StatusBadRequest, err)
		case errors.Is(err, labels.ErrUnsupportedImage):
			abortWithError(c, http.StatusUnsupportedMediaType, err)
		case errors.Is(err, common.ErrLabelSourceUnavailable):
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusBadGateway, errorResponse{Error: err.Error(), Result: result})
		default:
			abortWithError(c, http.StatusInternalServerError, err)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// resolveRequest accepts labels either as bare strings or as
// {"name": ..., "confidence": ...} objects.
type resolveRequest struct {
	Labels []json.RawMessage `json:"labels"`
}

func (r resolveRequest) labelSet() (model.LabelSet, error) {
	ls := make(model.LabelSet, 0, len(r.Labels))
	for i, raw := range r.Labels {
		var l model.Label
		var name string
		if err := json.Unmarshal(raw, &name); err == nil {
			l.Name = name
		} else if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("%w: label %d must be a string or an object", model.ErrInvalidLabel, i)
		}
		if strings.TrimSpace(l.Name) == "" {
			return nil, fmt.Errorf("%w: label %d has an empty name", model.ErrInvalidLabel, i)
		}
		ls = append(ls, l)
	}
	return ls, nil
}

// resolveLabels handles POST /api/resolve.
func (s *Server) resolveLabels(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	ls, err := req.labelSet()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	result, err := s.engine.ClassifyLabels(c.Request.Context(), ls, apiSource)
	if err != nil {
		if errors.Is(err, model.ErrInvalidLabel) {
			abortWithError(c, http.StatusBadRequest, err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	s.metrics.ObserveResult(result)
	c.JSON(http.StatusOK, result)
}

func (s *Server) listCategories(c *gin.Context) {
	rs := s.engine.Rules()
	guides := s.engine.Guides()

	resp := categoriesResponse{ContainerWords: rs.ContainerWords()}
	for _, cat := range model.AllCategories() {
		keywords := rs.Keywords(cat)
		if keywords == nil {
			keywords = []string{}
		}
		resp.Categories = append(resp.Categories, categoryInfo{
			Name:     cat,
			Keywords: keywords,
			Disposal: guides.Lookup(cat),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// distribution reports image counts per dataset class as {"class": count}.
func (s *Server) distribution(c *gin.Context) {
	if s.datasetRoot == "" {
		abortWithError(c, http.StatusNotFound, errors.New("dataset path is not configured"))
		return
	}

	counts, err := dataset.Distribution(s.datasetRoot, s.datasetClasses)
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "Failed to get distribution"})
		return
	}

	out := make(map[string]int, len(counts))
	for _, cc := range counts {
		out[cc.Class] = cc.Images
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listHistory(c *gin.Context) {
	if s.history == nil {
		abortWithError(c, http.StatusNotFound, common.ErrHistoryDisabled)
		return
	}

	var filter storage.HistoryFilter
	var err error
	if filter.Limit, err = intQuery(c, "limit"); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	if filter.Offset, err = intQuery(c, "offset"); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	if raw := c.Query("category"); raw != "" {
		if filter.Category, err = model.ParseCategory(raw); err != nil {
			abortWithError(c, http.StatusBadRequest, err)
			return
		}
	}

	items, err := s.history.ListClassifications(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidFilter) {
			abortWithError(c, http.StatusBadRequest, err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	if items == nil {
		items = []model.ClassificationResult{}
	}
	for i := range items {
		items[i].Disposal = s.engine.Guides().Lookup(items[i].Category)
	}
	c.JSON(http.StatusOK, historyResponse{Items: items, Count: len(items)})
}

func (s *Server) getHistory(c *gin.Context) {
	if s.history == nil {
		abortWithError(c, http.StatusNotFound, common.ErrHistoryDisabled)
		return
	}

	result, err := s.history.GetClassification(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	result.Disposal = s.engine.Guides().Lookup(result.Category)
	c.JSON(http.StatusOK, result)
}

func (s *Server) historyStats(c *gin.Context) {
	if s.history == nil {
		abortWithError(c, http.StatusNotFound, common.ErrHistoryDisabled)
		return
	}

	counts, err := s.history.CategoryCounts(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
