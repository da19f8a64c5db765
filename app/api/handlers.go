package api

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/tg-comb/app/dataset"
	"github.com/lysyi3m/tg-comb/app/rss"
	"github.com/lysyi3m/tg-comb/app/views"
)

func NewHandler(version string, stages ...Stage) *Handler {
	h := &Handler{
		stages:    make(map[string]Stage, len(stages)),
		generator: rss.NewGenerator(),
		version:   version,
	}
	for _, stage := range stages {
		h.stages[stage.Name] = stage
		h.order = append(h.order, stage.Name)
	}
	return h
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	counts := make(map[string]int, len(h.order))
	for _, name := range h.order {
		stage := h.stages[name]
		if artifacts, err := dataset.List(stage.Dir, stage.Prefix); err == nil {
			counts[name] = len(artifacts)
		}
	}
	health["datasets"] = counts

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListDatasets(c *gin.Context) {
	datasets := make([]DatasetInfo, 0)

	for _, name := range h.order {
		stage := h.stages[name]

		artifacts, err := dataset.List(stage.Dir, stage.Prefix)
		if err != nil {
			slog.Error("Failed to list datasets", "stage", name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list datasets"})
			return
		}

		for _, artifact := range artifacts {
			info := DatasetInfo{Artifact: artifact, Stage: name}
			if ds, err := dataset.Read(artifact.Path); err == nil {
				rows := ds.Len()
				info.Rows = &rows
			} else {
				slog.Warn("Failed to read dataset", "path", artifact.Path, "error", err)
			}
			datasets = append(datasets, info)
		}
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"datasets": datasets,
		"total":    len(datasets),
	})
}

func (h *Handler) APIGetDataset(c *gin.Context) {
	path, ok := h.resolve(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	c.File(path)
}

func (h *Handler) APIGetViewsSummary(c *gin.Context) {
	path, ok := h.resolve(c)
	if !ok {
		return
	}

	ds, err := dataset.Read(path)
	if err != nil {
		slog.Error("Failed to read dataset", "path", path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read dataset"})
		return
	}

	cells, err := ds.Column(dataset.ColumnViews)
	if errors.Is(err, dataset.ErrColumnNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dataset has no Views column"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	values := make([]int, 0, len(cells))
	for i, cell := range cells {
		v, err := strconv.Atoi(cell)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "Invalid Views value",
				"details": "row " + strconv.Itoa(i+1) + ": " + cell,
			})
			return
		}
		values = append(values, v)
	}

	c.JSON(http.StatusOK, gin.H{
		"name":    filepath.Base(path),
		"stage":   c.Param("stage"),
		"summary": views.Summarize(values),
	})
}

func (h *Handler) APIGetDatasetRSS(c *gin.Context) {
	path, ok := h.resolve(c)
	if !ok {
		return
	}

	ds, err := dataset.Read(path)
	if err != nil {
		slog.Error("Failed to read dataset", "path", path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read dataset"})
		return
	}

	records, err := ds.Records()
	if err != nil {
		slog.Error("Failed to decode records", "path", path, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid dataset", "details": err.Error()})
		return
	}

	name := filepath.Base(path)
	link := "http://" + c.Request.Host + "/api/datasets/" + c.Param("stage") + "/" + name

	out, err := h.generator.Run(rss.Feed{
		Title:    name,
		Link:     link,
		SelfLink: link + "/rss",
		Version:  h.version,
	}, records)
	if err != nil {
		slog.Error("RSS generation error", "path", path, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(records)))
	c.String(http.StatusOK, out)
}

// resolve maps the :stage and :name parameters to a file inside the stage
// directory and writes the error response when that is not possible.
func (h *Handler) resolve(c *gin.Context) (string, bool) {
	stage, ok := h.stages[c.Param("stage")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown stage"})
		return "", false
	}

	name := c.Param("name")
	if !validName(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dataset name"})
		return "", false
	}

	path := filepath.Join(stage.Dir, name)
	artifacts, err := dataset.List(stage.Dir, stage.Prefix)
	if err != nil {
		slog.Error("Failed to list datasets", "stage", stage.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list datasets"})
		return "", false
	}
	for _, artifact := range artifacts {
		if artifact.Name == name {
			return path, true
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Dataset not found"})
	return "", false
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return filepath.Ext(name) == ".csv"
}
