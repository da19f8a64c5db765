package api

import (
	"github.com/lysyi3m/tg-comb/app/dataset"
	"github.com/lysyi3m/tg-comb/app/rss"
)

// Stage is one directory of CSV artifacts exposed by the API.
type Stage struct {
	Name   string
	Dir    string
	Prefix string
}

type GeneratorInterface interface {
	Run(feed rss.Feed, records []dataset.Record) (string, error)
}

var _ GeneratorInterface = (*rss.Generator)(nil)

type Handler struct {
	stages    map[string]Stage
	order     []string
	generator GeneratorInterface
	version   string
}

type DatasetInfo struct {
	dataset.Artifact
	Stage string `json:"stage"`
	Rows  *int   `json:"rows,omitempty"`
}
