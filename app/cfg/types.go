package cfg

import "path/filepath"

const (
	CommandIngest     = "ingest"
	CommandPreprocess = "preprocess"
	CommandViews      = "views"
	CommandServe      = "serve"

	SourcePreview = "preview"
	SourceBridge  = "bridge"
)

type Cfg struct {
	// Command selected on the command line
	Command string

	// Application configuration
	ChannelsDir string
	DataDir     string
	Timeout     int

	// Command configuration
	Ingest     IngestCfg
	Preprocess PreprocessCfg
	Views      ViewsCfg
	Serve      ServeCfg

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

type IngestCfg struct {
	Channels   []string
	Limit      int
	Source     string
	PreviewURL string
	BridgeURL  string
	BridgeKey  string
	Media      bool
	Preprocess bool
}

type PreprocessCfg struct {
	Input  string
	Output string
}

type ViewsCfg struct {
	Input       string
	GroupColumn string
	Seed        uint64
	Synthetic   bool
}

type ServeCfg struct {
	Port         string
	APIAccessKey string
}

func (c *Cfg) RawDir() string {
	return filepath.Join(c.DataDir, "raw")
}

func (c *Cfg) PreprocessedDir() string {
	return filepath.Join(c.DataDir, "preprocessed")
}

func (c *Cfg) MediaDir() string {
	return filepath.Join(c.DataDir, "photos")
}
