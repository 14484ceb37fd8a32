package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/gridstorm/internal/config/loader"
	"github.com/dshills/gridstorm/internal/engine"
	"github.com/dshills/gridstorm/internal/engine/codec"
	"github.com/dshills/gridstorm/internal/export"
	"github.com/dshills/gridstorm/internal/logging"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "GRIDSTORM_"

// Config holds all settings.
type Config struct {
	Document DocumentConfig `toml:"document"`
	Logging  LoggingConfig  `toml:"logging"`
	Export   ExportConfig   `toml:"export"`
}

// DocumentConfig contains document engine settings.
type DocumentConfig struct {
	// Delimiter is a single character or one of tab, comma, semicolon, pipe.
	Delimiter string `toml:"delimiter"`
	// Encoding is assumed for files without a byte-order mark.
	Encoding string `toml:"encoding"`
	// LineEnding is used when a file has no line feed to detect one from.
	LineEnding       string `toml:"lineEnding"`
	MaxUndoEntries   int    `toml:"maxUndoEntries"`
	SampleThreshold  int    `toml:"sampleThreshold"`
	ProgressInterval int64  `toml:"progressInterval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ExportConfig contains export settings.
type ExportConfig struct {
	// Format is used when the output path has no recognized extension.
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Document: DocumentConfig{
			Delimiter:        ",",
			Encoding:         codec.UTF8.String(),
			LineEnding:       codec.LF.String(),
			MaxUndoEntries:   engine.DefaultMaxUndoEntries,
			SampleThreshold:  engine.DefaultSampleThreshold,
			ProgressInterval: engine.DefaultProgressInterval,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Export: ExportConfig{
			Format: export.HTML.String(),
		},
	}
}

// Load builds the configuration from defaults, the file at path (skipped
// when path is empty or the file does not exist) and the process
// environment.
func Load(path string) (*Config, error) {
	return LoadFrom(loader.DefaultFS(), path, loader.NewEnvLoader(EnvPrefix))
}

// LoadFrom is Load with an explicit file system and environment source.
func LoadFrom(fsys loader.FileSystem, path string, env loader.Loader) (*Config, error) {
	defaults, err := toMap(Default())
	if err != nil {
		return nil, err
	}
	// defaults stays untouched as the type reference for Coerce.
	merged := loader.Clone(defaults)

	type source struct {
		name string
		l    loader.Loader
	}
	sources := make([]source, 0, 2)
	if path != "" {
		sources = append(sources, source{path, loader.ForPath(fsys, path)})
	}
	if env != nil {
		sources = append(sources, source{"<environment>", env})
	}
	for _, src := range sources {
		layer, err := src.l.Load()
		if err != nil {
			return nil, err
		}
		if err := loader.Coerce(layer, defaults); err != nil {
			return nil, &ParseError{Path: src.name, Message: err.Error(), Err: err}
		}
		merged = loader.DeepMerge(merged, layer)
	}

	cfg, err := fromMap(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// toMap and fromMap convert through TOML so that the struct tags are the
// single description of the layout.
func toMap(c *Config) (map[string]any, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding defaults: %w", err)
	}
	return m, nil
}

func fromMap(m map[string]any) (*Config, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding merged config: %w", err)
	}
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &ParseError{Path: "<merged>", Message: err.Error(), Err: err}
	}
	return cfg, nil
}

var delimiterNames = map[string]rune{
	"tab":       '\t',
	"comma":     ',',
	"semicolon": ';',
	"pipe":      '|',
	"space":     ' ',
}

// ParseDelimiter accepts a single character or a delimiter name.
func ParseDelimiter(s string) (rune, error) {
	if r, ok := delimiterNames[strings.ToLower(s)]; ok {
		return r, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	switch r {
	case '"', '\n', '\r', utf8.RuneError:
		return 0, fmt.Errorf("delimiter %q cannot be used", s)
	}
	return r, nil
}

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	fail := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	if _, err := ParseDelimiter(c.Document.Delimiter); err != nil {
		fail("document.delimiter", err.Error(), c.Document.Delimiter)
	}
	if _, err := codec.ParseEncoding(c.Document.Encoding); err != nil {
		fail("document.encoding", err.Error(), c.Document.Encoding)
	}
	if _, ok := codec.ParseLineEnding(c.Document.LineEnding); !ok {
		fail("document.lineEnding", "must be lf or crlf", c.Document.LineEnding)
	}
	if c.Document.MaxUndoEntries <= 0 {
		fail("document.maxUndoEntries", "must be positive", c.Document.MaxUndoEntries)
	}
	if c.Document.SampleThreshold <= 0 {
		fail("document.sampleThreshold", "must be positive", c.Document.SampleThreshold)
	}
	if c.Document.ProgressInterval <= 0 {
		fail("document.progressInterval", "must be positive", c.Document.ProgressInterval)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		fail("logging.level", err.Error(), c.Logging.Level)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		fail("logging.format", err.Error(), c.Logging.Format)
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		fail("export.format", err.Error(), c.Export.Format)
	}

	return errors.Join(errs...)
}

// DocumentOptions converts the document and logging settings into engine
// options.
func (c *Config) DocumentOptions(logger *slog.Logger) ([]engine.Option, error) {
	delim, err := ParseDelimiter(c.Document.Delimiter)
	if err != nil {
		return nil, err
	}
	enc, err := codec.ParseEncoding(c.Document.Encoding)
	if err != nil {
		return nil, err
	}
	le, ok := codec.ParseLineEnding(c.Document.LineEnding)
	if !ok {
		return nil, fmt.Errorf("unknown line ending %q", c.Document.LineEnding)
	}

	opts := []engine.Option{
		engine.WithDelimiter(delim),
		engine.WithEncoding(enc),
		engine.WithLineEnding(le),
		engine.WithMaxUndoEntries(c.Document.MaxUndoEntries),
		engine.WithSampleThreshold(c.Document.SampleThreshold),
		engine.WithProgressInterval(c.Document.ProgressInterval),
	}
	if logger != nil {
		opts = append(opts, engine.WithLogger(logger))
	}
	return opts, nil
}
