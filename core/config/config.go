package config

import (
	_ "embed"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

// ConfigurationName is the file name looked up under the configuration
// directory.
const ConfigurationName = "config.yaml"

// Config holds the interpreter's startup settings. Every field is
// optional: the embedded default supplies stock values and environment
// variables (PS1, HISTFILE, HISTSIZE, SHELL_VI_MODE) override them at
// run time.
type Config struct {
	// Prompt is the PS1-style template rendered before each interactive
	// line.
	Prompt string `json:"prompt"`
	// ColorPrompt renders the prompt with ANSI colors when stdout is a
	// terminal.
	ColorPrompt bool `json:"color_prompt"`

	HistoryFile string `json:"history_file"`
	HistorySize int    `json:"history_size" validate:"gte=0"`

	// ViMode starts line editing in vi mode instead of emacs mode.
	ViMode bool `json:"vi_mode"`

	// Aliases are preloaded into the alias table before the first line.
	Aliases map[string]string `json:"aliases"`
	// Export entries are set into the environment unless already
	// present.
	Export map[string]string `json:"export"`

	// LogFile receives the JSON-lines session event log. Empty disables
	// event logging.
	LogFile string `json:"log_file"`
}

// Validate the configuration for basic semantic errors.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Default returns the embedded stock configuration.
func Default() *Config {
	var out Config
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
