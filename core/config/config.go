// Package config loads the shell's typed settings file. This is the
// YAML layer under ~/.aisha/config.yaml; the executable rc file
// (~/.aisharc) is handled by the core package because its lines run
// through the interpreter.
package config

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ConfigurationName is the file name inside the state directory.
const ConfigurationName = "config.yaml"

// Configuration holds every tunable the shell reads at startup.
type Configuration struct {
	// Prompt is the default PS1 when the environment doesn't set one.
	Prompt string `json:"prompt"`

	// Color toggles ANSI color in messages; the prompt is not affected.
	Color bool `json:"color"`

	History History `json:"history"`

	AI AI `json:"ai"`
}

// History configures the persistent command log.
type History struct {
	// File is the history file path; ~ expands to the home directory.
	File string `json:"file" validate:"required"`
	// Size caps the number of retained entries.
	Size int `json:"size" validate:"gte=1,lte=100000"`
}

// AI configures the helper client.
type AI struct {
	// Endpoint is the HTTPS API base.
	Endpoint string `json:"endpoint" validate:"required,url"`
	// Model names the generation model.
	Model string `json:"model" validate:"required"`
	// KeyEnv is the environment variable holding the API key.
	KeyEnv string `json:"key_env" validate:"required"`
	// RequestsPerMinute bounds outbound calls.
	RequestsPerMinute int `json:"requests_per_minute" validate:"gte=1,lte=600"`
}

// Default returns the built-in configuration used when no file exists.
func Default() *Configuration {
	return &Configuration{
		Prompt: `\u@\h:\w\$ `,
		Color:  true,
		History: History{
			File: "~/.aisha_history",
			Size: 1000,
		},
		AI: AI{
			Endpoint:          "https://generativelanguage.googleapis.com",
			Model:             "gemini-2.0-flash",
			KeyEnv:            "GEMINI_API_KEY",
			RequestsPerMinute: 30,
		},
	}
}

// Validate checks the configuration for semantic errors, reporting
// field names from the json tags.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})
	return validate.Struct(c)
}
