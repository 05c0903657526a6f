// Package config resolves transjson settings from built-in defaults,
// .transjson.yaml, .env, TRANSJSON_* environment variables and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Engine types.
const (
	EngineHTTP   = "http"
	EngineLambda = "lambda"
)

// Built-in defaults.
const (
	DefaultInput        = "data/input/example.json"
	DefaultOutputDir    = "data/output"
	DefaultOutputPrefix = "translated_example_"
	DefaultSourceLang   = "en"
	DefaultModel        = "facebook/m2m100_418M"
	DefaultLogFile      = "logs/translation.log"
	DefaultEngineURL    = "http://localhost:8008"
)

// DefaultLanguages are the target languages used when none are configured.
var DefaultLanguages = []string{"es", "fr", "de", "zh"}

// Environment variables read after .env is loaded.
const (
	EnvEngineURL      = "TRANSJSON_ENGINE_URL"
	EnvAPIKey         = "TRANSJSON_API_KEY"
	EnvLambdaFunction = "TRANSJSON_LAMBDA_FUNCTION"
	EnvAWSRegion      = "TRANSJSON_AWS_REGION"
	EnvLogFile        = "TRANSJSON_LOG_FILE"
)

// Config holds the resolved settings for a run.
type Config struct {
	// Input is the JSON document to translate.
	Input string `yaml:"input,omitempty"`
	// OutputDir receives one <prefix><lang>.json file per language.
	OutputDir string `yaml:"output_dir,omitempty"`
	// OutputPrefix is prepended to the language code in output names.
	OutputPrefix string `yaml:"output_prefix,omitempty"`
	// Languages are the target language codes, in processing order.
	Languages []string `yaml:"languages,omitempty"`
	// SourceLang is the language of the input strings.
	SourceLang string `yaml:"source_lang,omitempty"`
	// Model is the pretrained model the engine loads.
	Model string `yaml:"model,omitempty"`
	// LogFile is the append-only audit log.
	LogFile string `yaml:"log_file,omitempty"`
	// KeepGoing continues with the next language after a failure.
	KeepGoing bool `yaml:"keep_going,omitempty"`
	// Engine selects and configures the translation backend.
	Engine Engine `yaml:"engine,omitempty"`
}

// Engine configures the translation backend.
type Engine struct {
	// Type is "http" or "lambda".
	Type string `yaml:"type,omitempty"`
	// URL is the base URL of the model server (http).
	URL string `yaml:"url,omitempty"`
	// APIKey is sent as a bearer token (http).
	APIKey string `yaml:"api_key,omitempty"`
	// Proxy overrides HTTP(S)_PROXY (http).
	Proxy string `yaml:"proxy,omitempty"`
	// Timeout bounds each engine request; zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// LambdaFunction is the function name or ARN (lambda).
	LambdaFunction string `yaml:"lambda_function,omitempty"`
	// AWSRegion overrides the region from the AWS config chain (lambda).
	AWSRegion string `yaml:"aws_region,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Input:        DefaultInput,
		OutputDir:    DefaultOutputDir,
		OutputPrefix: DefaultOutputPrefix,
		Languages:    append([]string(nil), DefaultLanguages...),
		SourceLang:   DefaultSourceLang,
		Model:        DefaultModel,
		LogFile:      DefaultLogFile,
		Engine: Engine{
			Type: EngineHTTP,
			URL:  DefaultEngineURL,
		},
	}
}

// Load resolves the configuration for rootDir: defaults, then
// .transjson.yaml, then .env and the TRANSJSON_* variables. Relative paths
// from the defaults or the file are joined onto rootDir; paths from the
// environment or flags stay relative to the working directory.
func Load(rootDir string) (*Config, error) {
	cfg := Default()

	f, err := LoadFile(rootDir)
	if err != nil {
		return nil, err
	}
	if f != nil {
		cfg.merge(f)
	}
	cfg.Input = resolvePath(rootDir, cfg.Input)
	cfg.OutputDir = resolvePath(rootDir, cfg.OutputDir)
	cfg.LogFile = resolvePath(rootDir, cfg.LogFile)

	if err := loadDotEnv(filepath.Join(rootDir, ".env")); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolvePath joins a relative path onto root.
func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) || root == "" || root == "." {
		return path
	}
	return filepath.Join(root, path)
}

// loadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// environment holds the TRANSJSON_* variables.
type environment struct {
	EngineURL      string `envconfig:"TRANSJSON_ENGINE_URL"`
	APIKey         string `envconfig:"TRANSJSON_API_KEY"`
	LambdaFunction string `envconfig:"TRANSJSON_LAMBDA_FUNCTION"`
	AWSRegion      string `envconfig:"TRANSJSON_AWS_REGION"`
	LogFile        string `envconfig:"TRANSJSON_LOG_FILE"`
}

func (c *Config) applyEnv() error {
	var env environment
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	setString(&c.Engine.URL, env.EngineURL)
	setString(&c.Engine.APIKey, env.APIKey)
	setString(&c.Engine.LambdaFunction, env.LambdaFunction)
	setString(&c.Engine.AWSRegion, env.AWSRegion)
	setString(&c.LogFile, env.LogFile)
	return nil
}

// merge copies every field set in f over c.
func (c *Config) merge(f *Config) {
	setString(&c.Input, f.Input)
	setString(&c.OutputDir, f.OutputDir)
	setString(&c.OutputPrefix, f.OutputPrefix)
	setString(&c.SourceLang, f.SourceLang)
	setString(&c.Model, f.Model)
	setString(&c.LogFile, f.LogFile)
	if len(f.Languages) > 0 {
		c.Languages = append([]string(nil), f.Languages...)
	}
	if f.KeepGoing {
		c.KeepGoing = true
	}

	setString(&c.Engine.Type, f.Engine.Type)
	setString(&c.Engine.URL, f.Engine.URL)
	setString(&c.Engine.APIKey, f.Engine.APIKey)
	setString(&c.Engine.Proxy, f.Engine.Proxy)
	setString(&c.Engine.LambdaFunction, f.Engine.LambdaFunction)
	setString(&c.Engine.AWSRegion, f.Engine.AWSRegion)
	if f.Engine.Timeout != 0 {
		c.Engine.Timeout = f.Engine.Timeout
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// langCodeRe matches the shape of a language code ("es", "zh", "pt-BR",
// "zh_Hans"). Whether the engine supports the code is checked separately.
var langCodeRe = regexp.MustCompile(`^[A-Za-z]{2,3}([-_][A-Za-z0-9]{2,8})*$`)

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input file is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("at least one target language is required")
	}
	for _, lang := range c.Languages {
		if !langCodeRe.MatchString(lang) {
			return fmt.Errorf("invalid language code %q", lang)
		}
	}
	if !langCodeRe.MatchString(c.SourceLang) {
		return fmt.Errorf("invalid source language code %q", c.SourceLang)
	}
	if c.Engine.Timeout < 0 {
		return fmt.Errorf("engine timeout must not be negative")
	}

	switch c.Engine.Type {
	case EngineHTTP:
		if c.Engine.URL == "" {
			return fmt.Errorf("engine URL is required for the %s engine (--engine-url or %s)", EngineHTTP, EnvEngineURL)
		}
	case EngineLambda:
		if c.Engine.LambdaFunction == "" {
			return fmt.Errorf("function name is required for the %s engine (--lambda-function or %s)", EngineLambda, EnvLambdaFunction)
		}
	default:
		return fmt.Errorf("unknown engine %q (valid: %s, %s)", c.Engine.Type, EngineHTTP, EngineLambda)
	}

	return nil
}

// ParseLanguages splits a comma-separated language list, dropping blanks.
func ParseLanguages(s string) []string {
	var langs []string
	for _, l := range strings.Split(s, ",") {
		l = strings.TrimSpace(l)
		if l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}
