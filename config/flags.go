package config

import (
	"strings"

	"github.com/spf13/pflag"
)

// Flag names shared by the CLI and ApplyFlags.
const (
	FlagInput          = "input"
	FlagOutputDir      = "output-dir"
	FlagOutputPrefix   = "output-prefix"
	FlagLang           = "lang"
	FlagSourceLang     = "source-lang"
	FlagModel          = "model"
	FlagLogFile        = "log-file"
	FlagKeepGoing      = "keep-going"
	FlagEngine         = "engine"
	FlagEngineURL      = "engine-url"
	FlagAPIKey         = "api-key"
	FlagProxy          = "proxy"
	FlagTimeout        = "timeout"
	FlagLambdaFunction = "lambda-function"
	FlagAWSRegion      = "aws-region"
)

// RegisterFlags adds the configuration flags to fs. Defaults shown in help
// are the built-in ones; only flags the user sets override other layers.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.StringP(FlagInput, "i", d.Input, "Input JSON file")
	fs.StringP(FlagOutputDir, "o", d.OutputDir, "Directory for translated files")
	fs.String(FlagOutputPrefix, d.OutputPrefix, "Output file name prefix")
	fs.StringP(FlagLang, "l", strings.Join(d.Languages, ","), "Target languages (comma-separated)")
	fs.String(FlagSourceLang, d.SourceLang, "Source language")
	fs.String(FlagModel, d.Model, "Translation model")
	fs.String(FlagLogFile, d.LogFile, "Audit log file")
	fs.Bool(FlagKeepGoing, false, "Continue with the next language when one fails")

	fs.String(FlagEngine, d.Engine.Type, "Engine backend: http, lambda")
	fs.String(FlagEngineURL, d.Engine.URL, "Base URL of the model server")
	fs.String(FlagAPIKey, "", "API key for the model server")
	fs.String(FlagProxy, "", "HTTP/HTTPS proxy URL (default: from HTTP_PROXY/HTTPS_PROXY)")
	fs.Duration(FlagTimeout, 0, "Engine request timeout (0 = no timeout)")
	fs.String(FlagLambdaFunction, "", "AWS Lambda function hosting the model")
	fs.String(FlagAWSRegion, "", "AWS region (default: from the AWS config chain)")
}

// ApplyFlags copies every flag the user explicitly set over c.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	str := func(name string, dst *string) {
		if err != nil || !fs.Changed(name) {
			return
		}
		*dst, err = fs.GetString(name)
	}

	str(FlagInput, &c.Input)
	str(FlagOutputDir, &c.OutputDir)
	str(FlagOutputPrefix, &c.OutputPrefix)
	str(FlagSourceLang, &c.SourceLang)
	str(FlagModel, &c.Model)
	str(FlagLogFile, &c.LogFile)
	str(FlagEngine, &c.Engine.Type)
	str(FlagEngineURL, &c.Engine.URL)
	str(FlagAPIKey, &c.Engine.APIKey)
	str(FlagProxy, &c.Engine.Proxy)
	str(FlagLambdaFunction, &c.Engine.LambdaFunction)
	str(FlagAWSRegion, &c.Engine.AWSRegion)
	if err != nil {
		return err
	}

	if fs.Changed(FlagLang) {
		s, err := fs.GetString(FlagLang)
		if err != nil {
			return err
		}
		c.Languages = ParseLanguages(s)
	}
	if fs.Changed(FlagKeepGoing) {
		if c.KeepGoing, err = fs.GetBool(FlagKeepGoing); err != nil {
			return err
		}
	}
	if fs.Changed(FlagTimeout) {
		if c.Engine.Timeout, err = fs.GetDuration(FlagTimeout); err != nil {
			return err
		}
	}

	c.Engine.Type = strings.ToLower(c.Engine.Type)
	return nil
}
