// Package translate translates the string fields of JSON documents with a
// translation engine and writes one output document per target language.
package translate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/minios-linux/transjson/document"
	"github.com/minios-linux/transjson/engine"
)

// DefaultSourceLang is the language input documents are assumed to be in.
const DefaultSourceLang = "en"

// DefaultOutputPrefix is prepended to the language code in output file names.
const DefaultOutputPrefix = "translated_example_"

// TranslationError is returned when the engine fails on a single field.
type TranslationError struct {
	Text string
	Lang string
	Err  error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translating %q to %s: %v", truncate(e.Text, 80), e.Lang, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// ---------------------------------------------------------------------------
// Translation options
// ---------------------------------------------------------------------------

// Options controls the translation behavior.
type Options struct {
	// SourceLang is the language of the input strings (default "en").
	SourceLang string
	// OutputPrefix is the output file name prefix (default "translated_example_").
	OutputPrefix string
	// KeepGoing continues with the next language when one fails and
	// reports all failures at the end.
	KeepGoing bool
	// DryRun loads the input and reports planned outputs without calling
	// the engine or writing files.
	DryRun bool
	// Logger receives the audit log lines (load, translate, save).
	Logger *zap.Logger
	// OnProgress is called after each string field is translated.
	OnProgress func(lang string, done, total int)
	// OnLog emits user-facing messages.
	OnLog func(format string, args ...any)
	// OnError emits user-facing error messages.
	OnError func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveSourceLang() string {
	if o.SourceLang != "" {
		return o.SourceLang
	}
	return DefaultSourceLang
}

func (o *Options) effectiveOutputPrefix() string {
	if o.OutputPrefix != "" {
		return o.OutputPrefix
	}
	return DefaultOutputPrefix
}

// ---------------------------------------------------------------------------
// Translator
// ---------------------------------------------------------------------------

// Translator translates fields and documents with a shared engine.
type Translator struct {
	engine engine.Engine
	opts   Options
	logger *zap.Logger
	log    *zap.SugaredLogger
}

// New configures e for opts.SourceLang and returns a Translator using it.
func New(e engine.Engine, opts Options) (*Translator, error) {
	if err := e.SetSourceLanguage(opts.effectiveSourceLang()); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Translator{
		engine: e,
		opts:   opts,
		logger: logger,
		log:    logger.Sugar(),
	}, nil
}

// TranslateField translates a single string into lang.
func (t *Translator) TranslateField(ctx context.Context, text, lang string) (string, error) {
	out, err := engine.Translate(ctx, t.engine, text, lang)
	if err != nil {
		t.log.Errorf("Error translating text: %s to %s - %v", text, lang, err)
		return "", &TranslationError{Text: text, Lang: lang, Err: err}
	}

	t.log.Infof("Successfully translated text: %s to %s", text, lang)
	return out, nil
}

// TranslateDocument returns a new document in which every top-level string
// value of doc is translated into lang. Other values are copied unchanged and
// nested objects and arrays are not descended into. The first field failure
// aborts the document and no partial result is returned.
func (t *Translator) TranslateDocument(ctx context.Context, doc *document.Document, lang string) (*document.Document, error) {
	out := document.New()
	total := len(doc.StringKeys())
	done := 0

	for _, key := range doc.Keys() {
		text, ok := doc.String(key)
		if !ok {
			raw, _ := doc.Get(key)
			out.Set(key, raw)
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		translated, err := t.TranslateField(ctx, text, lang)
		if err != nil {
			return nil, err
		}
		out.SetString(key, translated)

		done++
		if t.opts.OnProgress != nil {
			t.opts.OnProgress(lang, done, total)
		}
	}

	return out, nil
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
