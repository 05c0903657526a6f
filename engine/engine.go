// Package engine is the boundary to the pretrained translation model.
//
// The model itself (tokenizer and weights) lives outside this process, behind
// a model-serving sidecar reached over HTTP or behind an AWS Lambda function.
// The rest of transjson only sees the Engine interface and the Translate
// helper, which turns it into a plain text-to-text function keyed by target
// language code.
package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsupportedLanguage is returned for language codes the model does not know.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Engine is a tokenize → generate → decode translation model.
//
// An Engine is constructed once and shared by every translation call.
// SetSourceLanguage is part of setup and must not be called concurrently
// with the other methods.
type Engine interface {
	// SetSourceLanguage fixes the language that Encode assumes.
	SetSourceLanguage(code string) error
	// Encode tokenizes text in the source language.
	Encode(ctx context.Context, text string) ([]int, error)
	// Generate runs inference, forcing the output to start with the given
	// target language token.
	Generate(ctx context.Context, tokens []int, targetLangID int) ([]int, error)
	// Decode turns generated tokens back into text.
	Decode(ctx context.Context, tokens []int) (string, error)
	// LanguageID maps a language code to the model's language token id.
	LanguageID(code string) (int, error)
}

// Translate translates text into target using e.
func Translate(ctx context.Context, e Engine, text, target string) (string, error) {
	langID, err := e.LanguageID(target)
	if err != nil {
		return "", err
	}

	tokens, err := e.Encode(ctx, text)
	if err != nil {
		return "", fmt.Errorf("encoding: %w", err)
	}

	generated, err := e.Generate(ctx, tokens, langID)
	if err != nil {
		return "", fmt.Errorf("generating: %w", err)
	}

	out, err := e.Decode(ctx, generated)
	if err != nil {
		return "", fmt.Errorf("decoding: %w", err)
	}

	return StripControlTokens(out), nil
}

var controlToken = regexp.MustCompile(`</?s>|<pad>|<unk>|__[a-z]{2,3}__`)

// StripControlTokens removes sequence markers and language tokens that a
// decoder may leave in its output.
func StripControlTokens(text string) string {
	out := controlToken.ReplaceAllStringFunc(text, func(tok string) string {
		if strings.HasPrefix(tok, "__") {
			if _, ok := langIndex[strings.Trim(tok, "_")]; !ok {
				return tok
			}
		}
		return ""
	})
	return strings.TrimSpace(out)
}
