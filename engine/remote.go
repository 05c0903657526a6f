package engine

import (
	"context"
	"errors"
	"fmt"
)

// Operation names understood by the model sidecars.
const (
	opEncode   = "encode"
	opGenerate = "generate"
	opDecode   = "decode"
)

// transport sends one operation to the model host and decodes its reply.
type transport interface {
	call(ctx context.Context, op string, req, resp any) error
}

type status struct {
	Error string `json:"error,omitempty"`
}

func (s status) err() error {
	if s.Error == "" {
		return nil
	}
	return errors.New(s.Error)
}

type encodeRequest struct {
	Text    string `json:"text"`
	SrcLang string `json:"src_lang"`
	Model   string `json:"model,omitempty"`
}

type encodeResponse struct {
	status
	InputIDs []int `json:"input_ids"`
}

type generateRequest struct {
	InputIDs         []int  `json:"input_ids"`
	ForcedBOSTokenID int    `json:"forced_bos_token_id"`
	Model            string `json:"model,omitempty"`
}

type generateResponse struct {
	status
	Sequences [][]int `json:"sequences"`
}

type decodeRequest struct {
	IDs               []int  `json:"ids"`
	SkipSpecialTokens bool   `json:"skip_special_tokens"`
	Model             string `json:"model,omitempty"`
}

type decodeResponse struct {
	status
	Text string `json:"text"`
}

// M2M100 is an Engine backed by a remotely hosted M2M100 model.
type M2M100 struct {
	t       transport
	model   string
	srcLang string
}

var _ Engine = (*M2M100)(nil)

func newM2M100(t transport, model string) *M2M100 {
	if model == "" {
		model = DefaultModel
	}
	return &M2M100{t: t, model: model, srcLang: "en"}
}

// Model returns the model name sent to the host.
func (m *M2M100) Model() string { return m.model }

// SourceLanguage returns the normalized source language code.
func (m *M2M100) SourceLanguage() string { return m.srcLang }

func (m *M2M100) SetSourceLanguage(code string) error {
	c, err := NormalizeCode(code)
	if err != nil {
		return fmt.Errorf("source language: %w", err)
	}
	m.srcLang = c
	return nil
}

func (m *M2M100) LanguageID(code string) (int, error) {
	return LanguageID(code)
}

func (m *M2M100) Encode(ctx context.Context, text string) ([]int, error) {
	var resp encodeResponse
	req := encodeRequest{Text: text, SrcLang: m.srcLang, Model: m.model}
	if err := m.t.call(ctx, opEncode, req, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	return resp.InputIDs, nil
}

func (m *M2M100) Generate(ctx context.Context, tokens []int, targetLangID int) ([]int, error) {
	var resp generateResponse
	req := generateRequest{InputIDs: tokens, ForcedBOSTokenID: targetLangID, Model: m.model}
	if err := m.t.call(ctx, opGenerate, req, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	if len(resp.Sequences) == 0 {
		return nil, fmt.Errorf("model returned no sequences")
	}
	return resp.Sequences[0], nil
}

func (m *M2M100) Decode(ctx context.Context, tokens []int) (string, error) {
	var resp decodeResponse
	req := decodeRequest{IDs: tokens, SkipSpecialTokens: true, Model: m.model}
	if err := m.t.call(ctx, opDecode, req, &resp); err != nil {
		return "", err
	}
	if err := resp.err(); err != nil {
		return "", err
	}
	return resp.Text, nil
}
