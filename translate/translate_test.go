package translate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/minios-linux/transjson/document"
	"github.com/minios-linux/transjson/engine"
)

// fakeEngine "translates" by tagging text with the target language code.
type fakeEngine struct {
	src    string
	texts  []string
	failOn map[string]bool
	calls  int
}

func (f *fakeEngine) SetSourceLanguage(code string) error {
	c, err := engine.NormalizeCode(code)
	if err != nil {
		return err
	}
	f.src = c
	return nil
}

func (f *fakeEngine) Encode(_ context.Context, text string) ([]int, error) {
	f.calls++
	if f.failOn[text] {
		return nil, errors.New("tokenizer exploded")
	}
	f.texts = append(f.texts, text)
	return []int{len(f.texts) - 1}, nil
}

func (f *fakeEngine) Generate(_ context.Context, tokens []int, langID int) ([]int, error) {
	return []int{langID, tokens[0]}, nil
}

func (f *fakeEngine) Decode(_ context.Context, tokens []int) (string, error) {
	code := engine.Languages()[tokens[0]-128004]
	return fmt.Sprintf("__%s__ %s[%s]</s>", code, f.texts[tokens[1]], code), nil
}

func (f *fakeEngine) LanguageID(code string) (int, error) {
	return engine.LanguageID(code)
}

func mustParse(t *testing.T, s string) *document.Document {
	t.Helper()
	d, err := document.Parse([]byte(s))
	require.NoError(t, err)
	return d
}

func newTranslator(t *testing.T, e engine.Engine, opts Options) *Translator {
	t.Helper()
	tr, err := New(e, opts)
	require.NoError(t, err)
	return tr
}

func TestNew_SetsSourceLanguage(t *testing.T) {
	e := &fakeEngine{}
	newTranslator(t, e, Options{})
	assert.Equal(t, "en", e.src)

	_, err := New(e, Options{SourceLang: "xx"})
	assert.ErrorIs(t, err, engine.ErrUnsupportedLanguage)
}

func TestTranslateField_LogsEachAttempt(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := &fakeEngine{failOn: map[string]bool{"bad": true}}
	tr := newTranslator(t, e, Options{Logger: zap.New(core)})

	got, err := tr.TranslateField(context.Background(), "hello", "es")
	require.NoError(t, err)
	assert.Equal(t, "hello[es]", got)

	_, err = tr.TranslateField(context.Background(), "bad", "fr")
	var terr *TranslationError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "bad", terr.Text)
	assert.Equal(t, "fr", terr.Lang)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Successfully translated text: hello to es", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Contains(t, entries[1].Message, "Error translating text: bad to fr - ")
}

func TestTranslateDocument_KeysOrderAndTypes(t *testing.T) {
	in := mustParse(t, `{"greeting": "hello", "count": 3, "active": true, "none": null, "nested": {"x": "not translated"}, "list": ["a"], "empty": ""}`)
	tr := newTranslator(t, &fakeEngine{}, Options{})

	out, err := tr.TranslateDocument(context.Background(), in, "es")
	require.NoError(t, err)

	assert.Equal(t, in.Keys(), out.Keys())

	for _, key := range []string{"count", "active", "none", "nested", "list"} {
		want, _ := in.Get(key)
		got, _ := out.Get(key)
		assert.Equal(t, string(want), string(got), "key %q must pass through unchanged", key)
	}

	s, _ := out.String("greeting")
	assert.Equal(t, "hello[es]", s)
	s, _ = out.String("empty")
	assert.Equal(t, "[es]", s)

	orig, _ := in.String("greeting")
	assert.Equal(t, "hello", orig, "input document must not be mutated")
}

func TestTranslateDocument_FailureReturnsNoDocument(t *testing.T) {
	in := mustParse(t, `{"a": "ok", "b": "bad", "c": "never"}`)
	e := &fakeEngine{failOn: map[string]bool{"bad": true}}
	tr := newTranslator(t, e, Options{})

	out, err := tr.TranslateDocument(context.Background(), in, "de")
	assert.Nil(t, out)
	var terr *TranslationError
	assert.ErrorAs(t, err, &terr)
	assert.Equal(t, 2, e.calls, "translation must stop at the failing field")
}

func TestTranslateDocument_Progress(t *testing.T) {
	in := mustParse(t, `{"a": "x", "n": 1, "b": "y"}`)
	var seen []int
	tr := newTranslator(t, &fakeEngine{}, Options{
		OnProgress: func(lang string, done, total int) {
			assert.Equal(t, "fr", lang)
			assert.Equal(t, 2, total)
			seen = append(seen, done)
		},
	})

	_, err := tr.TranslateDocument(context.Background(), in, "fr")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestTranslateDocument_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := &fakeEngine{}
	tr := newTranslator(t, e, Options{})
	_, err := tr.TranslateDocument(ctx, mustParse(t, `{"a": "x"}`), "fr")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, e.calls)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo", 5))
	assert.Equal(t, "hé...", truncate("héllo", 2))
}
