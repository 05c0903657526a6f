package translate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/minios-linux/transjson/document"
)

// PlannedOutput describes one output file a run will produce.
type PlannedOutput struct {
	Lang   string
	Path   string
	Fields int
}

// OutputPath returns dir/<prefix><lang>.json.
func OutputPath(dir, prefix, lang string) string {
	return filepath.Join(dir, prefix+lang+".json")
}

// Plan lists the outputs for doc, one per distinct language, in order.
func (t *Translator) Plan(doc *document.Document, outputDir string, langs []string) []PlannedOutput {
	fields := len(doc.StringKeys())
	var plan []PlannedOutput
	for _, lang := range UniqueLanguages(langs) {
		plan = append(plan, PlannedOutput{
			Lang:   lang,
			Path:   OutputPath(outputDir, t.opts.effectiveOutputPrefix(), lang),
			Fields: fields,
		})
	}
	return plan
}

// Run loads inputPath once and, for each language in order, translates the
// whole document and saves it under outputDir.
//
// By default the first failure aborts the remaining languages and is returned
// as is. With KeepGoing the failing language is skipped and all failures are
// returned together after the last language. Files already written for
// earlier languages are left in place either way.
func (t *Translator) Run(ctx context.Context, inputPath, outputDir string, langs []string) error {
	if !t.opts.DryRun {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	doc, err := document.Load(inputPath, t.logger)
	if err != nil {
		return err
	}

	plan := t.Plan(doc, outputDir, langs)

	if t.opts.DryRun {
		for _, p := range plan {
			t.opts.log("Would write %s (%d strings)", p.Path, p.Fields)
		}
		return nil
	}

	var failed *multierror.Error
	for _, p := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}

		t.opts.log("Translating %s (%d strings)...", p.Lang, p.Fields)

		if err := t.runLanguage(ctx, doc, p); err != nil {
			if !t.opts.KeepGoing || ctx.Err() != nil {
				return err
			}
			t.opts.logError("Error translating %s: %v", p.Lang, err)
			failed = multierror.Append(failed, fmt.Errorf("%s: %w", p.Lang, err))
			continue
		}

		t.opts.log("Saved %s", p.Path)
	}

	return failed.ErrorOrNil()
}

func (t *Translator) runLanguage(ctx context.Context, doc *document.Document, p PlannedOutput) error {
	translated, err := t.TranslateDocument(ctx, doc, p.Lang)
	if err != nil {
		return err
	}
	return document.Save(translated, p.Path, t.logger)
}

// UniqueLanguages drops empty and repeated codes, keeping the first occurrence.
func UniqueLanguages(langs []string) []string {
	return lo.Uniq(lo.Filter(langs, func(l string, _ int) bool {
		return l != ""
	}))
}
