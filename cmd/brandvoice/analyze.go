package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/brand-voice/internal/extract"
	"github.com/jonathan/brand-voice/internal/observability"
	"github.com/jonathan/brand-voice/internal/voice"
)

type analyzeOptions struct {
	files  []string
	texts  []string
	save   string
	asJSON bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Derive a tone profile from sample text and documents",
		Long: "Extracts text from the given files (TXT, DOCX, PDF) and pasted samples, asks the model for a " +
			"tone profile and prints it. Use --save to keep the profile in the local store.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runAnalyze(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.files, "file", "f", nil, "Path to a sample document (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.texts, "text", "t", nil, "Pasted text sample (repeatable)")
	cmd.Flags().StringVar(&opts.save, "save", "", "Save the resulting profile under this name")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the profile as JSON")
	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, opts analyzeOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)

	docs, err := readDocuments(opts.files)
	if err != nil {
		return err
	}

	var files []extract.ExtractedText
	if len(docs) > 0 {
		files = a.newExtractor().ExtractAll(ctx, docs)
		if !opts.asJSON {
			printer.PrintExtraction(files)
		}
	}

	// missing input is reported before provider credentials are checked
	if _, err := extract.Combine(opts.texts, files); errors.Is(err, extract.ErrNoInput) {
		return fmt.Errorf("tone analysis failed: %w", voice.ErrNoInput)
	}

	client, err := a.newClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	result, err := voice.NewService(client, a.logger).Analyze(ctx, voice.AnalyzeInput{
		Texts: opts.texts,
		Files: files,
	})
	if err != nil {
		var malformed *voice.MalformedOutputError
		var invalid *voice.ValidationError
		switch {
		case errors.As(err, &malformed):
			printer.PrintRawResponse(malformed.Raw)
		case errors.As(err, &invalid):
			printer.PrintRawResponse(invalid.Raw)
		}
		return fmt.Errorf("tone analysis failed: %w", err)
	}

	if opts.asJSON {
		data, err := json.MarshalIndent(result.Profile, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal profile: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(data))
	} else {
		printer.PrintToneProfile("", result.Profile)
	}

	if opts.save == "" {
		return nil
	}

	store, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	index, err := store.Save(ctx, opts.save, *result.Profile)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	a.logger.Info("profile saved", zap.String("name", opts.save), zap.Int("index", index))
	_, _ = color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "✓ Saved profile %q at index %d\n", opts.save, index)
	return nil
}

// readDocuments loads files from disk. The type is left for the extractor to resolve.
func readDocuments(paths []string) ([]extract.RawDocument, error) {
	docs := make([]extract.RawDocument, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, extract.RawDocument{
			Name:    filepath.Base(path),
			Size:    int64(len(content)),
			Content: content,
		})
	}
	return docs, nil
}
