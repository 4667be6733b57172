package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/brand-voice/internal/observability"
	"github.com/jonathan/brand-voice/internal/schemas"
	"github.com/jonathan/brand-voice/internal/types"
	"github.com/jonathan/brand-voice/internal/voice"
)

// errProfileSource is returned unless exactly one profile source flag is given
var errProfileSource = errors.New("exactly one of --profile, --index or --profile-file is required")

type generateOptions struct {
	profileName string
	index       int
	profileFile string
	topic       string
	asJSON      bool
}

func newGenerateCmd(a *app) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write short content about a topic in a saved voice",
		Long: "Generates a short piece about --topic using a saved profile (by --profile name or --index) " +
			"or a profile JSON file (--profile-file).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("index") {
				opts.index = -1
			}
			return a.runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.profileName, "profile", "", "Name of a saved profile (first match)")
	cmd.Flags().IntVar(&opts.index, "index", 0, "Index of a saved profile")
	cmd.Flags().StringVar(&opts.profileFile, "profile-file", "", "Path to a tone profile JSON file")
	cmd.Flags().StringVar(&opts.topic, "topic", "", "Topic to write about (required)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the result as JSON")

	if err := cmd.MarkFlagRequired("topic"); err != nil {
		panic(fmt.Sprintf("failed to mark topic flag as required: %v", err))
	}
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, opts generateOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	profile, err := a.resolveProfile(ctx, opts)
	if err != nil {
		return err
	}

	client, err := a.newClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	content, err := voice.NewService(client, a.logger).Generate(ctx, profile, opts.topic)
	if err != nil {
		return fmt.Errorf("content generation failed: %w", err)
	}

	if opts.asJSON {
		data, err := json.MarshalIndent(content, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal content: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(data))
		return nil
	}

	observability.NewPrinter(out).PrintGenerated(opts.topic, content)
	return nil
}

// resolveProfile loads the profile named by exactly one of the source flags
func (a *app) resolveProfile(ctx context.Context, opts generateOptions) (*types.ToneProfile, error) {
	sources := 0
	if opts.profileName != "" {
		sources++
	}
	if opts.index >= 0 {
		sources++
	}
	if opts.profileFile != "" {
		sources++
	}
	if sources != 1 {
		return nil, errProfileSource
	}

	if opts.profileFile != "" {
		return loadProfileFile(opts.profileFile)
	}

	store, closeStore, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeStore() }()

	var saved *types.SavedProfile
	if opts.profileName != "" {
		saved, _, err = store.FindByName(ctx, opts.profileName)
	} else {
		saved, err = store.Get(ctx, opts.index)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load saved profile: %w", err)
	}
	return &saved.Profile, nil
}

// loadProfileFile validates path against the tone profile schema before decoding it
func loadProfileFile(path string) (*types.ToneProfile, error) {
	if err := schemas.ValidateToneProfileFile(path); err != nil {
		return nil, fmt.Errorf("invalid profile file %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	var profile types.ToneProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile JSON: %w", err)
	}
	return &profile, nil
}
