package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/smartresume/internal/model"
	"github.com/amishk599/smartresume/internal/session"
)

var (
	genJobTitle string
	genSkills   []string
	genLevel    string
	genFormat   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Submit the form once and print the outline",
	Long:  "One-shot submission: fills the form from flags, generates resume sections, prints them, exits.",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genJobTitle, "job-title", "", "target job title")
	generateCmd.Flags().StringArrayVar(&genSkills, "skill", nil, "a skill to include (repeatable)")
	generateCmd.Flags().StringVar(&genLevel, "level", string(model.Beginner), "experience level: Beginner, Intermediate or Expert")
	generateCmd.Flags().StringVar(&genFormat, "format", string(model.Chronological), "resume format: Chronological, Functional or Hybrid")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctrl, closeProvider, err := setupController(ctx, &cfg.Inference, logger)
	if err != nil {
		logger.Error("failed to set up inference", "error", err)
		os.Exit(1)
	}
	defer closeProvider()

	st := session.NewState()
	ctrl.SetJobTitle(st, genJobTitle)
	for _, s := range genSkills {
		ctrl.AddSkill(st, s)
	}
	if err := ctrl.SetExperienceLevel(st, genLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		os.Exit(1)
	}
	if err := ctrl.SetResumeFormat(st, genFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		os.Exit(1)
	}

	err = ctrl.Submit(ctx, st)
	f := st.Form()
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		fmt.Fprintf(os.Stderr, "Warning: %s\n", ve.Message)
		os.Exit(1)
	case err != nil:
		fmt.Fprintln(os.Stderr, f.LastError)
		os.Exit(1)
	}

	fmt.Printf("Resume Sections for %s\n\n%s\n\n", f.JobTitle, f.LastGeneratedSections)
	fmt.Printf("You've selected the %s resume format.\n", f.ResumeFormat)
	return nil
}
