package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	infoKeywords int
	infoRecent   int
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the loaded corpus and recent transcripts",
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().IntVarP(&infoKeywords, "keywords", "k", 10, "number of keywords to show")
	infoCmd.Flags().IntVarP(&infoRecent, "recent", "r", 5, "number of recent transcripts to show (0 hides them)")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	c := a.bot.Corpus()
	space := a.builder.Build(c.View())

	source := c.Source()
	if c.Defaulted() {
		source += " (not found, using built-in default)"
	}
	fmt.Fprintf(out, "Corpus:      %s\n", source)
	fmt.Fprintf(out, "Sentences:   %d\n", c.Len())
	fmt.Fprintf(out, "Vocabulary:  %d terms\n", space.Dimension())
	fmt.Fprintf(out, "Lemmatizer:  %s\n", a.normalizer.Lemmatizer().Name())
	fmt.Fprintf(out, "Threshold:   %g\n", a.cfg.Matcher.Threshold)

	if kw := a.summarizer.Keywords(c.View(), infoKeywords); len(kw) > 0 {
		fmt.Fprintf(out, "Keywords:    %s\n", strings.Join(kw, ", "))
	}
	if s := a.summary(); s != "" {
		fmt.Fprintf(out, "\nSummary:\n  %s\n", s)
	}

	if infoRecent <= 0 {
		return nil
	}
	items, err := a.bot.Transcripts(ctx, infoRecent)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	fmt.Fprintf(out, "\nRecent transcripts (%s):\n", a.cfg.Transcript.Type)
	for _, t := range items {
		fmt.Fprintf(out, "  [%s %s] %s -> %s\n", t.CreatedAt.Format("2006-01-02 15:04"), t.Source, t.UserText, t.BotText)
	}
	return nil
}
