package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"chatbot/internal/config"
	"chatbot/pkg/log"
)

var (
	cfgFile    string
	corpusPath string
	debug      bool

	cfg        *config.AppConfig
	cfgPath    string
	logFile    *os.File
	logCleanup = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "chatbot",
	Short: "Retrieval chatbot answering with the closest sentence of a text corpus",
	Long: `chatbot answers each message with the corpus sentence that is most similar to it,
using TF-IDF weights over lemmatized words and cosine similarity. Messages can be typed
or transcribed from recorded speech.

Example usage:
  chatbot chat                               # Interactive chat
  chatbot ask "what is your name"            # One-shot answer
  chatbot transcribe --audio "clips/*.wav"   # Answer recorded questions
  chatbot info                               # Describe the loaded corpus`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
			cfgPath = cfgFile
		} else {
			cfg, cfgPath, err = config.LoadDefault()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if corpusPath != "" {
			cfg.Corpus.Path = corpusPath
		}
		if debug {
			cfg.Log.Debug = true
		}

		// the chat UI owns the terminal, so its logs go to a file
		var out io.Writer = os.Stderr
		if cmd.Name() == chatCmd.Name() {
			f, err := log.OpenFile(cfg.LogPath())
			if err != nil {
				return err
			}
			out, logFile = f, f
		}
		ctx, cleanup := log.NewContextWithLogger(cmd.Context(), cfg.Log.Debug, out)
		logCleanup = cleanup
		cmd.SetContext(ctx)
		log.FromCtx(ctx).Debug().Str("config", cfgPath).Msg("config loaded")
		return nil
	},
}

// finishLogging flushes the logger and closes the chat log file. It runs after
// every command, including the ones whose RunE failed.
func finishLogging() {
	logCleanup()
	logCleanup = func() {}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func init() {
	cobra.OnFinalize(finishLogging)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./chatbot.yaml, then ~/.config/chatbot/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "", "corpus file or glob pattern (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}
