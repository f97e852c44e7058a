package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"chatbot/internal/domain"
	"chatbot/internal/speech"
	"chatbot/internal/transcript"
	"chatbot/pkg/log"
)

const (
	noSpeechReply = "Sorry, I could not understand the speech."
	requestReply  = "Sorry, the speech recognition service is unavailable."
)

var (
	audioPath     string
	speechBackend string
	speechLang    string
	transcribeOut string
	transcribeSav bool
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe recorded speech and answer it",
	Long: `Transcribe one or more audio files with the configured speech backend and answer
each transcription like a typed message. --audio accepts a glob pattern such as
"clips/**/*.wav"; files are processed in lexical order.`,
	Example: `  chatbot transcribe --audio question.wav
  chatbot transcribe --audio "clips/*.wav" --backend whisper --language en-US --save`,
	RunE: runTranscribe,
}

func init() {
	transcribeCmd.Flags().StringVarP(&audioPath, "audio", "a", "", "audio file or glob pattern")
	transcribeCmd.Flags().StringVar(&speechBackend, "backend", "", "speech backend: "+strings.Join(speech.Backends(), ", "))
	transcribeCmd.Flags().StringVarP(&speechLang, "language", "l", "", "BCP-47 language tag, e.g. fr-FR")
	transcribeCmd.Flags().StringVarP(&transcribeOut, "output", "o", "", "also write the transcriptions to this text file")
	transcribeCmd.Flags().BoolVar(&transcribeSav, "save", false, "save each exchange to the transcript store")
	_ = transcribeCmd.MarkFlagRequired("audio")
	rootCmd.AddCommand(transcribeCmd)
}

func audioFiles(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		return []string{pattern}, nil
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("invalid audio pattern %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no audio files match %s", pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := log.FromCtx(ctx)

	files, err := audioFiles(audioPath)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	t, language, err := a.transcriber(speechBackend, speechLang)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if len(files) > 1 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("[cyan]Transcribing[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(os.Stderr)
			}),
		)
	}

	out := cmd.OutOrStdout()
	var texts []string
	failed := 0
	for _, file := range files {
		if bar != nil {
			_ = bar.Add(1)
		}
		audio, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read audio: %w", err)
		}

		text, err := t.Transcribe(ctx, audio, language)
		switch {
		case errors.Is(err, speech.ErrNoSpeech), errors.Is(err, speech.ErrEmptyAudio):
			logger.Warn().Str("file", file).Err(err).Msg("nothing recognized")
			fmt.Fprintf(out, "%s: %s\n", file, noSpeechReply)
			failed++
			continue
		case errors.Is(err, speech.ErrRequest):
			logger.Error().Str("file", file).Err(err).Msg("recognition request failed")
			fmt.Fprintf(out, "%s: %s\n", file, requestReply)
			failed++
			continue
		case err != nil:
			return err
		}
		texts = append(texts, text)

		reply, err := a.bot.Ask(ctx, text)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n  you: %s\n  bot: %s\n", file, text, reply.Text)

		if transcribeSav {
			if err := a.bot.Record(ctx, domain.Transcript{
				Source:   transcript.SourceVoice,
				Language: language,
				UserText: text,
				BotText:  reply.Text,
			}); err != nil {
				return err
			}
		}
	}

	if transcribeOut != "" && len(texts) > 0 {
		if err := os.WriteFile(transcribeOut, []byte(strings.Join(texts, "\n")+"\n"), 0o644); err != nil {
			return fmt.Errorf("write transcription: %w", err)
		}
	}
	if failed == len(files) {
		return fmt.Errorf("no speech recognized in %d file(s)", failed)
	}
	return nil
}
