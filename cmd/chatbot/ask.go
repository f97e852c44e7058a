package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"chatbot/internal/domain"
	"chatbot/internal/transcript"
)

var (
	askJSON bool
	askSave bool
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Answer a single message, or every line read from stdin",
	Example: `  chatbot ask "what is your name"
  cat questions.txt | chatbot ask --json`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print each reply as a JSON object")
	askCmd.Flags().BoolVar(&askSave, "save", false, "save each exchange to the transcript store")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	answer := func(text string) error {
		reply, err := a.bot.Ask(ctx, text)
		if err != nil {
			return err
		}
		if err := printReply(out, reply); err != nil {
			return err
		}
		if !askSave {
			return nil
		}
		return a.bot.Record(ctx, domain.Transcript{
			Source:   transcript.SourceText,
			UserText: text,
			BotText:  reply.Text,
		})
	}

	if len(args) > 0 {
		return answer(strings.Join(args, " "))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := answer(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

type replyJSON struct {
	Query   string  `json:"query"`
	Reply   string  `json:"reply"`
	Index   int     `json:"index"`
	Score   float64 `json:"score"`
	Matched bool    `json:"matched"`
}

func printReply(w io.Writer, r domain.Reply) error {
	if !askJSON {
		_, err := fmt.Fprintln(w, r.Text)
		return err
	}
	return json.NewEncoder(w).Encode(replyJSON{
		Query:   r.Query,
		Reply:   r.Text,
		Index:   r.Index,
		Score:   r.Score,
		Matched: r.Matched,
	})
}

