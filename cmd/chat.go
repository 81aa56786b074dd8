package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/scheme-navigator/internal/dialog"
)

const (
	PromptExit = "exit"
	PromptQuit = "quit"
)

var languageNames = map[string]string{
	"en": "English",
	"hi": "हिन्दी (Hindi)",
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		chat(cmd)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("language", "l", "", "conversation language; asks interactively when unset")
}

func chat(cmd *cobra.Command) {
	ctx := context.Background()

	a, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("starting: %s", err)
	}
	logger := a.logger

	language, _ := cmd.Flags().GetString("language")
	if language == "" {
		language, err = selectLanguage()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	started := a.service.StartSession(language)
	fmt.Printf("\n%s\n\n", started.Greeting)

	input := promptui.Prompt{Label: "You"}
	for {
		message, err := input.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				endChat(a, started.SessionID)
				return
			}
			logger.Fatal("reading input", zap.Error(err))
		}

		switch strings.ToLower(strings.TrimSpace(message)) {
		case "":
			continue
		case PromptExit, PromptQuit:
			endChat(a, started.SessionID)
			return
		}

		result, err := a.service.SendTurn(ctx, started.SessionID, message)
		if err != nil {
			logger.Fatal("sending a message", zap.Error(err))
		}

		fmt.Printf("\n%s\n\n", result.Response)
		logger.Debug("turn processed",
			zap.String("stage", string(result.Stage)),
			zap.String("extraction_method", result.ExtractionMethod),
			zap.Int("matches", len(result.Matches)),
		)
	}
}

func selectLanguage() (string, error) {
	items := make([]string, 0, len(dialog.SupportedLanguages))
	for _, code := range dialog.SupportedLanguages {
		items = append(items, languageNames[code])
	}

	languagePrompt := promptui.Select{
		Label: "Choose a language",
		Items: items,
	}

	i, _, err := languagePrompt.Run()
	if err != nil {
		return "", err
	}
	return dialog.SupportedLanguages[i], nil
}

func endChat(a *application, id string) {
	if err := a.service.EndSession(id); err != nil {
		a.logger.Warn("ending a session", zap.Error(err))
	}
	fmt.Println("Goodbye!")
}
