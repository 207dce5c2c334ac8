package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/xzayogn/jobchat/internal/aggregator"
	"github.com/xzayogn/jobchat/internal/job"
	"github.com/xzayogn/jobchat/internal/logger"
	"github.com/xzayogn/jobchat/internal/memory"
	"github.com/xzayogn/jobchat/internal/workflow"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	chatExitWord    = "exit"
	chatSaveWord    = "save"
	chatHistoryWord = "history"

	chatHistoryDepth = 10
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run an interactive chat session in the terminal",
	Run: func(_ *cobra.Command, _ []string) {
		chat()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func chat() {
	ctx := context.Background()

	zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		zl.Fatal("config is required")
	}

	wf, err := buildWorkflow(ctx, config, zl)
	if err != nil {
		zl.Fatal("building the search workflow", zap.Error(err))
	}

	pageSize := aggregator.DefaultPageSize
	if config.Search != nil && config.Search.PageSize > 0 {
		pageSize = config.Search.PageSize
	}

	store := memory.NewStore()
	sessionID := uuid.NewString()

	fmt.Printf("Chat session %s started. Type %q to quit, %q to dump the last results to a file, %q to review recent turns.\n",
		sessionID, chatExitWord, chatSaveWord, chatHistoryWord)

	prompt := promptui.Prompt{Label: "you"}

	var lastResults job.Listings

	for {
		text, err := prompt.Run()
		if err != nil {
			// Ctrl-C or closed terminal.
			return
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, chatExitWord) {
			return
		}
		if strings.EqualFold(text, chatSaveWord) {
			saveResults(&lastResults)
			continue
		}
		if strings.EqualFold(text, chatHistoryWord) {
			printHistory(store.Recent(sessionID, chatHistoryDepth))
			continue
		}

		store.AddUserMessage(sessionID, text)

		resp := wf.Run(ctx, sessionID, text, pageSize)

		store.AddAIMessage(sessionID, resp.Message, resp.Data)

		lastResults = job.Listings{Items: resp.Data}

		printResponse(resp)
	}
}

func printHistory(messages []memory.Message) {
	if len(messages) == 0 {
		fmt.Println("No messages yet.")
		return
	}

	for _, msg := range messages {
		fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), msg.User, msg.Message)
	}
}

func saveResults(results *job.Listings) {
	if results.Len() == 0 {
		fmt.Println("Nothing to save yet.")
		return
	}

	filename, err := results.DumpToTmpFile()
	if err != nil {
		fmt.Printf("Saving results failed: %v\n", err)
		return
	}

	fmt.Printf("Saved %d listings (%s) to %s\n",
		results.Len(), strings.Join(results.Sources(), ", "), filename)
}

func printResponse(resp workflow.Response) {
	fmt.Println(resp.Message)

	for i, l := range resp.Data {
		fmt.Printf("%d. %s / %s / %s", i+1, l.Title, l.Company, l.Location)
		if l.URL != "" {
			fmt.Printf(" / %s", l.URL)
		}
		fmt.Println()
	}

	if resp.Metadata != nil {
		fmt.Printf("(%d jobs from %s)\n", resp.Metadata.TotalJobs, strings.Join(resp.Metadata.Sources, ", "))
	}
}
