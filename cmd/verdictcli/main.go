// Command verdictcli is a development tool: an interactive menu for running
// the analysis pipeline against canned or hand-entered text, without audio
// or the HTTP surface.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"verdict-service/internal/config"
	"verdict-service/internal/logging"
	"verdict-service/internal/models"
	"verdict-service/internal/service/analysis"
	"verdict-service/internal/service/prompt"
)

var cannedScenarios = map[models.Mode][2]string{
	models.ModeJudge: {
		"You never do the dishes, I always end up cleaning the kitchen.",
		"I cook every night, the dishes are the least you could do.",
	},
	models.ModeCounselor: {
		"I feel like you never listen when I talk about my day.",
		"I do listen, I just get distracted when I'm tired after work.",
	},
	models.ModeDinner: {
		"I like Italian food.",
		"I prefer Thai food.",
	},
	models.ModeEntertainment: {
		"Let's watch a thriller tonight.",
		"I want something light, maybe a comedy.",
	},
}

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: "warn", Format: "console"})

	client, err := analysis.NewClient(analysis.ClientConfig{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.HTTPTimeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	svc := analysis.NewService(client)
	in := bufio.NewScanner(os.Stdin)

	for {
		fmt.Println()
		fmt.Println("verdictcli — analysis dev menu")
		fmt.Println("  1) run a canned scenario")
		fmt.Println("  2) enter partner statements by hand")
		fmt.Println("  3) ping the text-generation endpoint")
		fmt.Println("  q) quit")
		fmt.Print("> ")

		if !in.Scan() {
			return
		}
		switch strings.TrimSpace(in.Text()) {
		case "1":
			mode := readMode(in)
			texts := cannedScenarios[mode]
			runAnalysis(svc, mode, texts[0], texts[1])
		case "2":
			mode := readMode(in)
			p1 := readLine(in, "Alex says: ")
			p2 := readLine(in, "Sam says: ")
			runAnalysis(svc, mode, p1, p2)
		case "3":
			if err := client.Ping(context.Background()); err != nil {
				fmt.Printf("ping failed: %v\n", err)
			} else {
				fmt.Println("ping ok")
			}
		case "q", "quit", "exit":
			return
		default:
			fmt.Println("unknown choice")
		}
	}
}

func readMode(in *bufio.Scanner) models.Mode {
	for {
		choice := readLine(in, "mode (judge/counselor/dinner/entertainment): ")
		mode := models.Mode(strings.TrimSpace(choice))
		if mode.Valid() {
			return mode
		}
		fmt.Println("unknown mode")
	}
}

func readLine(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return ""
	}
	return in.Text()
}

func runAnalysis(svc *analysis.Service, mode models.Mode, partner1Text, partner2Text string) {
	prompts, err := prompt.Build(mode, "Alex", "Sam", partner1Text, partner2Text, false)
	if err != nil {
		fmt.Printf("prompt build failed: %v\n", err)
		return
	}

	fmt.Println("streaming...")
	serialized, err := svc.Analyze(context.Background(), prompts.System, prompts.User, analysis.TemperatureFor(mode))
	if err != nil {
		fmt.Printf("analysis failed: %v\n", err)
		return
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(serialized), &result); err != nil {
		fmt.Printf("bad result payload: %v\n", err)
		return
	}
	fmt.Println()
	fmt.Println(result.Verdict)
	fmt.Printf("\n(%s)\n", result.Timestamp)
}
