package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
)

var serverURL = flag.String("server", "http://localhost:8080", "InoBot server URL")

type message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type askRequest struct {
	Question            string    `json:"question"`
	ConversationHistory []message `json:"conversationHistory,omitempty"`
}

type askResponse struct {
	Answer              string              `json:"answer"`
	References          []map[string]string `json:"references"`
	FollowUpSuggestions []string            `json:"followUpSuggestions,omitempty"`
	Error               string              `json:"error,omitempty"`
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nBye!")
		cancel()
		os.Exit(0)
	}()

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Println(boldGreen("🤖 InoBot"))
	fmt.Printf("Connected to: %s\n", boldCyan(*serverURL))
	fmt.Println("Ask anything about Inovus Labs. Type 'exit' or press Ctrl+C to quit.")
	fmt.Println()

	client := &http.Client{Timeout: 90 * time.Second}
	var history []message

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") {
			break
		}

		resp, err := ask(ctx, client, *serverURL, question, history)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			continue
		}

		fmt.Printf("%s %s\n", boldCyan("InoBot:"), resp.Answer)

		if len(resp.FollowUpSuggestions) > 0 {
			fmt.Println(dim("You could also ask:"))
			for _, s := range resp.FollowUpSuggestions {
				fmt.Println(dim("  - " + s))
			}
		}
		fmt.Println()

		now := time.Now().UTC().Format(time.RFC3339)
		history = append(history,
			message{Role: "user", Content: question, Timestamp: now},
			message{Role: "assistant", Content: resp.Answer, Timestamp: now},
		)
	}
}

func ask(ctx context.Context, client *http.Client, serverURL, question string, history []message) (*askResponse, error) {
	body, err := json.Marshal(askRequest{Question: question, ConversationHistory: history})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL+"/api/v1/ask", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed askResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != "" {
			return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, parsed.Error)
		}
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return &parsed, nil
}
