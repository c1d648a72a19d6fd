package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/verlane/ollamactl"
)

const defaultSystemPrompt = "You are a helpful assistant running on a locally " +
	"managed inference server. You can use the provided tools to inspect and " +
	"control the server's lifecycle when the user asks about it."

// maxToolRounds bounds the tool-call loop per user turn so a confused
// model cannot spin forever.
const maxToolRounds = 5

// Chat starts a REPL against the managed server, starting the server
// first when it is not yet healthy. With --prompt it runs one turn and
// exits.
func (c *command) Chat(ctx context.Context, svc ServiceFlags, f ChatFlags) error {
	fc, err := c.loadConfig(svc)
	if err != nil {
		return err
	}
	mgr, st, err := c.buildManager(fc)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if !mgr.CheckHealth(ctx) {
		fmt.Println("inference server not running, starting it...")
		if err := mgr.Start(ctx); err != nil {
			return fmt.Errorf("start inference server: %w", err)
		}
	}

	baseURL := fc.LLM.BaseURL
	if f.BaseURL != "" {
		baseURL = f.BaseURL
	}
	model := fc.LLM.Model
	if f.Model != "" {
		model = f.Model
	}
	client := ollamactl.NewLLMClient(baseURL, model, fc.LLM.Timeout)

	var registry *ollamactl.ToolRegistry
	if !f.NoTools {
		registry, err = mgr.NewToolRegistry(client)
		if err != nil {
			return err
		}
	}

	system := f.System
	if system == "" {
		system = defaultSystemPrompt
	}
	session := &chatSession{client: client, registry: registry, messages: []ollamactl.ChatMessage{
		{Role: "system", Content: system},
	}}

	if f.Prompt != "" {
		reply, err := session.turn(ctx, f.Prompt)
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	}

	fmt.Printf("chatting with %s (/exit to quit)\n", model)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/exit" || line == "/quit" {
			return nil
		}
		reply, err := session.turn(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(reply)
	}
}

type chatSession struct {
	client   *ollamactl.LLMClient
	registry *ollamactl.ToolRegistry
	messages []ollamactl.ChatMessage
}

// turn sends one user message and resolves any tool calls before
// returning the assistant's final answer.
func (s *chatSession) turn(ctx context.Context, userInput string) (string, error) {
	s.messages = append(s.messages, ollamactl.ChatMessage{Role: "user", Content: userInput})

	var defs []ollamactl.ToolDefinition
	if s.registry != nil {
		defs = s.registry.Definitions()
	}

	for round := 0; round < maxToolRounds; round++ {
		reply, err := s.client.Chat(ctx, s.messages, defs)
		if err != nil {
			return "", err
		}
		s.messages = append(s.messages, reply)
		if len(reply.ToolCalls) == 0 || s.registry == nil {
			return reply.Content, nil
		}
		for _, call := range reply.ToolCalls {
			result, err := s.registry.Execute(ctx, call)
			if err != nil {
				result = err.Error()
			}
			s.messages = append(s.messages, ollamactl.ChatMessage{Role: "tool", Content: result})
		}
	}
	return "", fmt.Errorf("model kept requesting tools after %d rounds", maxToolRounds)
}
