package agent

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FallbackPrompt is the persona used for agents without a loaded prompt.
const FallbackPrompt = "You are an AI assistant. Please provide your perspective."

// PromptSource maps an agent id to its base system-prompt text. Missing ids
// must fall back to a generic helpful-assistant persona.
type PromptSource interface {
	Prompt(agentID string) string
}

// StaticPrompts is a map-backed PromptSource.
type StaticPrompts map[string]string

// Prompt implements PromptSource.
func (s StaticPrompts) Prompt(agentID string) string {
	if p, ok := s[agentID]; ok && p != "" {
		return p
	}
	return FallbackPrompt
}

// promptLine is the shape of the first record of a persona JSONL file.
type promptLine struct {
	Completion string `json:"completion"`
}

// LoadPromptDir reads persona prompts from a directory of JSONL files, one
// file per agent named "<agent_id>.jsonl". Only the first line is used; its
// "completion" field becomes the prompt, with a trailing "####" marker
// stripped. Files that fail to parse are skipped, not fatal, so one broken
// persona cannot take the roster down.
func LoadPromptDir(dir string) (StaticPrompts, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("scan prompt dir: %w", err)
	}

	prompts := StaticPrompts{}
	for _, path := range entries {
		id := strings.TrimSuffix(filepath.Base(path), ".jsonl")
		text, err := readFirstCompletion(path)
		if err != nil || text == "" {
			continue
		}
		prompts[id] = text
	}
	return prompts, nil
}

func readFirstCompletion(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		return "", scanner.Err()
	}
	var line promptLine
	if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
		return "", err
	}
	text := strings.TrimSpace(line.Completion)
	text = strings.TrimSpace(strings.TrimSuffix(text, "####"))
	return text, nil
}
