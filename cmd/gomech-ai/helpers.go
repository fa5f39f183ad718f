package main

import (
	"os"
	"strings"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

func newLogger() *logger.Logger {
	if !verbose {
		return logger.NewNop()
	}
	if l, err := logger.New("development"); err == nil {
		return l
	}
	return logger.NewNop()
}

// openAIProvider reads only the model settings, so commands that never touch
// the database work without DATABASE_URL.
func openAIProvider(modelEnv, fallback string) (*llm.OpenAIProvider, error) {
	model := strings.TrimSpace(os.Getenv(modelEnv))
	if model == "" {
		model = fallback
	}
	return llm.NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_BASE_URL"), model, timeout)
}
