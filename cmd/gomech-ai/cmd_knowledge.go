package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DeyvidJesus/gomech-ai-service/internal/knowledge"
)

var knowledgeDir string

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the knowledge base",
}

var knowledgeIndexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Split a text file and add it to the knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeIndex,
}

func init() {
	knowledgeCmd.PersistentFlags().StringVar(&knowledgeDir, "dir", os.Getenv("KNOWLEDGE_DIR"), "Knowledge base directory")
}

func runKnowledgeIndex(cmd *cobra.Command, args []string) error {
	if knowledgeDir == "" {
		return fmt.Errorf("knowledge directory required (--dir or KNOWLEDGE_DIR)")
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	provider, err := openAIProvider("CHAT_MODEL", "gpt-4o-mini")
	if err != nil {
		return err
	}
	embedder, err := provider.Embedder(os.Getenv("EMBEDDING_MODEL"))
	if err != nil {
		return err
	}
	kb, err := knowledge.New(provider, knowledge.EmbeddingFunc(embedder), knowledge.Options{Dir: knowledgeDir}, newLogger())
	if err != nil {
		return err
	}

	ids, err := kb.Index(ctx, string(text), map[string]string{"source": filepath.Base(args[0])})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "📚 %d chunks indexed from %s (%d documents total)\n", len(ids), args[0], kb.Count())
	return nil
}
