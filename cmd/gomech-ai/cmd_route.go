package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DeyvidJesus/gomech-ai-service/internal/router"
)

var (
	routeOffline bool
	routeContext string
)

var routeCmd = &cobra.Command{
	Use:   "route <message>",
	Short: "Classify a message into a route",
	Long: `Classify a message the way /chat does.

With --offline the deterministic keyword rules are used and no model is called.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRoute,
}

func init() {
	routeCmd.Flags().BoolVar(&routeOffline, "offline", false, "Use keyword rules instead of the model")
	routeCmd.Flags().StringVar(&routeContext, "context", "", "Page context sent with the message")
}

func runRoute(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var classifier router.Classifier
	if routeOffline {
		classifier = router.NewKeywordClassifier()
	} else {
		provider, err := openAIProvider("ROUTER_MODEL", "gpt-4o-mini")
		if err != nil {
			return fmt.Errorf("%w (use --offline to classify without a model)", err)
		}
		classifier = router.NewLLMClassifier(provider, "")
	}

	label := router.New(classifier, newLogger()).Route(ctx, strings.Join(args, " "), routeContext)
	fmt.Fprintln(cmd.OutOrStdout(), label)
	return nil
}
