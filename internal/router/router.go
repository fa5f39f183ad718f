package router

import (
	"context"
	"strings"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

type Router struct {
	classifier Classifier
	log        *logger.Logger
}

func New(classifier Classifier, log *logger.Logger) *Router {
	return &Router{classifier: classifier, log: log.With("component", "router")}
}

// Route never fails: empty input, classifier errors and labels outside the
// set all resolve to LabelChat.
func (r *Router) Route(ctx context.Context, text, pageContext string) Label {
	if strings.TrimSpace(text) == "" {
		return LabelChat
	}
	raw, err := r.classifier.Classify(ctx, text, pageContext)
	if err != nil {
		r.log.Warn("classification failed, using chat", "error", err)
		return LabelChat
	}
	label, ok := Normalize(raw)
	if !ok {
		r.log.Warn("unknown route label, using chat", "raw", raw)
	}
	r.log.Debug("message routed", "label", label)
	return label
}
