package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/DeyvidJesus/gomech-ai-service/internal/actions"
	"github.com/DeyvidJesus/gomech-ai-service/internal/audit"
	"github.com/DeyvidJesus/gomech-ai-service/internal/chart"
	"github.com/DeyvidJesus/gomech-ai-service/internal/chat"
	"github.com/DeyvidJesus/gomech-ai-service/internal/management"
	"github.com/DeyvidJesus/gomech-ai-service/internal/models"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/router"
	"github.com/DeyvidJesus/gomech-ai-service/internal/sqlqa"
	"github.com/DeyvidJesus/gomech-ai-service/internal/voice"
	"github.com/DeyvidJesus/gomech-ai-service/internal/websearch"
)

const (
	unknownThread    = "unknown"
	routeVision      = "vision"
	replyEmptyAudio  = "Não consegui entender o áudio. Pode repetir ou enviar por texto?"
	imageAnalysisTag = "Análise da imagem anexada:"
)

type ChatService interface {
	Reply(ctx context.Context, req chat.Request) (chat.Reply, error)
}

type DataResponder interface {
	Answer(ctx context.Context, question string) (sqlqa.Result, error)
}

type ChartResponder interface {
	Run(ctx context.Context, question string) (chart.Result, error)
}

type SearchResponder interface {
	Answer(ctx context.Context, question string) (websearch.Result, error)
}

type AuditResponder interface {
	Answer(ctx context.Context, question, userEmail string) (audit.Result, error)
}

type AdvisorResponder interface {
	Answer(ctx context.Context, question string, data *management.Dataset) (management.Result, error)
}

type ActionDetector interface {
	DetectAndPrepare(ctx context.Context, message string) (actions.Detection, error)
}

type ActionRunner interface {
	Confirm(ctx context.Context, req models.ConfirmRequest) (models.ConfirmResponse, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioBase64, language string) (voice.Transcription, error)
}

type ImageDescriber interface {
	Describe(ctx context.Context, imageBase64 string) (string, error)
}

// Deps lists the responders behind each route. A nil responder sends its
// route to chat.
type Deps struct {
	Router      *router.Router
	Chat        ChatService
	Data        DataResponder
	Chart       ChartResponder
	Search      SearchResponder
	Audit       AuditResponder
	Advisor     AdvisorResponder
	Actions     ActionDetector
	Executor    ActionRunner
	Transcriber Transcriber
	Vision      ImageDescriber
}

// Assistant turns one chat request into one reply. HTTP and NATS ingress share it.
type Assistant struct {
	deps Deps
	log  *logger.Logger
}

func NewAssistant(deps Deps, log *logger.Logger) *Assistant {
	return &Assistant{deps: deps, log: log.With("component", "assistant")}
}

func (a *Assistant) Handle(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	if err := validateRequest(req); err != nil {
		return models.ChatResponse{}, err
	}

	if req.AudioBase64 != "" && a.deps.Transcriber == nil {
		return models.ChatResponse{}, fmt.Errorf("%w: transcrição de áudio indisponível", apierr.ErrUnavailable)
	}
	if req.ImageBase64 != "" && a.deps.Vision == nil {
		return models.ChatResponse{}, fmt.Errorf("%w: análise de imagem indisponível", apierr.ErrUnavailable)
	}

	plan := router.Plan(router.Input{Text: req.Message, AudioBase64: req.AudioBase64, ImageBase64: req.ImageBase64})
	outcome, err := router.Run(ctx, plan, req.Message, router.Deps{
		Transcribe:   a.transcriber(req),
		AnalyzeImage: a.describer(req),
		Route: func(ctx context.Context, text string) router.Label {
			return a.deps.Router.Route(ctx, text, req.Context)
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return models.ChatResponse{}, ctx.Err()
		}
		a.log.Error("multimodal step failed", "error", err)
		return models.ChatResponse{}, err
	}

	resp := models.ChatResponse{
		ThreadID:      echoThread(req.ThreadID),
		Transcription: outcome.Transcript,
		ImageAnalysis: outcome.ImageAnalysis,
	}
	if !outcome.Routed {
		resp.Route = routeVision
		resp.Reply = outcome.ImageAnalysis
		if resp.Reply == "" {
			resp.Route = string(router.LabelChat)
			resp.Reply = replyEmptyAudio
		}
		return resp, nil
	}

	resp.Route = string(outcome.Label)
	a.log.Info("📨 routing message", "route", outcome.Label, "thread_id", req.ThreadID)
	if err := a.dispatch(ctx, outcome.Label, outcome.Text, req, &resp); err != nil {
		return models.ChatResponse{}, err
	}
	return resp, nil
}

func (a *Assistant) dispatch(ctx context.Context, label router.Label, text string, req models.ChatRequest, resp *models.ChatResponse) error {
	switch {
	case label == router.LabelDataQuery && a.deps.Data != nil:
		res, err := a.deps.Data.Answer(ctx, text)
		if err != nil {
			return err
		}
		resp.Reply = res.Reply
		return nil

	case label == router.LabelVisualization && a.deps.Chart != nil:
		res, err := a.deps.Chart.Run(ctx, text)
		if err != nil {
			return err
		}
		resp.Reply = res.Reply
		resp.ImageBase64 = res.ImageBase64
		resp.ImageMime = res.ImageMime
		resp.Suggestions = res.Suggestions
		return nil

	case label == router.LabelExternalSearch && a.deps.Search != nil:
		res, err := a.deps.Search.Answer(ctx, text)
		if err != nil {
			return err
		}
		resp.Reply = res.Reply
		resp.Videos = res.Videos
		return nil

	case label == router.LabelAudit && a.deps.Audit != nil:
		res, err := a.deps.Audit.Answer(ctx, text, req.UserEmail)
		if err != nil {
			return err
		}
		resp.Reply = res.Reply
		return nil

	case label == router.LabelRecommendation && a.deps.Advisor != nil:
		res, err := a.deps.Advisor.Answer(ctx, text, nil)
		if err != nil {
			return err
		}
		resp.Reply = res.Reply
		return nil

	case label == router.LabelAction && a.deps.Actions != nil:
		handled, err := a.action(ctx, text, req, resp)
		if err != nil || handled {
			return err
		}
		a.log.Debug("action route without a command, using chat")
	}

	resp.Route = string(router.LabelChat)
	return a.chat(ctx, text, req, resp)
}

// action reports false when the message turned out not to be a command.
func (a *Assistant) action(ctx context.Context, text string, req models.ChatRequest, resp *models.ChatResponse) (bool, error) {
	det, err := a.deps.Actions.DetectAndPrepare(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		a.log.Warn("action detection failed, using chat", "error", err)
		return false, nil
	}
	if !det.IsCommand {
		return false, nil
	}

	resp.Reply = det.Reply
	resp.Action = det.Model()
	if det.PendingConfirmation {
		resp.PendingAction = det.Pending
		return true, nil
	}
	if !det.AutoExecute || det.Pending == nil || a.deps.Executor == nil {
		return true, nil
	}

	result, err := a.deps.Executor.Confirm(ctx, models.ConfirmRequest{
		Action:   det.Pending.Action,
		Params:   det.Pending.Params,
		Endpoint: det.Pending.Endpoint,
		Method:   det.Pending.Method,
		UserID:   req.UserID,
		Token:    det.Pending.Token,
	})
	if err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		a.log.Error("auto-execute failed", "action", det.Action, "error", err)
		resp.Reply = fmt.Sprintf("%s\n\n❌ %s", det.Reply, apierr.PublicMessage(apierr.From(err)))
		return true, nil
	}
	resp.ActionResult = &result
	resp.Reply = fmt.Sprintf("%s\n\n%s", det.Reply, result.Message)
	if result.Error != "" {
		resp.Reply += "\n" + result.Error
	}
	return true, nil
}

func (a *Assistant) chat(ctx context.Context, text string, req models.ChatRequest, resp *models.ChatResponse) error {
	message := text
	if resp.ImageAnalysis != "" {
		message = fmt.Sprintf("%s\n\n%s\n%s", text, imageAnalysisTag, resp.ImageAnalysis)
	}
	reply, err := a.deps.Chat.Reply(ctx, chat.Request{
		ThreadID:    req.ThreadID,
		Message:     message,
		UserID:      req.UserID,
		PageContext: req.Context,
	})
	if err != nil {
		return err
	}
	resp.Reply = reply.Reply
	resp.ThreadID = reply.ThreadID
	return nil
}

func (a *Assistant) transcriber(req models.ChatRequest) func(context.Context) (string, error) {
	if a.deps.Transcriber == nil {
		return nil
	}
	return func(ctx context.Context) (string, error) {
		t, err := a.deps.Transcriber.Transcribe(ctx, req.AudioBase64, voice.DefaultLanguage)
		if err != nil {
			return "", err
		}
		return t.Text, nil
	}
}

func (a *Assistant) describer(req models.ChatRequest) func(context.Context) (string, error) {
	if a.deps.Vision == nil {
		return nil
	}
	return func(ctx context.Context) (string, error) {
		return a.deps.Vision.Describe(ctx, req.ImageBase64)
	}
}

func validateRequest(req models.ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" && req.AudioBase64 == "" && req.ImageBase64 == "" {
		return fmt.Errorf("%w: message é obrigatório", apierr.ErrInvalidInput)
	}
	return nil
}

func echoThread(id string) string {
	if id == "" {
		return unknownThread
	}
	return id
}
