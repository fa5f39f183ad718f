package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/DeyvidJesus/gomech-ai-service/internal/http/handlers"
	httpMW "github.com/DeyvidJesus/gomech-ai-service/internal/http/middleware"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

type RouterConfig struct {
	ServiceName    string
	AllowedOrigins []string
	Log            *logger.Logger

	ChatHandler       *httpH.ChatHandler
	ManagementHandler *httpH.ManagementHandler
	CRMHandler        *httpH.CRMHandler
	VoiceHandler      *httpH.VoiceHandler
	VisionHandler     *httpH.VisionHandler
	PredictiveHandler *httpH.PredictiveHandler
	SimulationHandler *httpH.SimulationHandler
	KnowledgeHandler  *httpH.KnowledgeHandler

	StatusHandler *httpH.StatusHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestID())
	r.Use(httpMW.RequestLogger(cfg.Log))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(httpMW.CORS(cfg.AllowedOrigins))
	}

	// Status
	if cfg.StatusHandler != nil {
		r.GET("/status", cfg.StatusHandler.Status)
	}

	// Chat
	if cfg.ChatHandler != nil {
		r.POST("/chat", cfg.ChatHandler.Chat)
		r.GET("/chat/:thread_id/messages", cfg.ChatHandler.Messages)
		r.DELETE("/chat/:thread_id", cfg.ChatHandler.Delete)
		r.POST("/action/confirm", cfg.ChatHandler.Confirm)
	}

	// Management
	if cfg.ManagementHandler != nil {
		mg := r.Group("/management")
		mg.POST("/profitability", cfg.ManagementHandler.Profitability)
		mg.POST("/bottlenecks", cfg.ManagementHandler.Bottlenecks)
		mg.POST("/benchmark", cfg.ManagementHandler.Benchmark)
		mg.POST("/insights", cfg.ManagementHandler.Insights)
		mg.POST("/report", cfg.ManagementHandler.Report)
		mg.POST("/recommendations", cfg.ManagementHandler.Recommendations)
	}

	// CRM
	if cfg.CRMHandler != nil {
		crm := r.Group("/crm")
		crm.POST("/analyze", cfg.CRMHandler.Analyze)
		crm.POST("/review-reminder", cfg.CRMHandler.ReviewReminder)
		crm.POST("/satisfaction-survey", cfg.CRMHandler.SatisfactionSurvey)
	}

	// Voice
	if cfg.VoiceHandler != nil {
		v := r.Group("/voice")
		v.POST("/transcribe", cfg.VoiceHandler.Transcribe)
		v.POST("/synthesize", cfg.VoiceHandler.Synthesize)
		v.GET("/voices", cfg.VoiceHandler.Voices)
		v.GET("/languages", cfg.VoiceHandler.Languages)
	}

	// Vision
	if cfg.VisionHandler != nil {
		r.POST("/vision/analyze", cfg.VisionHandler.Analyze)
	}

	// Predictive
	if cfg.PredictiveHandler != nil {
		p := r.Group("/predictive")
		p.POST("/delay", cfg.PredictiveHandler.Delay)
		p.POST("/bottlenecks", cfg.PredictiveHandler.Bottlenecks)
		p.POST("/patterns", cfg.PredictiveHandler.Patterns)
		p.POST("/alerts", cfg.PredictiveHandler.Alerts)
		p.POST("/train", cfg.PredictiveHandler.Train)
	}

	// Simulation
	if cfg.SimulationHandler != nil {
		s := r.Group("/simulation")
		s.POST("/price", cfg.SimulationHandler.Price)
		s.POST("/capacity", cfg.SimulationHandler.Capacity)
		s.POST("/marketing", cfg.SimulationHandler.Marketing)
		s.POST("/compare", cfg.SimulationHandler.Compare)
		s.POST("/query", cfg.SimulationHandler.Query)
	}

	// Knowledge base
	if cfg.KnowledgeHandler != nil {
		k := r.Group("/knowledge")
		k.POST("/index", cfg.KnowledgeHandler.Index)
		k.POST("/ask", cfg.KnowledgeHandler.Ask)
		k.GET("/status", cfg.KnowledgeHandler.Status)
	}

	return r
}
