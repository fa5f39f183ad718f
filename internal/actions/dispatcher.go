package actions

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/DeyvidJesus/gomech-ai-service/internal/models"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

const (
	replyNotCommand  = "Não identifiquei um comando de ação nessa mensagem."
	replyUnsupported = "❌ Ação '%s' não é suportada. Comandos disponíveis: criar OS, atualizar status, criar peça, adicionar item."
)

// Detection is the outcome of DetectAndPrepare. For a supported command exactly
// one of AutoExecute, len(MissingParams) > 0 or PendingConfirmation holds.
type Detection struct {
	IsCommand           bool
	Action              string
	Command             *Command
	Params              Params
	Values              map[string]any
	MissingParams       []string
	InvalidParams       []string
	PendingConfirmation bool
	AutoExecute         bool
	ConfirmationMessage string
	Reply               string
	Pending             *models.PendingAction
}

// Model converts the detection to its wire form.
func (d Detection) Model() *models.ActionDetection {
	missing := d.MissingParams
	if missing == nil {
		missing = []string{}
	}
	out := &models.ActionDetection{
		IsCommand:           d.IsCommand,
		Action:              d.Action,
		Params:              d.Values,
		MissingParams:       missing,
		InvalidParams:       d.InvalidParams,
		PendingConfirmation: d.PendingConfirmation,
		AutoExecute:         d.AutoExecute,
	}
	if d.Pending != nil {
		out.Description = d.Pending.Description
		out.Endpoint = d.Pending.Endpoint
		out.Method = d.Pending.Method
	}
	return out
}

type Dispatcher struct {
	catalog   *Catalog
	extractor Extractor
	signer    *TokenSigner
	log       *logger.Logger
}

// NewDispatcher wires the catalog and extractor. signer may be nil, in which
// case pending actions carry no token.
func NewDispatcher(catalog *Catalog, extractor Extractor, signer *TokenSigner, log *logger.Logger) *Dispatcher {
	return &Dispatcher{catalog: catalog, extractor: extractor, signer: signer, log: log.With("component", "action_dispatcher")}
}

func (d *Dispatcher) Catalog() *Catalog { return d.catalog }

func (d *Dispatcher) DetectAndPrepare(ctx context.Context, message string) (Detection, error) {
	// 1. Parse intent
	intent, err := d.extractor.Extract(ctx, message, d.catalog)
	if err != nil {
		return Detection{}, err
	}
	if !intent.IsCommand {
		return Detection{IsCommand: false, Reply: replyNotCommand}, nil
	}

	// 2. Validate that the action exists
	cmd, ok := d.catalog.Get(intent.Action)
	decoded, hasSchema := DecodeParams(intent.Action, intent.Params)
	if !ok || !hasSchema {
		d.log.Warn("unsupported action", "action", intent.Action)
		return Detection{
			IsCommand: true,
			Action:    intent.Action,
			Reply:     fmt.Sprintf(replyUnsupported, intent.Action),
		}, nil
	}
	if len(decoded.Unknown) > 0 {
		d.log.Debug("dropped unknown parameters", "action", cmd.Name, "unknown", decoded.Unknown)
	}

	// 3. Typed, normalized parameters; unconvertible values are kept as given
	values := decoded.Values()
	det := Detection{
		IsCommand:     true,
		Action:        cmd.Name,
		Command:       &cmd,
		Params:        decoded.Params,
		Values:        values,
		InvalidParams: decoded.Invalid,
	}
	if len(decoded.Invalid) > 0 {
		d.log.Warn("parameters kept without conversion", "action", cmd.Name, "invalid", decoded.Invalid)
	}
	d.log.Info("action identified", "action", cmd.Name, "params", len(values))

	// 4. Missing parameters
	if missing := Missing(cmd, values); len(missing) > 0 {
		det.MissingParams = missing
		det.Reply = d.missingParamsMessage(cmd, missing)
		return det, nil
	}
	det.MissingParams = []string{}

	pending := &models.PendingAction{
		Action:      cmd.Name,
		Description: cmd.Description,
		Params:      values,
		Endpoint:    cmd.Endpoint,
		Method:      cmd.Method,
	}

	if d.signer != nil {
		token, err := d.signer.Sign(pending)
		if err != nil {
			return Detection{}, fmt.Errorf("failed to sign pending action: %w", err)
		}
		pending.Token = token
	}

	// 5. Auto-execute or ask for confirmation
	if cmd.AutoExecute {
		det.AutoExecute = true
		det.Pending = pending
		det.Reply = fmt.Sprintf("⏳ Executando: %s...", cmd.Description)
		return det, nil
	}

	confirmation := RenderConfirmation(cmd.Confirmation, values)
	pending.Message = confirmation
	det.PendingConfirmation = true
	det.ConfirmationMessage = confirmation
	det.Pending = pending
	det.Reply = fmt.Sprintf("✅ Comando identificado!\n\n%s", confirmation) + d.invalidParamsNote(decoded)
	return det, nil
}

// invalidParamsNote warns about values that will reach the backend unconverted.
func (d *Dispatcher) invalidParamsNote(decoded Decoded) string {
	if len(decoded.Invalid) == 0 {
		return ""
	}
	items := make([]string, len(decoded.Invalid))
	for i, p := range decoded.Invalid {
		items[i] = fmt.Sprintf("• %s: \"%s\"", d.catalog.ParamLabel(p), FormatValue(decoded.Raw[p]))
	}
	return fmt.Sprintf("\n\n⚠️ Confira estes valores antes de confirmar:\n%s", strings.Join(items, "\n"))
}

func (d *Dispatcher) missingParamsMessage(cmd Command, missing []string) string {
	names := make([]string, len(missing))
	for i, p := range missing {
		names[i] = d.catalog.ParamLabel(p)
	}
	if len(names) == 1 {
		return fmt.Sprintf("📋 Para %s, preciso saber: **%s**\n\nPor favor, informe esse dado.", cmd.Description, names[0])
	}
	items := make([]string, len(names))
	for i, n := range names {
		items[i] = "• " + n
	}
	return fmt.Sprintf("📋 Para %s, preciso dos seguintes dados:\n\n%s\n\nPor favor, informe esses dados.", cmd.Description, strings.Join(items, "\n"))
}

// RenderConfirmation substitutes every {key} present in params. Placeholders
// without a value stay as they are.
func RenderConfirmation(template string, params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := template
	for _, k := range keys {
		out = strings.ReplaceAll(out, "{"+k+"}", FormatValue(params[k]))
	}
	return out
}

// FormatValue renders a parameter for messages and URL paths.
func FormatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
