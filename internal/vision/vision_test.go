package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm/llmtest"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

const brakePadAnalysis = `1. **Identificação**: Pastilha de freio dianteira
2. **Condição**: Desgastada
3. **Problemas Visíveis**: Material de atrito abaixo de 2mm
4. **Gravidade**: 4/5
5. **Recomendação**: Trocar imediatamente
6. **Risco**: Sim, perda de eficiência de frenagem
7. **Estimativa de Vida Útil**: Menos de 1.000 km`

var pngImage = base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))

func TestParseAnalysis(t *testing.T) {
	a := ParseAnalysis(brakePadAnalysis)

	assert.Equal(t, "Pastilha de freio dianteira", a.IdentifiedPart)
	assert.Equal(t, "Desgastada", a.Condition)
	assert.Equal(t, "Material de atrito abaixo de 2mm", a.Problems)
	assert.Equal(t, 4, a.Severity)
	assert.Equal(t, "Trocar imediatamente", a.Recommendation)
	assert.Equal(t, "Sim, perda de eficiência de frenagem", a.SafetyRisk)
	assert.Equal(t, "Menos de 1.000 km", a.EstimatedLifespan)

	assert.Equal(t, notSpecified, ExtractField("sem campos", "Condição"))
	assert.Equal(t, notSpecified, ExtractField("Condição: **", "Condição"))
}

func TestExtractSeverity(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Gravidade: 2/5", 2},
		{"gravidade estimada 3", 3},
		{"Peça em estado crítico", 5},
		{"Há um defeito na borda", 4},
		{"Correia desgastada, pouco gasto", 3},
		{"Estado bom", 2},
		{"sem informação", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractSeverity(tt.text), tt.text)
	}
}

func TestParseCodes(t *testing.T) {
	assert.Equal(t, []string{"AB12345", "GM-5678"}, ParseCodes("AB12345\n- Marca: Bosch\nGM-5678\n\n"))
	assert.Empty(t, ParseCodes("Nenhum código visível"))
}

func TestDecodeImage(t *testing.T) {
	img, err := DecodeImage(pngImage)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIME)

	img, err = DecodeImage("data:image/webp;base64," + base64.StdEncoding.EncodeToString([]byte("RIFF")))
	require.NoError(t, err)
	assert.Equal(t, "image/webp", img.MIME)
	assert.Equal(t, []byte("RIFF"), img.Data)

	img, err = DecodeImage(base64.StdEncoding.EncodeToString([]byte("hello")))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIME)

	for _, bad := range []string{"", "%%%", "data:image/png;base64"} {
		_, err := DecodeImage(bad)
		assert.True(t, errors.Is(err, apierr.ErrInvalidInput), bad)
	}
}

func TestSuggestPart(t *testing.T) {
	s, err := SuggestPart("Pastilha de freio dianteira", &VehicleInfo{Make: "Fiat", Model: "Uno", Year: float64(2015)})
	require.NoError(t, err)
	assert.Equal(t, "pastilha de freio", s.PartName)
	require.NotNil(t, s.Suggestion)
	assert.Equal(t, "FREIOS", s.Suggestion.Category)
	assert.Equal(t, "R$ 120-280", s.Suggestion.AveragePrice)
	assert.Equal(t, "Fiat Uno 2015", s.Suggestion.VehicleSpecific)

	s, err = SuggestPart("Disco de freio ventilado", nil)
	require.NoError(t, err)
	assert.Equal(t, "disco de freio", s.PartName)
	assert.Empty(t, s.Suggestion.VehicleSpecific)

	s, err = SuggestPart("Amortecedor traseiro", nil)
	require.NoError(t, err)
	assert.Nil(t, s.Suggestion)
	assert.Equal(t, "Consultar fornecedor com código da peça", s.Recommendation)
}

func TestRun(t *testing.T) {
	provider := llmtest.New(brakePadAnalysis)
	s := New(provider, "gpt-4o", logger.NewNop())

	out, err := s.Run(context.Background(), Request{
		Action:      "detect_damage",
		ImageBase64: pngImage,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Damage)
	assert.Equal(t, "CRITICAL", out.Damage.DamageLevel)
	assert.Equal(t, "REPLACE_IMMEDIATELY", out.Damage.RecommendedAction)

	out, err = s.Run(context.Background(), Request{
		Action:      "analyze",
		ImageBase64: pngImage,
		Context:     &RequestContext{PartContext: "Gol 2012"},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Analysis)
	assert.Equal(t, 4, out.Analysis.Severity)

	reqs := provider.Requests()
	require.Len(t, reqs, 2)
	last := reqs[1]
	assert.Contains(t, last.Prompt, "**Contexto adicional:** Gol 2012")
	assert.Equal(t, "gpt-4o", last.Model)
	assert.Equal(t, analysisMaxTokens, last.MaxTokens)
	require.Len(t, last.Images, 1)
	assert.Equal(t, "image/png", last.Images[0].MIME)

	out, err = s.Run(context.Background(), Request{
		Action:  "suggest_part",
		Context: &RequestContext{IdentifiedPart: "filtro de óleo"},
	})
	require.NoError(t, err)
	assert.Equal(t, "MOTOR", out.Suggestion.Suggestion.Category)
	assert.Len(t, provider.Requests(), 2)

	_, err = s.Run(context.Background(), Request{Action: "x-ray", ImageBase64: pngImage})
	assert.True(t, errors.Is(err, apierr.ErrInvalidInput))
}

func TestExtractCodes(t *testing.T) {
	s := New(llmtest.New("BOSCH 0986AB1234\n- gravado na lateral\nLOTE 2291"), "", logger.NewNop())

	res, err := s.ExtractCodes(context.Background(), pngImage)
	require.NoError(t, err)
	assert.Equal(t, 2, res.CodesFound)
	assert.Equal(t, "2 código(s) encontrado(s)", res.Message)
}

func TestModelFailure(t *testing.T) {
	s := New(&llmtest.Scripted{Err: errors.New("boom")}, "", logger.NewNop())

	_, err := s.Describe(context.Background(), pngImage)
	assert.True(t, errors.Is(err, apierr.ErrInvocation))
}
