// Package gemini はGoogle Search groundingを有効にしたGemini APIによる株価予測クライアントを提供します。
package gemini

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"stock_forecast/internal/feature/forecast/domain"
	"stock_forecast/internal/feature/forecast/domain/entity"
	"stock_forecast/internal/feature/forecast/usecase"
)

// jsonMIMEType は構造化JSON出力を要求するレスポンスMIMEタイプです。
const jsonMIMEType = "application/json"

// GeminiGenerator はGoogle Gemini APIを使用して株価予測テキストを生成します。
type GeminiGenerator struct {
	client       *genai.Client
	model        string
	temperature  float32
	jsonResponse bool
}

// GeminiGeneratorがForecastGeneratorを実装していることをコンパイル時に検証します。
var _ usecase.ForecastGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator はAPIキーを使用してGeminiGeneratorの新しいインスタンスを生成します。
// APIキーが未設定の場合は通信を行わずに domain.ErrMissingAPIKey を返します。
func NewGeminiGenerator(ctx context.Context, cfg Config, httpClient *http.Client) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{
		client:       client,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		jsonResponse: cfg.JSONResponse,
	}, nil
}

// Generate はGoogle Searchツールを有効にしてプロンプトを送信し、
// 生成テキストとgroundingの引用元を返します。
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (*entity.Completion, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.generateConfig())
	if err != nil {
		return nil, fmt.Errorf("gemini API request failed: %w", err)
	}

	return &entity.Completion{
		Text:      resp.Text(),
		Citations: citations(resp),
	}, nil
}

// generateConfig はリクエストごとの生成設定を組み立てます。
func (g *GeminiGenerator) generateConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}
	if g.jsonResponse {
		cfg.ResponseMIMEType = jsonMIMEType
	}
	return cfg
}

// citations は先頭候補のgroundingメタデータから引用元を取り出します。
// メタデータがない場合はnilを返します。
func citations(resp *genai.GenerateContentResponse) []entity.Citation {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	gm := resp.Candidates[0].GroundingMetadata
	if gm == nil {
		return nil
	}

	out := make([]entity.Citation, 0, len(gm.GroundingChunks))
	for _, chunk := range gm.GroundingChunks {
		var c entity.Citation
		if chunk != nil && chunk.Web != nil {
			c.Title = chunk.Web.Title
			c.URI = chunk.Web.URI
		}
		out = append(out, c)
	}
	return out
}
