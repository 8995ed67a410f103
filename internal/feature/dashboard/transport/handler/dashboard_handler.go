// Package handler はdashboardフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stock_forecast/internal/api"
	"stock_forecast/internal/feature/dashboard/card"
	"stock_forecast/internal/feature/dashboard/domain"
	"stock_forecast/internal/feature/forecast/domain/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageTemplate はダッシュボードページのテンプレート名です。
const PageTemplate = "dashboard.html"

// Templates はダッシュボードのHTMLテンプレートを返します。
// router で gin.Engine.SetHTMLTemplate に渡して使用します。
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"sync":      card.SyncLabel,
		"noResults": card.NoResultsLabel,
		"cardView":  newCardView,
	}).ParseFS(templateFS, "templates/*.html"))
}

// DashboardController はダッシュボードの状態を保持するコントローラーのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type DashboardController interface {
	Refresh() <-chan struct{}
	Snapshot() domain.ViewState
}

// DashboardHandler はダッシュボードのHTTPリクエストを処理します。
type DashboardHandler struct {
	ctrl DashboardController
}

// NewDashboardHandler はDashboardHandlerの新しいインスタンスを生成します。
func NewDashboardHandler(ctrl DashboardController) *DashboardHandler {
	return &DashboardHandler{ctrl: ctrl}
}

type copyText struct {
	AppTitle          string
	Tagline           string
	SearchPlaceholder string
	LoadingTitle      string
	LoadingDetail     string
	ErrorTitle        string
	RetryLabel        string
	LiveLabel         string
	SourcesTitle      string
	ExpectedLabel     string
	AnalysisLabel     string
	Disclaimer        string
}

var pageCopy = copyText{
	AppTitle:          card.AppTitle,
	Tagline:           card.Tagline,
	SearchPlaceholder: card.SearchPlaceholder,
	LoadingTitle:      card.LoadingTitle,
	LoadingDetail:     card.LoadingDetail,
	ErrorTitle:        card.ErrorTitle,
	RetryLabel:        card.RetryLabel,
	LiveLabel:         card.LiveLabel,
	SourcesTitle:      card.SourcesTitle,
	ExpectedLabel:     card.ExpectedLabel,
	AnalysisLabel:     card.AnalysisLabel,
	Disclaimer:        card.Disclaimer,
}

// cardView はカード1枚分のテンプレート入力です。
type cardView struct {
	Copy copyText
	Card card.Card
}

func newCardView(c copyText, cd card.Card) cardView {
	return cardView{Copy: c, Card: cd}
}

// pageView はテンプレートに渡す表示用データです。
type pageView struct {
	Copy        copyText
	Mode        string
	Error       string
	LastUpdated string
	Query       string
	Cards       []card.Card
	Sources     []entity.Source
}

// Page はHTMLダッシュボードを返します。
//
// エンドポイント: GET /
// クエリ: q（銘柄コード・銘柄名の部分一致検索）
func (h *DashboardHandler) Page(c *gin.Context) {
	q := c.Query("q")
	s := h.ctrl.Snapshot()
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, PageTemplate, pageView{
		Copy:        pageCopy,
		Mode:        string(s.Mode()),
		Error:       s.Error,
		LastUpdated: s.LastUpdated,
		Query:       q,
		Cards:       card.RenderAll(domain.Filter(s.Instruments, q)),
		Sources:     card.RenderSources(s.Sources),
	})
}

// Forecast は現在の表示状態をJSONで返します。
//
// エンドポイント: GET /v1/forecast
// クエリ: q（銘柄コード・銘柄名の部分一致検索）
func (h *DashboardHandler) Forecast(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, toForecastResponse(h.ctrl.Snapshot(), c.Query("q")))
}

// Refresh は予測の再取得を開始します。
//
// エンドポイント: POST /v1/forecast/refresh
// クエリ: wait=true の場合、取得完了まで待機して 200 を返します。それ以外は 202 を返します。
func (h *DashboardHandler) Refresh(c *gin.Context) {
	wait, err := strconv.ParseBool(c.DefaultQuery("wait", "false"))
	if err != nil {
		slog.Warn("invalid wait parameter", "value", c.Query("wait"), "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "wait must be a boolean"})
		return
	}

	done := h.ctrl.Refresh()
	slog.Info("refresh requested", "wait", wait, "remote_addr", c.ClientIP())
	if !wait {
		c.JSON(http.StatusAccepted, toForecastResponse(h.ctrl.Snapshot(), c.Query("q")))
		return
	}

	select {
	case <-done:
	case <-c.Request.Context().Done():
		slog.Warn("client went away before refresh settled", "error", c.Request.Context().Err())
		return
	}
	c.JSON(http.StatusOK, toForecastResponse(h.ctrl.Snapshot(), c.Query("q")))
}

// RefreshPage はHTMLページのリフレッシュボタンから呼ばれ、ダッシュボードへリダイレクトします。
//
// エンドポイント: POST /refresh
func (h *DashboardHandler) RefreshPage(c *gin.Context) {
	h.ctrl.Refresh()
	c.Redirect(http.StatusSeeOther, "/")
}

// Ready は一度でも取得に成功していれば 200、それ以外は 503 を返します。
//
// エンドポイント: GET /readyz
func (h *DashboardHandler) Ready(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	s := h.ctrl.Snapshot()
	if s.LastUpdated == "" {
		c.JSON(http.StatusServiceUnavailable, api.ReadinessResponse{Status: "warming_up"})
		return
	}
	c.JSON(http.StatusOK, api.ReadinessResponse{Status: "ready", LastUpdated: s.LastUpdated})
}

func toForecastResponse(s domain.ViewState, q string) api.ForecastResponse {
	visible := domain.Filter(s.Instruments, q)
	cards := make([]api.CardResponse, 0, len(visible))
	for i, ins := range visible {
		rc := card.Render(ins, i+1)
		cards = append(cards, api.CardResponse{
			Rank:             rc.Rank,
			RankLabel:        rc.RankLabel,
			Symbol:           rc.Symbol,
			Name:             rc.Name,
			Sector:           rc.Sector,
			CurrentPrice:     ins.CurrentPrice,
			CurrentPriceText: rc.CurrentPrice,
			CurrentPriceDate: rc.CurrentPriceDate,
			TargetPrice:      ins.TargetPrice,
			TargetPriceText:  rc.TargetPrice,
			TargetPriceDate:  rc.TargetPriceDate,
			GainPercentage:   ins.GainPercentage,
			GainLabel:        rc.GainLabel,
			Positive:         rc.Positive,
			Reason:           rc.Reason,
		})
	}

	sources := make([]api.SourceResponse, 0, len(s.Sources))
	for _, src := range card.RenderSources(s.Sources) {
		sources = append(sources, api.SourceResponse{Title: src.Title, URI: src.URI})
	}

	return api.ForecastResponse{
		Mode:        string(s.Mode()),
		Loading:     s.Loading,
		Error:       s.Error,
		LastUpdated: s.LastUpdated,
		Query:       q,
		Total:       len(s.Instruments),
		Cards:       cards,
		Sources:     sources,
	}
}
