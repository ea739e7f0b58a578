package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"asset-server/internal/model"
	"asset-server/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

// UIHandler serves the small built-in browse pages. Asset descriptions are
// written in markdown and rendered server-side.
type UIHandler struct {
	assets    *service.AssetService
	templates *template.Template
	md        goldmark.Markdown
}

func NewUIHandler(assets *service.AssetService) (*UIHandler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &UIHandler{
		assets:    assets,
		templates: tmpl,
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

type uiListData struct {
	Assets []model.Asset
}

func (h *UIHandler) Index(c *gin.Context) {
	assets, err := h.assets.List(c.Request.Context(), c.Query("family"), c.Query("status"), 100, 0)
	if err != nil {
		handleError(c, err)
		return
	}
	h.render(c, "list.html", uiListData{Assets: assets})
}

type uiDetailData struct {
	Asset       *model.AssetDetail
	Description template.HTML
	Comments    []model.Comment
}

func (h *UIHandler) Detail(c *gin.Context) {
	detail, err := h.assets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	comments, err := h.assets.Comments(c.Request.Context(), detail.ID)
	if err != nil {
		handleError(c, err)
		return
	}
	var rendered bytes.Buffer
	if err := h.md.Convert([]byte(detail.Description), &rendered); err != nil {
		rendered.Reset()
		rendered.WriteString(template.HTMLEscapeString(detail.Description))
	}
	h.render(c, "detail.html", uiDetailData{
		Asset:       detail,
		Description: template.HTML(rendered.String()),
		Comments:    comments,
	})
}

func (h *UIHandler) render(c *gin.Context, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		handleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
