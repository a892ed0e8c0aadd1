// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"technews/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

//go:embed templates static
var files embed.FS

// Page names accepted by gin's c.HTML.
const (
	PageHome       = "homepage"
	PageSinglePost = "single-post"
	PageLogin      = "login"
	PageDashboard  = "dashboard"
	PageEditPost   = "edit-post"
	PageError      = "error"
)

var pages = []string{PageHome, PageSinglePost, PageLogin, PageDashboard, PageEditPost, PageError}

// Renderer builds one template set per page: the main layout, every
// partial, and the page's view.
func Renderer() (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()
	funcs := utils.TemplateFuncs()

	for _, page := range pages {
		tmpl, err := template.New("main.html").Funcs(funcs).ParseFS(files,
			"templates/layouts/main.html",
			"templates/partials/*.html",
			"templates/views/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.Add(page, tmpl)
	}
	return r, nil
}

// Static serves the embedded assets under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
