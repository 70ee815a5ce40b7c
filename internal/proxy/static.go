package proxy

import (
	"net/http"
	"path"
	"path/filepath"

	apierrors "github.com/eternisai/fxinsight/internal/errors"
	"github.com/gin-gonic/gin"
)

// StaticHandler serves files from dir and answers every other GET with
// dir/index.html, so client-side routes resolve to the UI.
func StaticHandler(dir string) gin.HandlerFunc {
	root := http.Dir(dir)
	fileServer := http.FileServer(root)
	index := filepath.Join(dir, "index.html")

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			apierrors.AbortWithNotFound(c, "Not found", nil)
			return
		}

		if f, err := root.Open(path.Clean("/" + c.Request.URL.Path)); err == nil {
			stat, statErr := f.Stat()
			f.Close()
			if statErr == nil && !stat.IsDir() {
				fileServer.ServeHTTP(c.Writer, c.Request)
				return
			}
		}

		c.File(index)
	}
}
