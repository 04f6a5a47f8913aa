package httpserver

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// withStatic serves files from the public directory ahead of the routes.
// Directories and missing files fall through.
func (s *Server) withStatic(next http.Handler) http.Handler {
	if s.opts.PublicDir == "" {
		return next
	}
	files := http.FileServer(http.Dir(s.opts.PublicDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method == http.MethodGet || r.Method == http.MethodHead) && s.isPublicFile(r.URL.Path) {
			setCacheControlForPath(w, r.URL.Path)
			files.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) isPublicFile(urlPath string) bool {
	clean := path.Clean("/" + urlPath)
	if clean == "/" {
		return false
	}
	fi, err := os.Stat(filepath.Join(s.opts.PublicDir, filepath.FromSlash(clean)))
	return err == nil && fi.Mode().IsRegular()
}

func setCacheControlForPath(w http.ResponseWriter, p string) {
	if cc := determineCacheControl(p); cc != "" {
		w.Header().Set("Cache-Control", cc)
	}
}

// determineCacheControl picks a Cache-Control value by file extension.
func determineCacheControl(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".css", ".js", ".woff", ".woff2", ".ttf", ".otf", ".eot":
		return "public, max-age=31536000, immutable"
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico":
		return "public, max-age=604800"
	case ".pdf", ".zip", ".tar", ".gz":
		return "public, max-age=86400"
	case ".xml", ".txt":
		return "public, max-age=3600"
	case ".html", "":
		return "no-cache, must-revalidate"
	}
	return ""
}
