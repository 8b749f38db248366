package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var contentTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
}

type staticHandler struct {
	root string
}

// NewStaticHandler serves regular files under root. "/" maps to index.html;
// directories and missing files are a plain-text 404.
func NewStaticHandler(root string) http.Handler {
	return &staticHandler{root: root}
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "405 Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	p := path.Clean("/" + r.URL.Path)
	if p == "/" {
		p = "/index.html"
	}

	file := filepath.Join(h.root, filepath.FromSlash(p))
	f, err := os.Open(file)
	if err != nil {
		http.Error(w, "404 Not Found", http.StatusNotFound)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.Error(w, "404 Not Found", http.StatusNotFound)
		return
	}

	ct, ok := contentTypes[strings.ToLower(filepath.Ext(file))]
	if !ok {
		ct = "text/plain"
	}
	w.Header().Set("Content-Type", ct)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
