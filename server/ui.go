package server

import (
	"fmt"
	"net/http"
)

const uiHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Moniker Catalog Browser</title>
    <style>
        body { font-family: -apple-system, Helvetica, Arial, sans-serif; margin: 2rem; color: #222; }
        h1 { font-size: 1.4rem; }
        code { background: #f2f2f2; padding: 1px 4px; border-radius: 3px; }
        #tree { margin-top: 1rem; }
        .node { margin-left: 1.2rem; cursor: pointer; line-height: 1.6; }
        .leaf { color: #0a6; }
        .status { color: #999; font-size: 0.85em; margin-left: 0.4em; }
    </style>
</head>
<body>
    <h1>Moniker Catalog Browser</h1>
    <p>
        API entry points: <code>/resolve/&lt;path&gt;</code>,
        <code>/describe/&lt;path&gt;</code>, <code>/list/&lt;path&gt;</code>,
        <code>/catalog/search?q=term</code>, <code>/health</code>
    </p>
    <div id="tree"></div>
    <script>
    async function loadChildren(path, container) {
        const res = await fetch('/tree/' + path);
        const data = await res.json();
        for (const child of data.children) {
            const div = document.createElement('div');
            div.className = 'node' + (child.is_leaf ? ' leaf' : '');
            div.textContent = child.path;
            const status = document.createElement('span');
            status.className = 'status';
            status.textContent = child.status;
            div.appendChild(status);
            div.onclick = (e) => {
                e.stopPropagation();
                if (!div.dataset.expanded) {
                    div.dataset.expanded = '1';
                    loadChildren(child.path, div);
                }
            };
            container.appendChild(div);
        }
    }
    loadChildren('', document.getElementById('tree'));
    </script>
</body>
</html>`

// HandleUI serves the minimal HTML catalog browser at GET /ui
func (s *Server) HandleUI(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, uiHTML)
}
