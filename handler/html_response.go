package handler

import "net/http"

// htmlResponse wraps an HTML fragment to implement Response.
type htmlResponse struct {
	html    string
	options []PatchOption
}

// Render outputs the fragment via SSE for DataStar requests or as plain HTML
// for regular requests.
func (h htmlResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) {
		sse := NewSSE(w, r)
		return sse.PatchElements(h.html, h.options...)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := w.Write([]byte(h.html))
	return err
}

// HTML creates a response that renders an HTML fragment. For DataStar
// requests the fragment is patched into the DOM according to the options;
// otherwise it is written as a regular HTML body.
//
//	return handler.HTML(views.PostCard(post),
//		handler.WithTarget("#posts"),
//		handler.WithPatchMode(handler.PatchPrepend),
//	)
func HTML(html string, opts ...PatchOption) Response {
	return htmlResponse{html: html, options: opts}
}
