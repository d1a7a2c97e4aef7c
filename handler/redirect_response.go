package handler

import "net/http"

type redirectResponse struct {
	url    string
	status int
}

func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	// DataStar requests cannot follow a plain 3xx; the client expects a
	// redirect script over SSE instead.
	if IsDataStar(req) {
		sse := NewSSE(w, req)
		return sse.Redirect(r.url)
	}

	http.Redirect(w, req, r.url, r.status)
	return nil
}

// Redirect creates a response that redirects the client to url with
// 303 See Other, the right status after form submissions.
func Redirect(url string) Response {
	return redirectResponse{url: url, status: http.StatusSeeOther}
}

// RedirectWithStatus creates a redirect response with a custom status code.
func RedirectWithStatus(url string, status int) Response {
	return redirectResponse{url: url, status: status}
}
