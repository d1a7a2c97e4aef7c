package handler

import "net/http"

// SSEHandler handles Server-Sent Events streaming. It runs for the lifetime
// of the SSE connection, typically a loop that listens for events and pushes
// updates. The connection closes when the handler returns or the client
// disconnects.
//
//	handler.SSE(func(stream handler.StreamContext) error {
//		sub := broadcaster.Subscribe(stream)
//		defer sub.Close()
//
//		for {
//			select {
//			case <-stream.Done():
//				return nil
//			case msg := <-sub.Receive(stream):
//				if err := stream.SendFragment(views.PostCard(msg.Data),
//					handler.WithTarget("#posts"),
//					handler.WithPatchMode(handler.PatchPrepend),
//				); err != nil {
//					return err
//				}
//			}
//		}
//	})
type SSEHandler func(ctx StreamContext) error

type sseResponse struct {
	handler SSEHandler
}

// Render validates the DataStar connection and executes the SSE handler.
func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if !IsDataStar(r) {
		return NewHTTPError(http.StatusBadRequest, "sse_requires_datastar")
	}

	base := NewContext(w, r)
	if base.SSE() == nil {
		return ErrSSENotInitialized
	}

	ctx := &streamContext{
		Context: base,
		sse:     base.SSE(),
	}

	return s.handler(ctx)
}

// SSE creates a response that runs the given streaming handler over the
// DataStar SSE connection established by the page.
func SSE(handler SSEHandler) Response {
	return sseResponse{handler: handler}
}
