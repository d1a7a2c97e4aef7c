package post

import (
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/saasbase/handler"
	"github.com/dmitrymomot/saasbase/modules/billing"
	"github.com/dmitrymomot/saasbase/pkg/binder"
)

// NewRouter mounts the posts HTTP surface: list, create, and the realtime
// stream of new posts.
func NewRouter(svc *Service) http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(listHandler(svc)))
	r.Post("/", handler.Wrap(createHandler(svc),
		handler.WithBinders[handler.Context, createRequest](binder.JSON(), binder.Form()),
	))
	r.Get("/stream", handler.Wrap(streamHandler(svc)))

	return r
}

type emptyRequest struct{}

type createRequest struct {
	Title string `json:"title" form:"title"`
	Body  string `json:"body" form:"body"`
}

func listHandler(svc *Service) handler.HandlerFunc[handler.Context, emptyRequest] {
	return func(ctx handler.Context, _ emptyRequest) handler.Response {
		posts, err := svc.List(ctx)
		if err != nil {
			return handler.JSONError(err)
		}
		return handler.JSON(posts)
	}
}

func createHandler(svc *Service) handler.HandlerFunc[handler.Context, createRequest] {
	return func(ctx handler.Context, req createRequest) handler.Response {
		userID, ok := billing.AccountIDFromContext(ctx)
		if !ok {
			return handler.JSONError(handler.ErrUnauthorized)
		}

		created, err := svc.Create(ctx, userID, req.Title, req.Body)
		if err != nil {
			return handler.JSONError(err)
		}

		// DataStar clients get the rendered card patched in; API clients
		// get the created entity.
		if handler.IsDataStar(ctx.Request()) {
			return handler.HTML(postCard(created),
				handler.WithTarget("#posts"),
				handler.WithPatchMode(handler.PatchPrepend),
			)
		}
		return handler.JSON(created, handler.WithJSONStatus(http.StatusCreated))
	}
}

func streamHandler(svc *Service) handler.HandlerFunc[handler.Context, emptyRequest] {
	return func(ctx handler.Context, _ emptyRequest) handler.Response {
		return handler.SSE(func(stream handler.StreamContext) error {
			sub := svc.Subscribe(stream)
			defer func() { _ = sub.Close() }()

			for {
				select {
				case <-stream.Done():
					return nil
				case msg, ok := <-sub.Receive(stream):
					if !ok {
						return nil
					}
					if err := stream.SendFragment(postCard(Post{
						ID:          msg.Data.ID,
						Title:       msg.Data.Title,
						Body:        msg.Data.Body,
						AuthorEmail: msg.Data.AuthorEmail,
						CreatedAt:   msg.Data.CreatedAt,
					}),
						handler.WithTarget("#posts"),
						handler.WithPatchMode(handler.PatchPrepend),
					); err != nil {
						return err
					}
					if err := stream.SendSignal("latestPost", msg.Data); err != nil {
						return err
					}
				}
			}
		})
	}
}

// postCard renders the HTML fragment shared by create responses and the
// realtime stream.
func postCard(p Post) string {
	return fmt.Sprintf(
		`<article id="post-%s" class="post-card"><h3>%s</h3><p>%s</p><footer>%s</footer></article>`,
		p.ID,
		html.EscapeString(p.Title),
		html.EscapeString(p.Body),
		html.EscapeString(p.AuthorEmail),
	)
}
