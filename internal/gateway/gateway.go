// Package gateway is the single entry point for every fetching or mutating
// domain operation. It validates preconditions, talks to the remote content
// store, object storage, and the moderation adapter, normalizes their error
// shapes into the closed AppError set, and on success dispatches exactly one
// transition to the synchronization store.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kanishk-8/EcoCircle/internal/auth"
	"github.com/kanishk-8/EcoCircle/internal/models"
	"github.com/kanishk-8/EcoCircle/internal/moderation"
	"github.com/kanishk-8/EcoCircle/internal/objectstore"
	"github.com/kanishk-8/EcoCircle/internal/observability"
	"github.com/kanishk-8/EcoCircle/internal/storage"
	"github.com/kanishk-8/EcoCircle/internal/syncstore"
)

// defaultFeedLimit bounds one feed page when the caller does not say.
const defaultFeedLimit = 20

// ImageUpload is a raw image asset attached to a post.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Gateway orchestrates domain operations. It is stateless between calls;
// all content state lives in the synchronization store.
type Gateway struct {
	store   storage.ContentStore
	objects objectstore.Store
	mod     moderation.Classifier
	session *auth.Session
	sync    *syncstore.Store
	log     *slog.Logger
}

// New wires a gateway. session may be nil, in which case every operation
// fails with NOT_AUTHENTICATED.
func New(
	store storage.ContentStore,
	objects objectstore.Store,
	mod moderation.Classifier,
	session *auth.Session,
	sync *syncstore.Store,
) *Gateway {
	if mod == nil {
		mod = moderation.Disabled{}
	}
	return &Gateway{
		store:   store,
		objects: objects,
		mod:     mod,
		session: session,
		sync:    sync,
		log:     observability.GlobalLogger.Logger,
	}
}

// Sync exposes the synchronization store for snapshot reads and streams.
func (g *Gateway) Sync() *syncstore.Store {
	return g.sync
}

func (g *Gateway) requireSession() error {
	if g.session == nil {
		return models.NewNotAuthenticatedError()
	}
	return nil
}

// fail normalizes the error, records the outcome, and surfaces the message
// through the store's error slot. Expected failures keep their code;
// everything else leaves as INTERNAL_ERROR.
func (g *Gateway) fail(ctx context.Context, op string, err error) *models.AppError {
	appErr := models.AsAppError(err)
	observability.ObserveGatewayOp(op, appErr.Code)
	if appErr.Code == models.CodeInternal {
		g.log.ErrorContext(ctx, "gateway operation failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
	}
	g.sync.Dispatch(syncstore.SetError{Msg: appErr.Message})
	return appErr
}

func (g *Gateway) done(op string) {
	observability.ObserveGatewayOp(op, "OK")
}

// normalize maps storage sentinels onto the AppError taxonomy. The store
// cannot distinguish missing rows from access-control rejections, so both
// surface as NOT_FOUND here; explicit ownership checks in the gateway raise
// NOT_OWNER before a store call is ever made.
func normalize(err error, resource string, id interface{}) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return models.NewNotFoundError(resource, id)
	case errors.Is(err, storage.ErrEmptyPost):
		return models.NewValidationError("Post needs text content or an image")
	default:
		return err
	}
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
