package routes

import (
	"errors"
	"net/http"

	"school-portal-server/services"
	"school-portal-server/storage"
	"school-portal-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// messaging builds the messaging service over the live database. Swapped for
// a MemoryStore-backed service in tests.
var messaging = func() *services.MessagingService {
	return services.NewMessagingService(storage.NewMessageDB(storage.DB), services.NewUnreadCache(storage.Redis))
}

func currentViewer(ctx iris.Context) (services.Viewer, bool) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return services.Viewer{}, false
	}
	claims := tok.(*utils.AccessToken)
	return services.Viewer{ID: claims.ID, Role: claims.Role}, true
}

type ComposeMessageInput struct {
	Mode        string  `json:"mode" validate:"required,oneof=direct broadcast"`
	RecipientID *uint   `json:"recipientID"`
	Audience    *string `json:"audience"`
	Subject     string  `json:"subject" validate:"max=256"`
	Body        string  `json:"body" validate:"max=10000"`
}

type ReplyInput struct {
	Body string `json:"body" validate:"max=10000"`
}

// CreateMessage composes a new top-level message, direct or broadcast.
func CreateMessage(ctx iris.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}

	var input ComposeMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	msg, err := messaging().Compose(viewer, services.ComposeRequest{
		Mode:        input.Mode,
		RecipientID: input.RecipientID,
		Audience:    input.Audience,
		Subject:     input.Subject,
		Body:        input.Body,
	})
	if err != nil {
		handleMessagingError(err, ctx)
		return
	}

	if msg.IsBroadcast() {
		utils.Audit(ctx, "message.broadcast", "message", msg.ID, nil, msg)
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(msg)
}

// GetInbox returns the viewer's top-level messages plus their unread badge.
func GetInbox(ctx iris.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}

	view, err := messaging().Inbox(viewer)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(view)
}

// GetSent returns the top-level messages the viewer authored.
func GetSent(ctx iris.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}

	msgs, err := messaging().Sent(viewer)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"messages": msgs})
}

// GetThread returns a root message with its ordered replies. Opening the
// thread marks the root read when the viewer is its direct recipient.
func GetThread(ctx iris.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	view, threadErr := messaging().OpenThread(id, viewer)
	if threadErr != nil {
		handleMessagingError(threadErr, ctx)
		return
	}
	ctx.JSON(view)
}

// ReplyToMessage adds a reply to the thread rooted at {id}.
func ReplyToMessage(ctx iris.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var input ReplyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	reply, replyErr := messaging().Reply(viewer, id, input.Body)
	if replyErr != nil {
		handleMessagingError(replyErr, ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(reply)
}

// MarkMessageRead flips the read flag on a direct message addressed to the
// viewer. Safe to call repeatedly.
func MarkMessageRead(ctx iris.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	msg, markErr := messaging().MarkRead(id, viewer)
	if markErr != nil {
		handleMessagingError(markErr, ctx)
		return
	}
	ctx.JSON(msg)
}

// GetUnreadCount returns the viewer's unread badge.
func GetUnreadCount(ctx iris.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}

	n, err := messaging().UnreadCount(viewer)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"unreadCount": n})
}

func handleMessagingError(err error, ctx iris.Context) {
	switch {
	case errors.Is(err, services.ErrEmptyBody),
		errors.Is(err, services.ErrMissingRecipient),
		errors.Is(err, services.ErrMissingAudience),
		errors.Is(err, services.ErrInvalidAddressee),
		errors.Is(err, services.ErrInvalidAudience),
		errors.Is(err, services.ErrNotThreadRoot),
		errors.Is(err, services.ErrNoReplyTarget):
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
	case errors.Is(err, services.ErrBroadcastForbidden):
		utils.CreateError(iris.StatusForbidden, "Forbidden", err.Error(), ctx)
	case errors.Is(err, services.ErrMessageNotFound),
		errors.Is(err, services.ErrNotVisible):
		// Invisible messages read as missing so ids cannot be enumerated.
		utils.CreateError(iris.StatusNotFound, "Not Found", services.ErrMessageNotFound.Error(), ctx)
	default:
		utils.CreateInternalServerError(ctx)
	}
}
