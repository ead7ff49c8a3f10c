package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"school-portal-server/models"
	"school-portal-server/services"
	"school-portal-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// buildMessagingApp creates a minimal Iris app with the messaging routes, a
// JWT verifier and a memory-backed messaging service.
func buildMessagingApp() (*iris.Application, *services.MemoryStore) {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")

	store := services.NewMemoryStore()
	messaging = func() *services.MessagingService {
		return services.NewMessagingService(store, nil)
	}

	app := iris.New()
	app.Validator = validator.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	messages := app.Party("/api/messages", accessTokenVerifierMiddleware)
	{
		messages.Post("/", CreateMessage)
		messages.Get("/inbox", GetInbox)
		messages.Get("/sent", GetSent)
		messages.Get("/unread-count", GetUnreadCount)
		messages.Get("/{id:uint}", GetThread)
		messages.Post("/{id:uint}/replies", ReplyToMessage)
		messages.Patch("/{id:uint}/read", MarkMessageRead)
	}
	if err := app.Build(); err != nil {
		panic(err)
	}
	return app, store
}

func signMessagingToken(id uint, role string) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, _ := signer.Sign(utils.AccessToken{ID: id, Role: role})
	return string(token)
}

func doJSON(app *iris.Application, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestMessagesRequireToken(t *testing.T) {
	app, _ := buildMessagingApp()

	resp := doJSON(app, http.MethodGet, "/api/messages/inbox", "", nil)
	if resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}
}

func TestComposeAndInboxFlow(t *testing.T) {
	app, _ := buildMessagingApp()

	adminToken := signMessagingToken(1, models.RoleAdmin)
	parentToken := signMessagingToken(2, models.RoleParent)

	recipient := uint(2)
	resp := doJSON(app, http.MethodPost, "/api/messages", adminToken, iris.Map{
		"mode":        "direct",
		"recipientID": recipient,
		"subject":     "Fees due",
		"body":        "Fees due",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for compose, got %d: %s", resp.Code, resp.Body.String())
	}

	var created models.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding compose response: %v", err)
	}
	if created.RecipientID == nil || *created.RecipientID != recipient {
		t.Fatalf("unexpected recipient in response: %v", created.RecipientID)
	}

	resp = doJSON(app, http.MethodGet, "/api/messages/inbox", parentToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for inbox, got %d", resp.Code)
	}
	var inbox services.InboxView
	if err := json.Unmarshal(resp.Body.Bytes(), &inbox); err != nil {
		t.Fatalf("decoding inbox: %v", err)
	}
	if len(inbox.Messages) != 1 || inbox.UnreadCount != 1 {
		t.Fatalf("expected one unread message, got %d messages unread=%d", len(inbox.Messages), inbox.UnreadCount)
	}

	// the admin's own inbox stays empty, the sent list does not
	resp = doJSON(app, http.MethodGet, "/api/messages/inbox", adminToken, nil)
	var adminInbox services.InboxView
	json.Unmarshal(resp.Body.Bytes(), &adminInbox)
	if len(adminInbox.Messages) != 0 {
		t.Fatal("sender inbox should not list their own message")
	}

	resp = doJSON(app, http.MethodGet, "/api/messages/sent", adminToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for sent, got %d", resp.Code)
	}
}

func TestComposeValidationOverHTTP(t *testing.T) {
	app, _ := buildMessagingApp()

	adminToken := signMessagingToken(1, models.RoleAdmin)
	teacherToken := signMessagingToken(3, models.RoleTeacher)

	// broadcast without an audience
	resp := doJSON(app, http.MethodPost, "/api/messages", adminToken, iris.Map{
		"mode": "broadcast",
		"body": "hello",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing audience, got %d", resp.Code)
	}

	// blank body
	resp = doJSON(app, http.MethodPost, "/api/messages", adminToken, iris.Map{
		"mode":        "direct",
		"recipientID": 2,
		"body":        "   ",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank body, got %d", resp.Code)
	}

	// broadcasts are admin-only
	resp = doJSON(app, http.MethodPost, "/api/messages", teacherToken, iris.Map{
		"mode":     "broadcast",
		"audience": models.RoleParent,
		"body":     "hello",
	})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for teacher broadcast, got %d", resp.Code)
	}

	// nothing was stored
	resp = doJSON(app, http.MethodGet, "/api/messages/sent", adminToken, nil)
	var sent struct {
		Messages []models.Message `json:"messages"`
	}
	json.Unmarshal(resp.Body.Bytes(), &sent)
	if len(sent.Messages) != 0 {
		t.Fatalf("failed composes must not persist, got %d messages", len(sent.Messages))
	}
}

func TestThreadAndReplyOverHTTP(t *testing.T) {
	app, _ := buildMessagingApp()

	adminToken := signMessagingToken(1, models.RoleAdmin)
	parentToken := signMessagingToken(2, models.RoleParent)
	teacherToken := signMessagingToken(3, models.RoleTeacher)

	resp := doJSON(app, http.MethodPost, "/api/messages", adminToken, iris.Map{
		"mode":        "direct",
		"recipientID": 2,
		"subject":     "Fees due",
		"body":        "Fees due",
	})
	var root models.Message
	json.Unmarshal(resp.Body.Bytes(), &root)

	resp = doJSON(app, http.MethodPost, "/api/messages/1/replies", parentToken, iris.Map{
		"body": "Noted, will pay Friday.",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for reply, got %d: %s", resp.Code, resp.Body.String())
	}
	var reply models.Message
	json.Unmarshal(resp.Body.Bytes(), &reply)
	if reply.Subject != "Re: Fees due" {
		t.Fatalf("unexpected reply subject %q", reply.Subject)
	}

	resp = doJSON(app, http.MethodGet, "/api/messages/1", adminToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for thread, got %d", resp.Code)
	}
	var thread services.ThreadView
	if err := json.Unmarshal(resp.Body.Bytes(), &thread); err != nil {
		t.Fatalf("decoding thread: %v", err)
	}
	if len(thread.Replies) != 1 || thread.Replies[0].SenderID != 2 {
		t.Fatalf("expected one reply from the parent, got %+v", thread.Replies)
	}

	// an unrelated viewer cannot open the thread or post into it
	resp = doJSON(app, http.MethodGet, "/api/messages/1", teacherToken, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unrelated viewer, got %d", resp.Code)
	}
	resp = doJSON(app, http.MethodPost, "/api/messages/1/replies", teacherToken, iris.Map{
		"body": "me too",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unrelated reply, got %d", resp.Code)
	}

	resp = doJSON(app, http.MethodGet, "/api/messages/1", adminToken, nil)
	json.Unmarshal(resp.Body.Bytes(), &thread)
	if len(thread.Replies) != 1 {
		t.Fatalf("the rejected reply must not join the thread, got %d replies", len(thread.Replies))
	}
}

func TestMarkReadOverHTTP(t *testing.T) {
	app, _ := buildMessagingApp()

	adminToken := signMessagingToken(1, models.RoleAdmin)
	parentToken := signMessagingToken(2, models.RoleParent)

	doJSON(app, http.MethodPost, "/api/messages", adminToken, iris.Map{
		"mode":        "direct",
		"recipientID": 2,
		"body":        "see me after class",
	})

	resp := doJSON(app, http.MethodPatch, "/api/messages/1/read", parentToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for mark read, got %d", resp.Code)
	}
	var msg models.Message
	json.Unmarshal(resp.Body.Bytes(), &msg)
	if !msg.IsRead {
		t.Fatal("message should be read after the flip")
	}

	resp = doJSON(app, http.MethodGet, "/api/messages/unread-count", parentToken, nil)
	var badge struct {
		UnreadCount int64 `json:"unreadCount"`
	}
	json.Unmarshal(resp.Body.Bytes(), &badge)
	if badge.UnreadCount != 0 {
		t.Fatalf("expected unread count 0 after reading, got %d", badge.UnreadCount)
	}

	// flipping again is harmless
	resp = doJSON(app, http.MethodPatch, "/api/messages/1/read", parentToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for repeated mark read, got %d", resp.Code)
	}
}

func TestMarkReadHiddenOverHTTP(t *testing.T) {
	app, _ := buildMessagingApp()

	adminToken := signMessagingToken(1, models.RoleAdmin)
	teacherToken := signMessagingToken(3, models.RoleTeacher)

	doJSON(app, http.MethodPost, "/api/messages", adminToken, iris.Map{
		"mode":        "direct",
		"recipientID": 2,
		"subject":     "Disciplinary note",
		"body":        "kept back after class",
	})

	resp := doJSON(app, http.MethodPatch, "/api/messages/1/read", teacherToken, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for uninvolved viewer, got %d", resp.Code)
	}
	if bytes.Contains(resp.Body.Bytes(), []byte("kept back after class")) {
		t.Fatal("the response must not carry the message body")
	}
}
