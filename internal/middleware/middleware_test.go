package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/logger"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/utils"
)

func newApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorResponse})
	app.Use(RequestLogger(logger.Nop()))
	handlers = append(handlers, func(c *fiber.Ctx) error {
		s, _ := SessionFrom(c)
		return c.SendString(s.UserID.String())
	})
	app.Get("/", handlers...)
	return app
}

func do(t *testing.T, app *fiber.App, header, value string) int {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode
}

func TestTokenRoundTrip(t *testing.T) {
	signer := NewSigner("test-secret", time.Hour)
	want := Session{UserID: uuid.New(), Role: models.RoleAdmin, UserType: models.UserTypeInvestor}

	tok, expires, err := signer.IssueToken(want, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(expires) < 59*time.Minute {
		t.Errorf("unexpected expiry %v", expires)
	}
	got, err := signer.ParseToken(tok)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseTokenRejects(t *testing.T) {
	signer := NewSigner("test-secret", time.Hour)
	s := Session{UserID: uuid.New(), Role: models.RoleUser}

	expired, _, _ := signer.IssueToken(s, time.Now().Add(-2*time.Hour))
	if _, err := signer.ParseToken(expired); err == nil {
		t.Error("expired token accepted")
	}

	other, _, _ := NewSigner("other-secret", time.Hour).IssueToken(s, time.Now())
	if _, err := signer.ParseToken(other); err == nil {
		t.Error("token signed with another secret accepted")
	}

	if _, err := signer.ParseToken("garbage"); err == nil {
		t.Error("garbage accepted")
	}
}

func TestAuthenticate(t *testing.T) {
	signer := NewSigner("test-secret", time.Hour)
	tok, _, _ := signer.IssueToken(Session{UserID: uuid.New(), Role: models.RoleUser}, time.Now())

	required := newApp(Authenticate(signer, true))
	if code := do(t, required, "", ""); code != fiber.StatusUnauthorized {
		t.Errorf("missing token: got %d", code)
	}
	if code := do(t, required, "Authorization", "Bearer nope"); code != fiber.StatusUnauthorized {
		t.Errorf("bad token: got %d", code)
	}
	if code := do(t, required, "Authorization", "Bearer "+tok); code != fiber.StatusOK {
		t.Errorf("good token: got %d", code)
	}
	if code := do(t, required, "Cookie", SessionCookie+"="+tok); code != fiber.StatusOK {
		t.Errorf("cookie token: got %d", code)
	}

	optional := newApp(Authenticate(signer, false))
	if code := do(t, optional, "", ""); code != fiber.StatusOK {
		t.Errorf("optional without token: got %d", code)
	}
	if code := do(t, optional, "Authorization", "Bearer nope"); code != fiber.StatusUnauthorized {
		t.Errorf("optional with bad token: got %d", code)
	}
}

func TestRequireAdminAndUserType(t *testing.T) {
	signer := NewSigner("test-secret", time.Hour)
	user, _, _ := signer.IssueToken(Session{UserID: uuid.New(), Role: models.RoleUser, UserType: models.UserTypeFarmer}, time.Now())
	admin, _, _ := signer.IssueToken(Session{UserID: uuid.New(), Role: models.RoleAdmin, UserType: models.UserTypeBuyer}, time.Now())

	adminOnly := newApp(Authenticate(signer, true), RequireAdmin())
	if code := do(t, adminOnly, "Authorization", "Bearer "+user); code != fiber.StatusForbidden {
		t.Errorf("user on admin route: got %d", code)
	}
	if code := do(t, adminOnly, "Authorization", "Bearer "+admin); code != fiber.StatusOK {
		t.Errorf("admin on admin route: got %d", code)
	}

	farmers := newApp(Authenticate(signer, true), RequireUserType(models.UserTypeFarmer))
	if code := do(t, farmers, "Authorization", "Bearer "+user); code != fiber.StatusOK {
		t.Errorf("farmer on farmer route: got %d", code)
	}
	if code := do(t, farmers, "Authorization", "Bearer "+admin); code != fiber.StatusForbidden {
		t.Errorf("buyer on farmer route: got %d", code)
	}
}

func TestVersionMiddleware(t *testing.T) {
	app := newApp(VersionMiddleware())

	for _, v := range []string{"", "1", "1.0", "v1.2.0"} {
		if code := do(t, app, "X-Api-Version", v); code != fiber.StatusOK {
			t.Errorf("version %q: got %d", v, code)
		}
	}
	if code := do(t, app, "X-Api-Version", "2.0.0"); code != fiber.StatusBadRequest {
		t.Errorf("version 2: got %d", code)
	}
}
