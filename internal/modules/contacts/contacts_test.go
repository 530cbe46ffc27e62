package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules/modulestest"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, svc *ContactService, names ...string) []*Contact {
	t.Helper()
	var out []*Contact
	for _, n := range names {
		c, err := svc.Submit(context.Background(), ContactInput{
			Name:    n,
			Email:   strings.ToLower(n) + "@example.com",
			Message: "Need a quote.",
		})
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func TestSubmitContactHTTP(t *testing.T) {
	env := modulestest.New(t, &Contact{})
	app := modulestest.App(New(env.Deps))

	resp, body := modulestest.Do(t, app, modulestest.JSON(http.MethodPost, "/api/contact",
		`{"name":"Ana","email":"ana@example.com","phone":"555-123-4567","service":"landscaping","message":"Can you trim hedges?"}`), false)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))

	var stored Contact
	require.NoError(t, env.Deps.DB.First(&stored).Error)
	assert.Equal(t, "Ana", stored.Name)
	require.NotNil(t, stored.Service)
	assert.Equal(t, "Landscaping", *stored.Service)
	assert.False(t, stored.IsRead)

	confirm := env.Mail.SentTo("ana@example.com")
	require.Len(t, confirm, 1)
	notify := env.Mail.SentTo(modulestest.OperatorEmail)
	require.Len(t, notify, 1)
	assert.Equal(t, "ana@example.com", notify[0].ReplyTo)
	assert.Contains(t, notify[0].HTML, "Can you trim hedges?")
}

func TestSubmitContactSucceedsWhenMailFails(t *testing.T) {
	env := modulestest.New(t, &Contact{})
	env.Mail.FailFor["bob@example.com"] = true
	env.Mail.FailFor[modulestest.OperatorEmail] = true
	app := modulestest.App(New(env.Deps))

	resp, _ := modulestest.Do(t, app, modulestest.JSON(http.MethodPost, "/api/contact",
		`{"name":"Bob","email":"bob@example.com","message":"Hello"}`), false)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var n int64
	require.NoError(t, env.Deps.DB.Model(&Contact{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestSubmitContactValidation(t *testing.T) {
	env := modulestest.New(t, &Contact{})
	app := modulestest.App(New(env.Deps))

	for _, body := range []string{
		`{"email":"a@example.com","message":"hi"}`,
		`{"name":"A","email":"not-an-email","message":"hi"}`,
		`{"name":"A","email":"a@example.com","message":""}`,
		`{"name":"A","email":"a@example.com","message":"http://a.io http://b.io http://c.io"}`,
		`{"name":"A","email":"a@example.com","message":"you bastard"}`,
	} {
		resp, raw := modulestest.Do(t, app, modulestest.JSON(http.MethodPost, "/api/contact", body), false)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, string(raw))
	}

	var n int64
	require.NoError(t, env.Deps.DB.Model(&Contact{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Empty(t, env.Mail.Sent())
}

func TestListStatusAndPagination(t *testing.T) {
	env := modulestest.New(t, &Contact{})
	svc := NewContactService(env.Deps.DB, env.Deps.Audit)
	ctx := context.Background()

	cs := seed(t, svc, "A", "B", "C", "D", "E")
	read := true
	_, err := svc.Update(ctx, cs[0].ID, dto.ContactUpdateRequest{IsRead: &read}, "")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, cs[1].ID, false, ""))

	res, err := svc.List(ctx, "", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, res.Pagination.Total)
	assert.EqualValues(t, 2, res.Pagination.TotalPages)
	assert.Len(t, res.Contacts, 2)
	assert.EqualValues(t, 3, res.Unread)

	res, err = svc.List(ctx, StatusRead, 1, 20)
	require.NoError(t, err)
	require.Len(t, res.Contacts, 1)
	assert.Equal(t, cs[0].ID, res.Contacts[0].ID)

	res, err = svc.List(ctx, StatusDeleted, 1, 20)
	require.NoError(t, err)
	require.Len(t, res.Contacts, 1)
	assert.Equal(t, cs[1].ID, res.Contacts[0].ID)

	res, err = svc.List(ctx, StatusAll, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 5, res.Pagination.Total)

	res, err = svc.List(ctx, "", 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Pagination.Limit, "oversized limit falls back to default")

	_, err = svc.List(ctx, "spam", 1, 20)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSoftDeleteRestorePurge(t *testing.T) {
	env := modulestest.New(t, &Contact{})
	app := modulestest.App(New(env.Deps))
	svc := NewContactService(env.Deps.DB, env.Deps.Audit)
	c := seed(t, svc, "Dana")[0]

	resp, _ := modulestest.Do(t, app, modulestest.JSON(http.MethodPost, fmt.Sprintf("/api/admin/contacts/%d/restore", c.ID), ""), true)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = modulestest.Do(t, app, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/admin/contacts/%d", c.ID), nil), true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	recipients, err := svc.Recipients(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recipients)

	resp, raw := modulestest.Do(t, app, modulestest.JSON(http.MethodPost, fmt.Sprintf("/api/admin/contacts/%d/restore", c.ID), ""), true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var restored Contact
	require.NoError(t, json.Unmarshal(raw, &restored))
	assert.False(t, restored.DeletedAt.Valid)

	resp, _ = modulestest.Do(t, app, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/admin/contacts/%d?permanent=true", c.ID), nil), true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var n int64
	require.NoError(t, env.Deps.DB.Unscoped().Model(&Contact{}).Count(&n).Error)
	assert.Zero(t, n)

	var actions []string
	require.NoError(t, env.Deps.DB.Model(&models.AuditLog{}).Order("id").Pluck("action_type", &actions).Error)
	assert.Equal(t, []string{services.ActionSoftDelete, services.ActionRestore, services.ActionDelete}, actions)

	resp, _ = modulestest.Do(t, app, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/admin/contacts/%d", c.ID), nil), true)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUpdateContactNotes(t *testing.T) {
	env := modulestest.New(t, &Contact{})
	app := modulestest.App(New(env.Deps))
	svc := NewContactService(env.Deps.DB, env.Deps.Audit)
	c := seed(t, svc, "Eve")[0]

	resp, raw := modulestest.Do(t, app, modulestest.JSON(http.MethodPut, fmt.Sprintf("/api/admin/contacts/%d", c.ID),
		`{"is_read":true,"admin_notes":"called back"}`), true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var got Contact
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, got.IsRead)
	require.NotNil(t, got.AdminNotes)
	assert.Equal(t, "called back", *got.AdminNotes)

	resp, _ = modulestest.Do(t, app, modulestest.JSON(http.MethodPut, fmt.Sprintf("/api/admin/contacts/%d", c.ID), `{}`), true)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRecipientsDeduplicates(t *testing.T) {
	env := modulestest.New(t, &Contact{})
	svc := NewContactService(env.Deps.DB, env.Deps.Audit)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "B@example.com", "A@Example.com", "b@example.com"} {
		_, err := svc.Submit(ctx, ContactInput{Name: "x", Email: email, Message: "m"})
		require.NoError(t, err)
	}
	got, err := svc.Recipients(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "B@example.com"}, got)
}
