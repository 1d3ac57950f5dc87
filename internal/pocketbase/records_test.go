package pocketbase_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Settj76/ecom/internal/pocketbase"
	"github.com/Settj76/ecom/internal/pocketbase/pbtest"
	"github.com/Settj76/ecom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*pocketbase.Client, *pbtest.Server) {
	t.Helper()
	srv := pbtest.NewServer(t)
	client, err := pocketbase.NewClient(srv.URL + "/")
	require.NoError(t, err)
	return client, srv
}

func TestNewClient_Validation(t *testing.T) {
	_, err := pocketbase.NewClient("")
	assert.Error(t, err)

	_, err = pocketbase.NewClient("ftp://example.com")
	assert.Error(t, err)

	c, err := pocketbase.NewClient(" https://pb.example.com/ ")
	require.NoError(t, err)
	assert.Equal(t, "https://pb.example.com", c.BaseURL())
}

func TestClient_Health(t *testing.T) {
	client, _ := newClient(t)
	assert.NoError(t, client.Health(context.Background()))
}

func TestRecordService_GetListAndSort(t *testing.T) {
	client, srv := newClient(t)
	for i := 1; i <= 5; i++ {
		srv.Seed("products", pbtest.Record{
			"name":    fmt.Sprintf("Product %d", i),
			"slug":    fmt.Sprintf("product-%d", i),
			"price":   float64(i) * 10,
			"stock":   float64(i),
			"created": fmt.Sprintf("2024-01-0%d 10:00:00.000Z", i),
		})
	}
	products := pocketbase.Collection[models.Product](client, models.ProductsCollection)
	assert.Equal(t, "products", products.Name())

	page, err := products.GetList(context.Background(), 1, 2, pocketbase.ListOptions{Sort: "-created"})
	require.NoError(t, err)
	assert.Equal(t, 5, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Product 5", page.Items[0].Name)
	assert.Equal(t, "Product 4", page.Items[1].Name)
	assert.Equal(t, 2024, page.Items[0].Created.Year())

	empty, err := products.GetList(context.Background(), 9, 2, pocketbase.ListOptions{})
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}

func TestRecordService_GetFullListPaginates(t *testing.T) {
	client, srv := newClient(t)
	total := pocketbase.FullListBatch + 3
	for i := 0; i < total; i++ {
		srv.Seed("products", pbtest.Record{"name": fmt.Sprintf("p%03d", i), "stock": float64(i % 7)})
	}
	products := pocketbase.Collection[models.Product](client, models.ProductsCollection)

	all, err := products.GetFullList(context.Background(), pocketbase.ListOptions{Sort: "name"})
	require.NoError(t, err)
	assert.Len(t, all, total)

	var listCalls int
	for _, r := range srv.Requests() {
		if strings.HasPrefix(r, "GET /api/collections/products/records?") {
			listCalls++
			assert.Contains(t, r, "skipTotal=1")
		}
	}
	assert.Equal(t, 2, listCalls)

	low, err := products.GetFullList(context.Background(), pocketbase.ListOptions{
		Filter: pocketbase.Filter("stock <= {:n}", map[string]any{"n": 0}),
	})
	require.NoError(t, err)
	for _, p := range low {
		assert.Zero(t, p.Stock)
	}
	assert.NotEmpty(t, low)
}

func TestRecordService_GetOneAndFirstListItem(t *testing.T) {
	client, srv := newClient(t)
	id := srv.Seed("products", pbtest.Record{"name": "Quoted", "slug": `we"ird`})
	products := pocketbase.Collection[models.Product](client, models.ProductsCollection)
	ctx := context.Background()

	got, err := products.GetOne(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Quoted", got.Name)

	_, err = products.GetOne(ctx, "missing")
	assert.True(t, pocketbase.IsNotFound(err))

	_, err = products.GetOne(ctx, "")
	assert.True(t, pocketbase.IsNotFound(err))

	first, err := products.GetFirstListItem(ctx, pocketbase.Filter("slug = {:slug}", map[string]any{"slug": `we"ird`}))
	require.NoError(t, err)
	assert.Equal(t, id, first.ID)

	_, err = products.GetFirstListItem(ctx, pocketbase.Filter("slug = {:slug}", map[string]any{"slug": "nope"}))
	require.Error(t, err)
	assert.True(t, pocketbase.IsNotFound(err))
	assert.Equal(t, "The requested resource wasn't found.", err.Error())
}

func TestRecordService_CreateUpdateDelete(t *testing.T) {
	client, srv := newClient(t)
	products := pocketbase.Collection[models.Product](client, models.ProductsCollection)
	ctx := pocketbase.WithToken(context.Background(), "admin-token")

	form := pocketbase.NewForm().
		Set("name", "Lamp").
		Set("slug", "lamp").
		Set("price", 19.99).
		Set("stock", 4).
		AddFile("image", "lamp.png", strings.NewReader("PNG"))
	created, err := products.Create(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", created.Name)
	assert.InDelta(t, 19.99, created.Price, 0.001)
	assert.Equal(t, 4, created.Stock)
	require.NotEmpty(t, created.Image)
	assert.Equal(t, []byte("PNG"), srv.File(created.Image))

	updated, err := products.Update(ctx, created.ID, map[string]any{"stock": 9})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Stock)
	assert.Equal(t, created.Image, updated.Image)

	_, err = products.Update(ctx, "", map[string]any{})
	assert.Error(t, err)

	require.NoError(t, products.Delete(ctx, created.ID))
	assert.Empty(t, srv.Records("products"))

	err = products.Delete(ctx, created.ID)
	assert.True(t, pocketbase.IsNotFound(err))
}

func TestRecordService_ValidationErrors(t *testing.T) {
	client, srv := newClient(t)
	srv.Seed("users", pbtest.Record{"email": "taken@example.com", "password": "secret123"})
	users := pocketbase.Collection[models.User](client, models.UsersCollection)

	_, err := users.Create(context.Background(), map[string]any{
		"email":           "taken@example.com",
		"password":        "password1",
		"passwordConfirm": "password1",
	})
	re, ok := pocketbase.AsResponseError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, re.Status)
	assert.Equal(t, "Value must be unique.", re.FieldMessage("email"))
}

func TestRecordService_TokenForwarded(t *testing.T) {
	client, srv := newClient(t)
	srv.Protect("users")
	users := pocketbase.Collection[models.User](client, models.UsersCollection)

	_, err := users.GetFullList(context.Background(), pocketbase.ListOptions{})
	assert.Equal(t, http.StatusForbidden, pocketbase.StatusOf(err))

	list, err := users.GetFullList(pocketbase.WithToken(context.Background(), "tok"), pocketbase.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, "tok", pocketbase.TokenFromContext(pocketbase.WithToken(context.Background(), "tok")))
}

func TestRecordService_AuthWithPassword(t *testing.T) {
	client, srv := newClient(t)
	id := srv.Seed("users", pbtest.Record{"email": "admin@example.com", "password": "hunter22", "role": "admin"})
	users := pocketbase.Collection[models.User](client, models.UsersCollection)

	auth, err := users.AuthWithPassword(context.Background(), "admin@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, id, auth.Record.ID)
	assert.True(t, auth.Record.IsAdmin())

	_, err = users.AuthWithPassword(context.Background(), "admin@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Failed to authenticate.", err.Error())
}

func TestClient_FileURL(t *testing.T) {
	client, err := pocketbase.NewClient("https://pb.example.com")
	require.NoError(t, err)

	assert.Equal(t, "https://pb.example.com/api/files/products/abc123/lamp%20one.png",
		client.FileURL("products", "abc123", "lamp one.png"))
	assert.Empty(t, client.FileURL("products", "abc123", ""))
}

func TestClient_ContextCancel(t *testing.T) {
	client, _ := newClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	assert.Error(t, client.Health(ctx))
}
