package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"gastino/internal/common/logger"
	"gastino/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	tenants     map[string]*models.Tenant
	departments map[string][]models.Department
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tenants:     make(map[string]*models.Tenant),
		departments: make(map[string][]models.Department),
	}
}

func (f *fakeStore) ListTenants(context.Context) ([]models.Tenant, error) {
	var out []models.Tenant
	for _, t := range f.tenants {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeStore) TenantByID(_ context.Context, id string) (*models.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return nil, assert.AnError
	}
	return t, nil
}

func (f *fakeStore) CreateTenant(_ context.Context, t *models.Tenant) error {
	f.tenants[t.ID] = t
	return nil
}

func (f *fakeStore) UpdateTenant(_ context.Context, t *models.Tenant) error {
	f.tenants[t.ID] = t
	return nil
}

func (f *fakeStore) ListDepartments(_ context.Context, tenantID string) ([]models.Department, error) {
	return f.departments[tenantID], nil
}

func (f *fakeStore) CreateDepartment(_ context.Context, d *models.Department) error {
	f.departments[d.TenantID] = append(f.departments[d.TenantID], *d)
	return nil
}

func (f *fakeStore) UpdateDepartment(_ context.Context, d *models.Department) error {
	list := f.departments[d.TenantID]
	for i := range list {
		if list[i].ID == d.ID {
			list[i] = *d
		}
	}
	return nil
}

type fakeCache struct {
	invalidated []string
}

func (f *fakeCache) Invalidate(_ context.Context, channelID string) error {
	f.invalidated = append(f.invalidated, channelID)
	return nil
}

func newTestServer(t *testing.T, store *fakeStore, cache *fakeCache) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(store, cache, "admin-token", logger.NewTestLogger(t)).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func validTenant() map[string]interface{} {
	return map[string]interface{}{
		"name":       "Hotel Sonnenhof",
		"type":       "hotel",
		"channel_id": "channel-1",
		"languages":  []string{"de", "it", "en"},
		"timezone":   "Europe/Berlin",
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	srv := newTestServer(t, newFakeStore(), &fakeCache{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/admin/tenants", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/admin/tenants", "wrong-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateTenant(t *testing.T) {
	store := newFakeStore()
	cache := &fakeCache{}
	srv := newTestServer(t, store, cache)

	resp := doJSON(t, http.MethodPost, srv.URL+"/admin/tenants", "admin-token", validTenant())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Tenant
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active)
	require.Len(t, store.tenants, 1)
	assert.Equal(t, []string{"channel-1"}, cache.invalidated)
}

func TestCreateTenantValidatesInput(t *testing.T) {
	srv := newTestServer(t, newFakeStore(), &fakeCache{})

	tests := []struct {
		name   string
		mutate func(m map[string]interface{})
	}{
		{name: "missing name", mutate: func(m map[string]interface{}) { m["name"] = "" }},
		{name: "missing channel", mutate: func(m map[string]interface{}) { m["channel_id"] = "" }},
		{name: "no languages", mutate: func(m map[string]interface{}) { m["languages"] = []string{} }},
		{name: "bad language code", mutate: func(m map[string]interface{}) { m["languages"] = []string{"deutsch"} }},
		{name: "bad timezone", mutate: func(m map[string]interface{}) { m["timezone"] = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validTenant()
			tt.mutate(body)
			resp := doJSON(t, http.MethodPost, srv.URL+"/admin/tenants", "admin-token", body)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		})
	}
}

func TestUpdateTenantInvalidatesOldAndNewChannel(t *testing.T) {
	store := newFakeStore()
	store.tenants["tenant-1"] = &models.Tenant{ID: "tenant-1", Name: "Alt", ChannelID: "channel-old", Languages: []string{"de"}}
	cache := &fakeCache{}
	srv := newTestServer(t, store, cache)

	body := validTenant()
	body["channel_id"] = "channel-new"
	resp := doJSON(t, http.MethodPut, srv.URL+"/admin/tenants/tenant-1", "admin-token", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, []string{"channel-old", "channel-new"}, cache.invalidated)
	assert.Equal(t, "channel-new", store.tenants["tenant-1"].ChannelID)
}

func TestCreateDepartment(t *testing.T) {
	store := newFakeStore()
	store.tenants["tenant-1"] = &models.Tenant{ID: "tenant-1", Name: "Hotel", ChannelID: "channel-1", Languages: []string{"de"}}
	cache := &fakeCache{}
	srv := newTestServer(t, store, cache)

	resp := doJSON(t, http.MethodPost, srv.URL+"/admin/tenants/tenant-1/departments", "admin-token", map[string]interface{}{
		"name":             "Küche",
		"group_channel_id": "group-kitchen",
		"position":         1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Len(t, store.departments["tenant-1"], 1)
	assert.Equal(t, []string{"channel-1"}, cache.invalidated)
}

func TestCreateSecondEscalationDepartmentRejected(t *testing.T) {
	store := newFakeStore()
	store.tenants["tenant-1"] = &models.Tenant{ID: "tenant-1", Name: "Hotel", ChannelID: "channel-1", Languages: []string{"de"}}
	store.departments["tenant-1"] = []models.Department{
		{ID: "dept-1", TenantID: "tenant-1", Name: "Rezeption", GroupChannelID: "group-reception", IsEscalation: true, Active: true},
	}
	srv := newTestServer(t, store, &fakeCache{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/admin/tenants/tenant-1/departments", "admin-token", map[string]interface{}{
		"name":             "Concierge",
		"group_channel_id": "group-concierge",
		"is_escalation":    true,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Len(t, store.departments["tenant-1"], 1)
}

func TestUpdateDepartmentKeepsEscalationFlag(t *testing.T) {
	store := newFakeStore()
	store.tenants["tenant-1"] = &models.Tenant{ID: "tenant-1", Name: "Hotel", ChannelID: "channel-1", Languages: []string{"de"}}
	store.departments["tenant-1"] = []models.Department{
		{ID: "dept-1", TenantID: "tenant-1", Name: "Rezeption", GroupChannelID: "group-reception", IsEscalation: true, Active: true},
	}
	srv := newTestServer(t, store, &fakeCache{})

	// Updating the same department keeps the single escalation slot.
	resp := doJSON(t, http.MethodPut, srv.URL+"/admin/tenants/tenant-1/departments/dept-1", "admin-token", map[string]interface{}{
		"name":             "Front Desk",
		"group_channel_id": "group-reception",
		"is_escalation":    true,
		"active":           true,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Front Desk", store.departments["tenant-1"][0].Name)
}
