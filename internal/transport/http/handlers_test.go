// Copyright 2026 The OpenTrusty Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/opentrusty/clientmanagement/internal/association"
	"github.com/opentrusty/clientmanagement/internal/audit"
	"github.com/opentrusty/clientmanagement/internal/client"
	"github.com/opentrusty/clientmanagement/internal/clientgroup"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/event"
	"github.com/opentrusty/clientmanagement/internal/identity"
	"github.com/opentrusty/clientmanagement/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

const (
	testSecret = "test-secret"
	userA      = "0192a4d2-7c1e-7b3a-9f00-000000000001"
)

type testServer struct {
	router *chi.Mux
	events *event.Recorder
}

func newTestServer(t *testing.T, cfg Config) *testServer {
	t.Helper()
	store := memory.New()
	rec := &event.Recorder{}
	clients := client.NewService(store.Clients(), rec, audit.Nop{}, client.Options{})
	groups := clientgroup.NewService(store.Groups(), store.Clients(), rec, audit.Nop{})
	associations := association.NewService(store.Associations(), store.Clients(), identity.AllowAll{}, rec, audit.Nop{})

	rl := NewRateLimiter(1000, 1000)
	t.Cleanup(rl.Stop)

	h := NewHandler(clients, groups, associations, nil, cfg)
	return &testServer{router: NewRouter(h, rl), events: rec}
}

func devConfig() Config {
	return Config{Development: true, DefaultTenant: "default-tenant", DefaultUser: "dev-user", JWTSecret: testSecret}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

// TestPurpose: Validates the route table of the facade.
// Scope: Unit Test
// Expected: Every RPC route matches; the API document is only routed in development.
// Test Case ID: HTTP-01
func TestRouter_Routes(t *testing.T) {
	const c = "/api/v1/clients/0192a4d2-7c1e-7b3a-9f00-00000000000c"
	const g = "/api/v1/groups/0192a4d2-7c1e-7b3a-9f00-00000000000a"

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/clients"},
		{http.MethodGet, "/api/v1/clients"},
		{http.MethodGet, c},
		{http.MethodPut, c},
		{http.MethodDelete, c},
		{http.MethodGet, c + "/groups"},
		{http.MethodPost, c + "/users"},
		{http.MethodGet, c + "/users"},
		{http.MethodDelete, c + "/users/" + userA},
		{http.MethodPost, "/api/v1/groups"},
		{http.MethodGet, "/api/v1/groups"},
		{http.MethodGet, g},
		{http.MethodPut, g},
		{http.MethodDelete, g},
		{http.MethodGet, g + "/clients"},
		{http.MethodPost, g + "/clients/" + userA},
		{http.MethodDelete, g + "/clients/" + userA},
		{http.MethodGet, g + "/clients/" + userA},
		{http.MethodGet, "/api/v1/users/" + userA + "/clients"},
		{http.MethodGet, "/health"},
	}

	dev := newTestServer(t, devConfig())
	for _, rt := range routes {
		assert.True(t, dev.router.Match(chi.NewRouteContext(), rt.method, rt.path), "%s %s should exist", rt.method, rt.path)
	}

	assert.True(t, dev.router.Match(chi.NewRouteContext(), http.MethodGet, "/swagger/doc.json"))
	prod := newTestServer(t, Config{})
	assert.False(t, prod.router.Match(chi.NewRouteContext(), http.MethodGet, "/swagger/doc.json"))
}

// TestPurpose: Validates the client CRUD round trip through the facade.
// Scope: Integration Test (in-memory store)
// Expected: Create 201, get/update/list 200, delete {success:true}, second delete 404 NotFound.
// Test Case ID: HTTP-02
func TestClientLifecycle_OverHTTP(t *testing.T) {
	s := newTestServer(t, devConfig())
	hdr := map[string]string{HeaderTenantID: "t1"}

	w := s.do(t, http.MethodPost, "/api/v1/clients", ClientRequest{CompanyName: "Acme", ICENumber: "001234567000089"}, hdr)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[ClientResponse](t, w)
	assert.Equal(t, "t1", created.TenantID)
	assert.Equal(t, "Active", created.Status)

	w = s.do(t, http.MethodGet, "/api/v1/clients/"+created.ID, nil, hdr)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/clients/"+created.ID,
		ClientRequest{CompanyName: "Acme Corp", ICENumber: "001234567000089", Status: "Suspended"}, hdr)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Suspended", decode[ClientResponse](t, w).Status)

	w = s.do(t, http.MethodGet, "/api/v1/clients?page=1&pageSize=10&searchTerm=Acme", nil, hdr)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[PageResponse[ClientResponse]](t, w)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, 10, page.PageSize)

	w = s.do(t, http.MethodDelete, "/api/v1/clients/"+created.ID+"?deletedBy=auditor", nil, hdr)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[SuccessResponse](t, w).Success)

	w = s.do(t, http.MethodDelete, "/api/v1/clients/"+created.ID, nil, hdr)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, int(codes.NotFound), decode[ErrorResponse](t, w).Code)

	w = s.do(t, http.MethodGet, "/api/v1/clients/"+created.ID+"?includeDeleted=true", nil, hdr)
	require.Equal(t, http.StatusOK, w.Code)
	audited := decode[ClientResponse](t, w)
	assert.True(t, audited.IsDeleted)
	require.NotNil(t, audited.DeletedBy)
	assert.Equal(t, "auditor", *audited.DeletedBy)

	assert.Len(t, s.events.BySubject(event.SubjectClientDeleted), 1)
}

// TestPurpose: Validates tenant resolution precedence.
// Scope: Unit Test
// Security: Tenant context resolution
// Expected: Body/query field beats header, header beats claim; production without a tenant is 401, development falls back to default-tenant.
// Test Case ID: HTTP-03
func TestTenantResolution(t *testing.T) {
	dev := newTestServer(t, devConfig())
	token := signToken(t, Claims{TenantID: "claim-tenant"})

	w := dev.do(t, http.MethodPost, "/api/v1/clients", ClientRequest{TenantID: "body-tenant", CompanyName: "A"},
		map[string]string{HeaderTenantID: "header-tenant", "Authorization": token})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "body-tenant", decode[ClientResponse](t, w).TenantID)

	w = dev.do(t, http.MethodPost, "/api/v1/clients", ClientRequest{CompanyName: "B"},
		map[string]string{HeaderTenantID: "header-tenant", "Authorization": token})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "header-tenant", decode[ClientResponse](t, w).TenantID)

	w = dev.do(t, http.MethodPost, "/api/v1/clients", ClientRequest{CompanyName: "C"},
		map[string]string{"Authorization": token})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "claim-tenant", decode[ClientResponse](t, w).TenantID)

	w = dev.do(t, http.MethodPost, "/api/v1/clients", ClientRequest{CompanyName: "D"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "default-tenant", decode[ClientResponse](t, w).TenantID)

	w = dev.do(t, http.MethodGet, "/api/v1/clients?tenantId=body-tenant", nil, map[string]string{HeaderTenantID: "header-tenant"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[PageResponse[ClientResponse]](t, w).TotalCount)

	prod := newTestServer(t, Config{JWTSecret: testSecret})
	w = prod.do(t, http.MethodPost, "/api/v1/clients", ClientRequest{CompanyName: "E"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, int(codes.Unauthenticated), decode[ErrorResponse](t, w).Code)
}

// TestPurpose: Validates actor resolution precedence.
// Scope: Unit Test
// Expected: Explicit field, then headers, then claims, then the development default, then System.
// Test Case ID: HTTP-04
func TestActorResolution(t *testing.T) {
	dev := NewHandler(nil, nil, nil, nil, devConfig())
	prod := NewHandler(nil, nil, nil, nil, Config{})

	tests := []struct {
		name     string
		h        *Handler
		explicit string
		caller   Caller
		want     string
	}{
		{"explicit wins", dev, "alice", Caller{HeaderUserID: "bob"}, "alice"},
		{"user id header", dev, "", Caller{HeaderUserID: "bob", HeaderUserEmail: "b@x.io"}, "bob"},
		{"email header", dev, "", Caller{HeaderUserEmail: "b@x.io", ClaimSubject: "sub"}, "b@x.io"},
		{"subject claim", dev, "", Caller{ClaimSubject: "sub", ClaimEmail: "e@x.io"}, "sub"},
		{"email claim", dev, "", Caller{ClaimEmail: "e@x.io", ClaimName: "Eve"}, "e@x.io"},
		{"name claim", dev, "", Caller{ClaimName: "Eve"}, "Eve"},
		{"development default", dev, "", Caller{}, "dev-user"},
		{"system sentinel", prod, "  ", Caller{}, domain.SystemActor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r = r.WithContext(withCaller(r.Context(), tt.caller))
			assert.Equal(t, tt.want, tt.h.resolveActor(r, tt.explicit))
		})
	}
}

// TestPurpose: Validates that malformed identifiers are rejected before any store call.
// Scope: Unit Test
// Security: Input validation boundary
// Expected: 400 InvalidArgument for bad path ids, blank or oversized user ids and bad paging.
// Test Case ID: HTTP-05
func TestMalformedInput_InvalidArgument(t *testing.T) {
	s := newTestServer(t, devConfig())

	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/v1/clients/not-a-uuid", nil},
		{http.MethodDelete, "/api/v1/groups/123", nil},
		{http.MethodPost, "/api/v1/groups/123/clients/" + userA, nil},
		{http.MethodPost, "/api/v1/clients/" + userA + "/users", AssignRequest{UserID: "   "}},
		{http.MethodPost, "/api/v1/clients/" + userA + "/users", AssignRequest{UserID: strings.Repeat("u", association.MaxUserIDLength+1)}},
		{http.MethodGet, "/api/v1/users/" + strings.Repeat("u", association.MaxUserIDLength+1) + "/clients", nil},
		{http.MethodGet, "/api/v1/clients?page=abc", nil},
	}
	for _, tc := range cases {
		w := s.do(t, tc.method, tc.path, tc.body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, int(codes.InvalidArgument), decode[ErrorResponse](t, w).Code)
	}
	assert.Empty(t, s.events.Events())
}

// TestPurpose: Validates conflict and validation mapping.
// Scope: Integration Test (in-memory store)
// Expected: Duplicate ICE is 409 AlreadyExists; unknown status on update is 400 InvalidArgument.
// Test Case ID: HTTP-06
func TestErrorMapping_OverHTTP(t *testing.T) {
	s := newTestServer(t, devConfig())

	w := s.do(t, http.MethodPost, "/api/v1/clients", ClientRequest{CompanyName: "A", ICENumber: "111111111111111"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[ClientResponse](t, w).ID

	w = s.do(t, http.MethodPost, "/api/v1/clients", ClientRequest{CompanyName: "B", ICENumber: "111111111111111"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int(codes.AlreadyExists), decode[ErrorResponse](t, w).Code)

	w = s.do(t, http.MethodPut, "/api/v1/clients/"+id, ClientRequest{CompanyName: "A", Status: "Archived"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int(codes.InvalidArgument), decode[ErrorResponse](t, w).Code)
}

// TestPurpose: Validates that unexpected errors do not leak their cause.
// Scope: Unit Test
// Security: Information disclosure prevention
// Expected: A plain error maps to Internal with a fixed message; domain errors keep their code.
// Test Case ID: HTTP-07
func TestToStatus(t *testing.T) {
	st := toStatus(errors.New("dial tcp 10.0.0.5:5432: password authentication failed"))
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "internal error", st.Message())

	assert.Equal(t, codes.NotFound, toStatus(domain.ErrNotFound).Code())
	assert.Equal(t, codes.AlreadyExists, toStatus(domain.NewDuplicate("name", "VIP")).Code())
	assert.Equal(t, codes.InvalidArgument, toStatus(domain.NewValidation("status", "bad")).Code())
	assert.Equal(t, codes.InvalidArgument, toStatus(invalidArgument("x")).Code())
}

// TestPurpose: Validates bearer token handling.
// Scope: Unit Test
// Security: Token signature verification
// Expected: A token signed with another key is rejected with 401; no token passes through.
// Test Case ID: HTTP-08
func TestIdentityMiddleware_BearerToken(t *testing.T) {
	s := newTestServer(t, devConfig())

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{TenantID: "victim"}).SignedString([]byte("other"))
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/api/v1/clients", nil, map[string]string{"Authorization": "Bearer " + forged})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/clients", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestPurpose: Validates group membership and user assignment through the facade.
// Scope: Integration Test (in-memory store)
// Expected: The group reports its creator, add is idempotent, missing membership removal is 404, assign twice returns the same association id.
// Test Case ID: HTTP-09
func TestMembershipAndAssignment_OverHTTP(t *testing.T) {
	s := newTestServer(t, devConfig())

	w := s.do(t, http.MethodPost, "/api/v1/clients", ClientRequest{CompanyName: "Acme"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	clientID := decode[ClientResponse](t, w).ID

	w = s.do(t, http.MethodPost, "/api/v1/groups", GroupRequest{Name: "VIP"}, map[string]string{HeaderUserID: "alice"})
	require.Equal(t, http.StatusCreated, w.Code)
	group := decode[GroupResponse](t, w)
	groupID := group.ID
	require.NotNil(t, group.CreatedBy)
	assert.Equal(t, "alice", *group.CreatedBy)

	member := "/api/v1/groups/" + groupID + "/clients/" + clientID
	for i := 0; i < 2; i++ {
		w = s.do(t, http.MethodPost, member, nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	assert.Len(t, s.events.BySubject(event.SubjectClientAddedToGroup), 1)

	w = s.do(t, http.MethodGet, member, nil, nil)
	assert.True(t, decode[MembershipResponse](t, w).IsMember)

	w = s.do(t, http.MethodGet, "/api/v1/groups/"+groupID+"/clients", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[ListResponse[ClientResponse]](t, w).Items, 1)

	w = s.do(t, http.MethodGet, "/api/v1/clients/"+clientID+"/groups", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[ListResponse[GroupResponse]](t, w).Items[0].ClientCount)

	w = s.do(t, http.MethodDelete, member, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, member, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assign := "/api/v1/clients/" + clientID + "/users"
	w = s.do(t, http.MethodPost, assign, AssignRequest{UserID: userA, AssignedBy: "admin"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[AssignResponse](t, w)
	w = s.do(t, http.MethodPost, assign, AssignRequest{UserID: userA}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first.AssociationID, decode[AssignResponse](t, w).AssociationID)

	w = s.do(t, http.MethodGet, "/api/v1/users/"+userA+"/clients?pageSize=500", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	linked := decode[PageResponse[AssociationResponse]](t, w)
	assert.Equal(t, 1, linked.TotalCount)
	assert.Equal(t, 100, linked.PageSize)
	assert.Equal(t, "admin", linked.Items[0].AssignedBy)

	w = s.do(t, http.MethodDelete, assign+"/"+userA, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, assign+"/"+userA, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestPurpose: Validates the health endpoint and the development API document.
// Scope: Unit Test
// Expected: Health returns healthy; the document is valid JSON with the API title.
// Test Case ID: HTTP-10
func TestHealthAndDocument(t *testing.T) {
	s := newTestServer(t, devConfig())

	w := s.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, w)["status"])

	w = s.do(t, http.MethodGet, "/swagger/doc.json", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := decode[map[string]any](t, w)
	info, ok := doc["info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Client Management API", info["title"])
}

// TestPurpose: Validates that an out-of-range page number yields an empty page rather than a failure.
// Scope: Integration Test (in-memory store)
// Expected: page=MaxInt answers 200 with no items on every paginated listing.
// Test Case ID: HTTP-11
func TestPagination_HugePageIsEmpty(t *testing.T) {
	s := newTestServer(t, devConfig())

	w := s.do(t, http.MethodPost, "/api/v1/clients", ClientRequest{CompanyName: "Acme"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	clientID := decode[ClientResponse](t, w).ID

	huge := "?page=" + strconv.Itoa(math.MaxInt)
	paths := []string{
		"/api/v1/clients" + huge,
		"/api/v1/groups" + huge,
		"/api/v1/clients/" + clientID + "/users" + huge,
		"/api/v1/users/" + userA + "/clients" + huge,
	}
	for _, path := range paths {
		w := s.do(t, http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusOK, w.Code, "%s: %s", path, w.Body.String())
		page := decode[PageResponse[json.RawMessage]](t, w)
		assert.Empty(t, page.Items, path)
		assert.Equal(t, domain.MaxPage, page.Page, path)
	}

	w = s.do(t, http.MethodGet, "/api/v1/clients", nil, nil)
	assert.Equal(t, 1, decode[PageResponse[ClientResponse]](t, w).TotalCount)
}

// TestPurpose: Validates that user ids issued by external identity providers are treated as opaque strings.
// Scope: Integration Test (in-memory store)
// Expected: A non-UUID user id can be assigned, listed by user and removed.
// Test Case ID: HTTP-12
func TestAssociations_OpaqueUserID(t *testing.T) {
	s := newTestServer(t, devConfig())
	const user = "auth0|user-42"

	w := s.do(t, http.MethodPost, "/api/v1/clients", ClientRequest{CompanyName: "Acme"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	clientID := decode[ClientResponse](t, w).ID

	assign := "/api/v1/clients/" + clientID + "/users"
	w = s.do(t, http.MethodPost, assign, AssignRequest{UserID: user}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[AssignResponse](t, w).Success)

	w = s.do(t, http.MethodGet, "/api/v1/users/"+url.PathEscape(user)+"/clients", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	linked := decode[PageResponse[AssociationResponse]](t, w)
	require.Len(t, linked.Items, 1)
	assert.Equal(t, user, linked.Items[0].UserID)
	assert.Equal(t, clientID, linked.Items[0].ClientID)

	w = s.do(t, http.MethodGet, assign, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user, decode[PageResponse[AssociationResponse]](t, w).Items[0].UserID)

	w = s.do(t, http.MethodDelete, assign+"/"+url.PathEscape(user), nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, s.events.BySubject(event.SubjectUserRemovedFromClient), 1)
}
