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
	"net/http"
	"strconv"
	"time"

	"github.com/opentrusty/clientmanagement/internal/client"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
)

// ClientRequest is the body of CreateClient and UpdateClient. Update
// replaces every field.
type ClientRequest struct {
	TenantID             string     `json:"tenantId,omitempty"`
	CompanyName          string     `json:"companyName" example:"Atlas Logistics SARL"`
	Country              string     `json:"country,omitempty" example:"Morocco"`
	Address              string     `json:"address,omitempty"`
	Industry             string     `json:"industry,omitempty" example:"Logistics"`
	ICENumber            string     `json:"iceNumber,omitempty" example:"001234567000089"`
	RCNumber             string     `json:"rcNumber,omitempty" example:"CASA12345"`
	VATNumber            string     `json:"vatNumber,omitempty"`
	CNSSNumber           string     `json:"cnssNumber,omitempty"`
	AdminContactPerson   string     `json:"adminContactPerson,omitempty"`
	BillingContactPerson string     `json:"billingContactPerson,omitempty"`
	ContactEmail         string     `json:"contactEmail,omitempty"`
	ContactPhone         string     `json:"contactPhone,omitempty"`
	Status               string     `json:"status,omitempty" example:"Active"`
	FiscalYearEnd        *time.Time `json:"fiscalYearEnd,omitempty"`
	AssignedTeamID       string     `json:"assignedTeamId,omitempty"`
	Actor                string     `json:"actor,omitempty"`
}

func (req ClientRequest) input() client.Input {
	return client.Input{
		CompanyName:          req.CompanyName,
		Country:              req.Country,
		Address:              req.Address,
		Industry:             req.Industry,
		ICENumber:            req.ICENumber,
		RCNumber:             req.RCNumber,
		VATNumber:            req.VATNumber,
		CNSSNumber:           req.CNSSNumber,
		AdminContactPerson:   req.AdminContactPerson,
		BillingContactPerson: req.BillingContactPerson,
		ContactEmail:         req.ContactEmail,
		ContactPhone:         req.ContactPhone,
		Status:               req.Status,
		FiscalYearEnd:        req.FiscalYearEnd,
		AssignedTeamID:       req.AssignedTeamID,
	}
}

// ClientResponse is a client record.
type ClientResponse struct {
	ID                   string     `json:"id"`
	TenantID             string     `json:"tenantId"`
	CompanyName          string     `json:"companyName"`
	Country              string     `json:"country"`
	Address              string     `json:"address"`
	Industry             string     `json:"industry"`
	ICENumber            *string    `json:"iceNumber"`
	RCNumber             *string    `json:"rcNumber"`
	VATNumber            *string    `json:"vatNumber"`
	CNSSNumber           *string    `json:"cnssNumber"`
	AdminContactPerson   string     `json:"adminContactPerson"`
	BillingContactPerson string     `json:"billingContactPerson"`
	ContactEmail         string     `json:"contactEmail"`
	ContactPhone         string     `json:"contactPhone"`
	Status               string     `json:"status"`
	FiscalYearEnd        *time.Time `json:"fiscalYearEnd"`
	AssignedTeamID       *string    `json:"assignedTeamId"`
	IsDeleted            bool       `json:"isDeleted,omitempty"`
	DeletedAt            *time.Time `json:"deletedAt,omitempty"`
	DeletedBy            *string    `json:"deletedBy,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func toClientResponse(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:                   c.ID,
		TenantID:             c.TenantID,
		CompanyName:          c.CompanyName,
		Country:              c.Country,
		Address:              c.Address,
		Industry:             c.Industry,
		ICENumber:            c.ICENumber,
		RCNumber:             c.RCNumber,
		VATNumber:            c.VATNumber,
		CNSSNumber:           c.CNSSNumber,
		AdminContactPerson:   c.AdminContactPerson,
		BillingContactPerson: c.BillingContactPerson,
		ContactEmail:         c.ContactEmail,
		ContactPhone:         c.ContactPhone,
		Status:               string(c.Status),
		FiscalYearEnd:        c.FiscalYearEnd,
		AssignedTeamID:       c.AssignedTeamID,
		IsDeleted:            c.IsDeleted,
		DeletedAt:            c.DeletedAt,
		DeletedBy:            c.DeletedBy,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

func toClientResponses(cs []*client.Client) []ClientResponse {
	out := make([]ClientResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toClientResponse(c))
	}
	return out
}

// PageResponse is one page of a tenant listing.
type PageResponse[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
}

func toPageResponse[E, T any](p domain.Page[E], conv func(E) T) PageResponse[T] {
	items := make([]T, 0, len(p.Items))
	for _, e := range p.Items {
		items = append(items, conv(e))
	}
	return PageResponse[T]{Items: items, TotalCount: p.TotalCount, Page: p.Page, PageSize: p.PageSize}
}

// ListResponse is an unpaginated listing.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

// SuccessResponse reports the outcome of a delete or membership change.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CreateClient handles client creation
// @Summary Create a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param X-Tenant-Id header string false "Tenant ID"
// @Param request body ClientRequest true "Client"
// @Success 201 {object} ClientResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /clients [post]
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	const op = "CreateClient"
	var req ClientRequest
	if err := decodeBody(r, &req, true); err != nil {
		h.fail(w, r, op, err)
		return
	}
	tenantID, log, err := h.begin(r, op, req.TenantID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	c, err := h.clients.Create(r.Context(), tenantID, h.resolveActor(r, req.Actor), req.input())
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	log.InfoContext(r.Context(), "client created", logger.ClientID(c.ID))
	respondJSON(w, http.StatusCreated, toClientResponse(c))
}

// GetClient returns one client
// @Summary Get a client
// @Description With includeDeleted=true a soft-deleted client is returned with its deletion audit fields.
// @Tags Clients
// @Produce json
// @Param clientId path string true "Client ID"
// @Param includeDeleted query bool false "Include soft-deleted"
// @Success 200 {object} ClientResponse
// @Failure 404 {object} ErrorResponse
// @Router /clients/{clientId} [get]
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	const op = "GetClient"
	clientID, err := pathID(r, "clientId")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	tenantID, _, err := h.begin(r, op, r.URL.Query().Get("tenantId"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	includeDeleted, _ := strconv.ParseBool(r.URL.Query().Get("includeDeleted"))
	var c *client.Client
	if includeDeleted {
		c, err = h.clients.GetIncludingDeleted(r.Context(), tenantID, clientID)
	} else {
		c, err = h.clients.Get(r.Context(), tenantID, clientID)
	}
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	respondJSON(w, http.StatusOK, toClientResponse(c))
}

// UpdateClient replaces a client's fields
// @Summary Update a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param request body ClientRequest true "Client"
// @Success 200 {object} ClientResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /clients/{clientId} [put]
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	const op = "UpdateClient"
	clientID, err := pathID(r, "clientId")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	var req ClientRequest
	if err := decodeBody(r, &req, true); err != nil {
		h.fail(w, r, op, err)
		return
	}
	tenantID, log, err := h.begin(r, op, req.TenantID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	c, err := h.clients.Update(r.Context(), tenantID, clientID, h.resolveActor(r, req.Actor), req.input())
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	log.InfoContext(r.Context(), "client updated", logger.ClientID(c.ID))
	respondJSON(w, http.StatusOK, toClientResponse(c))
}

// DeleteClient soft-deletes a client
// @Summary Delete a client
// @Tags Clients
// @Produce json
// @Param clientId path string true "Client ID"
// @Param deletedBy query string false "Actor"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /clients/{clientId} [delete]
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	const op = "DeleteClient"
	clientID, err := pathID(r, "clientId")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	tenantID, _, err := h.begin(r, op, r.URL.Query().Get("tenantId"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	actor := h.resolveActor(r, queryOr(r, "", "deletedBy", "actor"))
	ok, err := h.clients.Delete(r.Context(), tenantID, clientID, actor)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if !ok {
		h.fail(w, r, op, notFound("client %s not found", clientID))
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Client deleted successfully"})
}

// ListClients returns a page of clients
// @Summary List clients
// @Tags Clients
// @Produce json
// @Param page query int false "Page (1-based)"
// @Param pageSize query int false "Page size (max 100)"
// @Param searchTerm query string false "Substring of name, identifiers or industry"
// @Param tenantId query string false "Tenant ID"
// @Success 200 {object} PageResponse[ClientResponse]
// @Router /clients [get]
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	const op = "ListClients"
	req, err := pageRequest(r)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	tenantID, _, err := h.begin(r, op, r.URL.Query().Get("tenantId"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	page, err := h.clients.List(r.Context(), tenantID, req)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	respondJSON(w, http.StatusOK, toPageResponse(page, toClientResponse))
}

// GetClientGroups lists the live groups of a client
// @Summary Groups of a client
// @Tags Clients
// @Produce json
// @Param clientId path string true "Client ID"
// @Success 200 {object} ListResponse[GroupResponse]
// @Failure 404 {object} ErrorResponse
// @Router /clients/{clientId}/groups [get]
func (h *Handler) GetClientGroups(w http.ResponseWriter, r *http.Request) {
	const op = "GetClientGroups"
	clientID, err := pathID(r, "clientId")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	tenantID, _, err := h.begin(r, op, r.URL.Query().Get("tenantId"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	groups, err := h.groups.ClientGroups(r.Context(), tenantID, clientID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	respondJSON(w, http.StatusOK, ListResponse[GroupResponse]{Items: toGroupResponses(groups)})
}
