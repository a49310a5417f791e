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
	"time"

	"github.com/opentrusty/clientmanagement/internal/clientgroup"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
)

// GroupRequest is the body of CreateGroup and UpdateGroup.
type GroupRequest struct {
	TenantID    string `json:"tenantId,omitempty"`
	Name        string `json:"name" example:"Premium"`
	Description string `json:"description,omitempty"`
	Actor       string `json:"actor,omitempty"`
}

// GroupResponse is a client group with its live member count.
type GroupResponse struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	ClientCount int       `json:"clientCount"`
	CreatedBy   *string   `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toGroupResponse(g *clientgroup.Group) GroupResponse {
	return GroupResponse{
		ID:          g.ID,
		TenantID:    g.TenantID,
		Name:        g.Name,
		Description: g.Description,
		ClientCount: g.ClientCount,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func toGroupResponses(gs []*clientgroup.Group) []GroupResponse {
	out := make([]GroupResponse, 0, len(gs))
	for _, g := range gs {
		out = append(out, toGroupResponse(g))
	}
	return out
}

// MembershipRequest is the optional body of AddClientToGroup.
type MembershipRequest struct {
	TenantID string `json:"tenantId,omitempty"`
	AddedBy  string `json:"addedBy,omitempty"`
}

// MembershipResponse reports whether a client belongs to a group.
type MembershipResponse struct {
	IsMember bool `json:"isMember"`
}

// CreateGroup handles group creation
// @Summary Create a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param request body GroupRequest true "Group"
// @Success 201 {object} GroupResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /groups [post]
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	const op = "CreateGroup"
	var req GroupRequest
	if err := decodeBody(r, &req, true); err != nil {
		h.fail(w, r, op, err)
		return
	}
	tenantID, log, err := h.begin(r, op, req.TenantID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	g, err := h.groups.Create(r.Context(), tenantID, h.resolveActor(r, req.Actor), req.Name, req.Description)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	log.InfoContext(r.Context(), "group created", logger.GroupID(g.ID))
	respondJSON(w, http.StatusCreated, toGroupResponse(g))
}

// GetGroup returns one group
// @Summary Get a group
// @Tags Groups
// @Produce json
// @Param groupId path string true "Group ID"
// @Success 200 {object} GroupResponse
// @Failure 404 {object} ErrorResponse
// @Router /groups/{groupId} [get]
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	const op = "GetGroup"
	groupID, err := pathID(r, "groupId")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	tenantID, _, err := h.begin(r, op, r.URL.Query().Get("tenantId"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	g, err := h.groups.Get(r.Context(), tenantID, groupID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	respondJSON(w, http.StatusOK, toGroupResponse(g))
}

// UpdateGroup renames or re-describes a group
// @Summary Update a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param request body GroupRequest true "Group"
// @Success 200 {object} GroupResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /groups/{groupId} [put]
func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	const op = "UpdateGroup"
	groupID, err := pathID(r, "groupId")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	var req GroupRequest
	if err := decodeBody(r, &req, true); err != nil {
		h.fail(w, r, op, err)
		return
	}
	tenantID, log, err := h.begin(r, op, req.TenantID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	g, err := h.groups.Update(r.Context(), tenantID, groupID, h.resolveActor(r, req.Actor), req.Name, req.Description)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	log.InfoContext(r.Context(), "group updated", logger.GroupID(g.ID))
	respondJSON(w, http.StatusOK, toGroupResponse(g))
}

// DeleteGroup soft-deletes a group
// @Summary Delete a group
// @Tags Groups
// @Produce json
// @Param groupId path string true "Group ID"
// @Param deletedBy query string false "Actor"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /groups/{groupId} [delete]
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	const op = "DeleteGroup"
	groupID, err := pathID(r, "groupId")
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
	ok, err := h.groups.Delete(r.Context(), tenantID, groupID, actor)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if !ok {
		h.fail(w, r, op, notFound("group %s not found", groupID))
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Group deleted successfully"})
}

// ListGroups returns a page of groups
// @Summary List groups
// @Tags Groups
// @Produce json
// @Param page query int false "Page (1-based)"
// @Param pageSize query int false "Page size (max 100)"
// @Param searchTerm query string false "Substring of name or description"
// @Success 200 {object} PageResponse[GroupResponse]
// @Router /groups [get]
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	const op = "ListGroups"
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

	page, err := h.groups.List(r.Context(), tenantID, req)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	respondJSON(w, http.StatusOK, toPageResponse(page, toGroupResponse))
}

// AddClientToGroup adds a membership; repeating it succeeds
// @Summary Add a client to a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param clientId path string true "Client ID"
// @Param request body MembershipRequest false "Actor"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /groups/{groupId}/clients/{clientId} [post]
func (h *Handler) AddClientToGroup(w http.ResponseWriter, r *http.Request) {
	const op = "AddClientToGroup"
	groupID, clientID, err := membershipIDs(r)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	var req MembershipRequest
	if err := decodeBody(r, &req, false); err != nil {
		h.fail(w, r, op, err)
		return
	}
	tenantID, _, err := h.begin(r, op, req.TenantID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	ok, err := h.groups.AddClient(r.Context(), tenantID, groupID, clientID, h.resolveActor(r, req.AddedBy))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if !ok {
		h.fail(w, r, op, notFound("client %s or group %s not found", clientID, groupID))
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Client added to group"})
}

// RemoveClientFromGroup deletes a membership
// @Summary Remove a client from a group
// @Tags Groups
// @Produce json
// @Param groupId path string true "Group ID"
// @Param clientId path string true "Client ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /groups/{groupId}/clients/{clientId} [delete]
func (h *Handler) RemoveClientFromGroup(w http.ResponseWriter, r *http.Request) {
	const op = "RemoveClientFromGroup"
	groupID, clientID, err := membershipIDs(r)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	tenantID, _, err := h.begin(r, op, r.URL.Query().Get("tenantId"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	actor := h.resolveActor(r, queryOr(r, "", "removedBy", "actor"))
	ok, err := h.groups.RemoveClient(r.Context(), tenantID, groupID, clientID, actor)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if !ok {
		h.fail(w, r, op, notFound("client %s is not in group %s", clientID, groupID))
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Client removed from group"})
}

// GetGroupClients lists the live clients of a group
// @Summary Clients of a group
// @Tags Groups
// @Produce json
// @Param groupId path string true "Group ID"
// @Success 200 {object} ListResponse[ClientResponse]
// @Failure 404 {object} ErrorResponse
// @Router /groups/{groupId}/clients [get]
func (h *Handler) GetGroupClients(w http.ResponseWriter, r *http.Request) {
	const op = "GetGroupClients"
	groupID, err := pathID(r, "groupId")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	tenantID, _, err := h.begin(r, op, r.URL.Query().Get("tenantId"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	clients, err := h.groups.GroupClients(r.Context(), tenantID, groupID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	respondJSON(w, http.StatusOK, ListResponse[ClientResponse]{Items: toClientResponses(clients)})
}

// IsClientInGroup reports membership
// @Summary Membership check
// @Tags Groups
// @Produce json
// @Param groupId path string true "Group ID"
// @Param clientId path string true "Client ID"
// @Success 200 {object} MembershipResponse
// @Router /groups/{groupId}/clients/{clientId} [get]
func (h *Handler) IsClientInGroup(w http.ResponseWriter, r *http.Request) {
	const op = "IsClientInGroup"
	groupID, clientID, err := membershipIDs(r)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	tenantID, _, err := h.begin(r, op, r.URL.Query().Get("tenantId"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	member, err := h.groups.IsClientInGroup(r.Context(), tenantID, groupID, clientID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	respondJSON(w, http.StatusOK, MembershipResponse{IsMember: member})
}

func membershipIDs(r *http.Request) (groupID, clientID string, err error) {
	if groupID, err = pathID(r, "groupId"); err != nil {
		return "", "", err
	}
	if clientID, err = pathID(r, "clientId"); err != nil {
		return "", "", err
	}
	return groupID, clientID, nil
}
