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

	"github.com/opentrusty/clientmanagement/internal/association"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
)

// AssignRequest is the body of AssignUserToClient.
type AssignRequest struct {
	TenantID   string `json:"tenantId,omitempty"`
	UserID     string `json:"userId"`
	AssignedBy string `json:"assignedBy,omitempty"`
}

// AssignResponse carries the id of the new or existing association.
type AssignResponse struct {
	Success       bool   `json:"success"`
	AssociationID string `json:"associationId"`
}

// AssociationResponse is one user-client link.
type AssociationResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ClientID   string    `json:"clientId"`
	TenantID   string    `json:"tenantId"`
	AssignedAt time.Time `json:"assignedAt"`
	AssignedBy string    `json:"assignedBy"`
}

func toAssociationResponse(a *association.Association) AssociationResponse {
	return AssociationResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		ClientID:   a.ClientID,
		TenantID:   a.TenantID,
		AssignedAt: a.AssignedAt,
		AssignedBy: a.AssignedBy,
	}
}

// AssignUserToClient links a user to a client
// @Summary Assign a user to a client
// @Description Assigning an already assigned user returns the existing association.
// @Tags Associations
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param request body AssignRequest true "Assignment"
// @Success 200 {object} AssignResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /clients/{clientId}/users [post]
func (h *Handler) AssignUserToClient(w http.ResponseWriter, r *http.Request) {
	const op = "AssignUserToClient"
	clientID, err := pathID(r, "clientId")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	var req AssignRequest
	if err := decodeBody(r, &req, true); err != nil {
		h.fail(w, r, op, err)
		return
	}
	userID, err := association.NormalizeUserID(req.UserID)
	if err != nil {
		h.fail(w, r, op, invalidArgument("invalid userId %q", req.UserID))
		return
	}
	tenantID, log, err := h.begin(r, op, req.TenantID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	a, err := h.associations.Assign(r.Context(), tenantID, userID, clientID, h.resolveActor(r, req.AssignedBy))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	log.InfoContext(r.Context(), "user assigned", logger.AssociationID(a.ID), logger.UserID(userID))
	respondJSON(w, http.StatusOK, AssignResponse{Success: true, AssociationID: a.ID})
}

// RemoveUserFromClient deletes a user-client link
// @Summary Remove a user from a client
// @Tags Associations
// @Produce json
// @Param clientId path string true "Client ID"
// @Param userId path string true "User ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /clients/{clientId}/users/{userId} [delete]
func (h *Handler) RemoveUserFromClient(w http.ResponseWriter, r *http.Request) {
	const op = "RemoveUserFromClient"
	clientID, err := pathID(r, "clientId")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	userID, err := pathUserID(r, "userId")
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
	ok, err := h.associations.Remove(r.Context(), tenantID, userID, clientID, actor)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if !ok {
		h.fail(w, r, op, notFound("user %s is not assigned to client %s", userID, clientID))
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// GetClientUsers pages the users assigned to a client
// @Summary Users of a client
// @Tags Associations
// @Produce json
// @Param clientId path string true "Client ID"
// @Param page query int false "Page (1-based)"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} PageResponse[AssociationResponse]
// @Router /clients/{clientId}/users [get]
func (h *Handler) GetClientUsers(w http.ResponseWriter, r *http.Request) {
	const op = "GetClientUsers"
	clientID, err := pathID(r, "clientId")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
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

	page, err := h.associations.ClientUsers(r.Context(), tenantID, clientID, req)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	respondJSON(w, http.StatusOK, toPageResponse(page, toAssociationResponse))
}

// GetUserClients pages the clients a user is assigned to
// @Summary Clients of a user
// @Tags Associations
// @Produce json
// @Param userId path string true "User ID"
// @Param page query int false "Page (1-based)"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} PageResponse[AssociationResponse]
// @Router /users/{userId}/clients [get]
func (h *Handler) GetUserClients(w http.ResponseWriter, r *http.Request) {
	const op = "GetUserClients"
	userID, err := pathUserID(r, "userId")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
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

	page, err := h.associations.UserClients(r.Context(), tenantID, userID, req)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	respondJSON(w, http.StatusOK, toPageResponse(page, toAssociationResponse))
}
