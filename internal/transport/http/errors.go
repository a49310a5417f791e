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
	"errors"
	"log/slog"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
	"github.com/opentrusty/clientmanagement/internal/observability/metrics"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorResponse is the transcoded status body.
type ErrorResponse struct {
	Code    int    `json:"code" example:"5"`
	Message string `json:"message" example:"client 0190...: not found"`
	Details []any  `json:"details"`
}

// toStatus maps a service error onto the wire taxonomy. Internal hides the
// cause.
func toStatus(err error) *status.Status {
	if st, ok := status.FromError(err); ok {
		return st
	}
	var dup *domain.DuplicateError
	var invalid *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.New(codes.NotFound, err.Error())
	case errors.As(err, &dup):
		return status.New(codes.AlreadyExists, dup.Error())
	case errors.As(err, &invalid):
		return status.New(codes.InvalidArgument, invalid.Error())
	default:
		return status.New(codes.Internal, "internal error")
	}
}

func invalidArgument(format string, args ...any) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

// fail logs and writes err. Not-found is an ordinary negative result and
// is not logged again.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	st := toStatus(err)
	ctx := r.Context()
	attrs := []any{logger.Operation(op), logger.Code(st.Code().String())}

	switch st.Code() {
	case codes.NotFound:
	case codes.Internal, codes.Unknown:
		slog.ErrorContext(ctx, "rpc failed", append(attrs, logger.Error(err))...)
	default:
		slog.WarnContext(ctx, "rpc rejected", append(attrs, logger.Error(err))...)
	}

	h.instruments.RPCErrors.Add(ctx, 1, metrics.Code(st.Code().String()))
	respondStatus(w, st)
}

func respondStatus(w http.ResponseWriter, st *status.Status) {
	respondJSON(w, runtime.HTTPStatusFromCode(st.Code()), ErrorResponse{
		Code:    int(st.Code()),
		Message: st.Message(),
		Details: []any{},
	})
}
