// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It centralizes body decoding, bearer-token extraction and identity lookup so
every handler rejects bad input the same way.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taibuivan/authgate/internal/platform/apperr"
	"github.com/taibuivan/authgate/internal/platform/constants"
	"github.com/taibuivan/authgate/internal/platform/ctxutil"
	"github.com/taibuivan/authgate/internal/platform/sec"
	"github.com/taibuivan/authgate/internal/platform/validate"
)

// maxBodyBytes caps JSON request bodies; credentials are tiny.
const maxBodyBytes = 1 << 16

// ErrInvalidAuthorization is returned for a present but unusable Authorization header.
var ErrInvalidAuthorization = apperr.Unauthorized("Invalid authorization format")

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - writer: http.ResponseWriter (used to enforce the body size limit)
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	body := http.MaxBytesReader(writer, request.Body, maxBodyBytes)

	decoder := json.NewDecoder(body)
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}

	// Reject trailing garbage after the first JSON value.
	if decoder.More() {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
BearerToken extracts the token from an "Authorization: Bearer <token>" header.

Returns:
  - string: The raw token
  - bool: false when no Authorization header was sent
  - error: [ErrInvalidAuthorization] when the header is present but malformed
*/
func BearerToken(request *http.Request) (string, bool, error) {
	header := strings.TrimSpace(request.Header.Get(constants.HeaderAuthorization))
	if header == "" {
		return "", false, nil
	}

	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) || token == "" || strings.ContainsAny(token, " \t") {
		return "", true, ErrInvalidAuthorization
	}

	return token, true, nil
}

/*
RequiredIdentity ensures the request is authenticated and returns the caller.

Returns:
  - *sec.AuthContext: The authenticated caller
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredIdentity(request *http.Request) (*sec.AuthContext, error) {
	identity := ctxutil.GetAuthContext(request.Context())
	if identity == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return identity, nil
}
