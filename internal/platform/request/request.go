// Copyright (c) 2026 Vidora. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts common body decoding and upload spooling patterns, ensuring
consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
SaveFormFile spools an uploaded multipart file to a temp file and returns its
path. The original file extension is preserved so downstream consumers can
derive a content type. The caller owns removal of the temp file.

Parameters:
  - request: *http.Request (Multipart form must already be parsed)
  - field: string (Form file field name)

Returns:
  - string: Temp file path, or "" when the field is absent
  - error: validate.ErrInvalidForm or spooling failures
*/
func SaveFormFile(request *http.Request, field string) (string, error) {
	file, header, err := request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", validate.ErrInvalidForm
	}
	defer func() { _ = file.Close() }()

	temp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", apperr.Internal(err)
	}

	if _, err := io.Copy(temp, file); err != nil {
		_ = temp.Close()
		_ = os.Remove(temp.Name())
		return "", apperr.Internal(err)
	}

	if err := temp.Close(); err != nil {
		_ = os.Remove(temp.Name())
		return "", apperr.Internal(err)
	}

	return temp.Name(), nil
}
