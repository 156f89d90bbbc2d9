// Package handler holds helpers shared by the HTTP handler packages.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agendahub/booking-api/internal/model"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

// FormImage extracts the optional "image" file from a multipart form.
// A missing field yields (nil, noop, nil). The returned cleanup closes
// the underlying file and must be called once the upload is consumed.
func FormImage(c *gin.Context) (*model.ImageUpload, func(), error) {
	noop := func() {}

	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, apperrors.Validation("invalid image upload")
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, apperrors.Validation("could not read image upload")
	}

	upload := &model.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
	}
	return upload, func() { file.Close() }, nil
}

// FormString returns a pointer to the form value, or nil when the
// field was not supplied at all. An empty supplied value is kept.
func FormString(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}
