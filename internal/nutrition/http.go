// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package nutrition

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/platewise/internal/platform/apperr"
	"github.com/taibuivan/platewise/internal/platform/constants"
	requestutil "github.com/taibuivan/platewise/internal/platform/request"
	"github.com/taibuivan/platewise/internal/platform/respond"
	"github.com/taibuivan/platewise/internal/platform/validate"
)

// # Request Fields

const (
	FieldImage  = "image"
	FieldWeight = "weight"
)

// Handler implements the HTTP layer for meal uploads.
type Handler struct {
	nutritionService *Service
	maxUploadBytes   int64
}

// NewHandler constructs a new nutrition [Handler].
func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{nutritionService: service, maxUploadBytes: maxUploadBytes}
}

// Routes registers the upload endpoint. It must sit behind RequireSession.
func (handler *Handler) Routes(router chi.Router) {
	router.Post("/upload", handler.upload)
}

/*
POST /upload.

Request:
  - multipart: one or more "image" parts, "weight" (portion grams)

Response:
  - 200: Result {detections, nutrition, total_nutrition}
  - 400: VALIDATION_ERROR
  - 401: UNAUTHORIZED
  - 413: PAYLOAD_TOO_LARGE
  - 502/504: AGGREGATION_MISMATCH, DETECTOR_CONTRACT, DETECTOR_* or detector passthrough
*/
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	username, err := requestutil.RequiredUsername(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// 1. Bound and parse the multipart body
	if request.ContentLength > handler.maxUploadBytes {
		respond.Error(writer, request, apperr.PayloadTooLarge(handler.maxUploadBytes))
		return
	}
	request.Body = http.MaxBytesReader(writer, request.Body, handler.maxUploadBytes)
	if err := request.ParseMultipartForm(constants.MultipartMemoryBytes); err != nil {
		respond.Error(writer, request, handler.multipartError(err))
		return
	}
	defer func() { _ = request.MultipartForm.RemoveAll() }()

	// 2. Read images in submission order
	images, err := readImages(request.MultipartForm.File[FieldImage])
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// 3. Weight is passed through as form text and validated by the service
	input := UploadInput{Images: images, Weight: json.RawMessage(request.FormValue(FieldWeight))}

	result, err := handler.nutritionService.Analyze(request.Context(), username, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

func (handler *Handler) multipartError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.PayloadTooLarge(handler.maxUploadBytes)
	}
	return validate.RequiredError(FieldImage, "Expected a multipart/form-data upload")
}

func readImages(headers []*multipart.FileHeader) ([]Image, error) {
	images := make([]Image, 0, len(headers))

	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("nutrition_upload_open_failed: %w", err)
		}

		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("nutrition_upload_read_failed: %w", err)
		}

		images = append(images, Image{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return images, nil
}
