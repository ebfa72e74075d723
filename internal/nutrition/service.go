// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/taibuivan/platewise/internal/platform/apperr"
	"github.com/taibuivan/platewise/internal/platform/validate"
)

// UploadInput is one meal upload. Weight is the portion in grams, as a JSON
// number or numeric text (multipart form values arrive as text).
type UploadInput struct {
	Images []Image
	Weight json.RawMessage
}

// Service orchestrates an upload: archive, detect, aggregate.
type Service struct {
	detector Detector
	archive  ImageArchive
	logger   *slog.Logger
}

// NewService constructs a new [Service]. archive may be nil to disable archiving.
func NewService(detector Detector, archive ImageArchive, logger *slog.Logger) *Service {
	return &Service{detector: detector, archive: archive, logger: logger}
}

/*
Analyze runs one upload through the detector and returns the aggregate.

Description: Zero images is valid and yields an all-zero total without
calling the detector. Archive failures are logged and never fail the upload.
Nothing is written to the user's history.

Parameters:
  - context: context.Context
  - username: string (from the session)
  - input: UploadInput

Returns:
  - *Result: Per-image passthrough plus total
  - error: VALIDATION_ERROR, DETECTOR_* or AGGREGATION_MISMATCH
*/
func (service *Service) Analyze(context context.Context, username string, input UploadInput) (*Result, error) {
	v := &validate.Validator{}
	weight := v.Number(FieldWeight, input.Weight)
	v.Positive(FieldWeight, weight)
	if err := v.Err(); err != nil {
		return nil, err
	}

	filenames := make([]string, len(input.Images))
	for index, image := range input.Images {
		filenames[index] = image.Filename
	}

	if len(input.Images) == 0 {
		return Aggregate(filenames, nil)
	}

	// 1. Keep a copy of the photos
	service.archiveAll(context, username, input.Images)

	// 2. One detector call for the whole batch, in upload order
	reports, err := service.detector.Detect(context, username, input.Images, weight)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("nutrition_service_detect_failed: %w", err)
	}

	// 3. Fold
	result, err := Aggregate(filenames, reports)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "upload_analyzed",
		slog.String("username", username),
		slog.Int("images", len(input.Images)),
		slog.Float64("total_calories", result.Total.Calories),
	)

	return result, nil
}

func (service *Service) archiveAll(context context.Context, username string, images []Image) {
	if service.archive == nil {
		return
	}

	for _, image := range images {
		key, err := service.archive.Store(context, username, image)
		if err != nil {
			service.logger.WarnContext(context, "image_archive_failed",
				slog.String("username", username),
				slog.String("filename", image.Filename),
				slog.Any("error", err),
			)
			continue
		}
		service.logger.DebugContext(context, "image_archived", slog.String("key", key))
	}
}
