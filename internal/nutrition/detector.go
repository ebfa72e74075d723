// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/platewise/internal/platform/apperr"
	"github.com/taibuivan/platewise/internal/platform/constants"
)

// # Contracts & Types

// Image is one uploaded photo held in memory for the duration of a request.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Detector turns images into one report per image, in the same order.
type Detector interface {
	/*
		Detect runs food detection on every image in one call.

		Parameters:
		  - context: context.Context
		  - username: string (the requesting user, forwarded for auditing)
		  - images: []Image (upload order)
		  - weight: float64 (portion grams, > 0)

		Returns:
		  - []Report: not yet checked for alignment
		  - error: DETECTOR_* AppErrors
	*/
	Detect(context context.Context, username string, images []Image, weight float64) ([]Report, error)
}

// TokenSigner issues the bearer token attached to detector calls.
type TokenSigner interface {
	Sign(subject string) (string, error)
}

// # HTTP Detector

// HTTPDetector calls the detector over multipart HTTP.
type HTTPDetector struct {
	endpoint string
	client   *http.Client
	signer   TokenSigner
}

// NewHTTPDetector creates a detector client. signer may be nil, in which case
// calls are unauthenticated.
func NewHTTPDetector(endpoint string, timeout time.Duration, signer TokenSigner) *HTTPDetector {
	return &HTTPDetector{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		signer:   signer,
	}
}

// detectorResponse is the detector's success body.
type detectorResponse struct {
	Detections []DetectionEntry `json:"detections"`
	Nutrition  []NutritionEntry `json:"nutrition"`
}

// detectorError is the detector's failure body.
type detectorError struct {
	Error string `json:"error"`
}

/*
Detect posts every image as an "image" part plus the "weight" field.

Description: The two response arrays are zipped by index. If their lengths
or filenames disagree the call fails with ErrAggregationMismatch.
Non-2xx responses are passed through with the detector's status and message.
*/
func (detector *HTTPDetector) Detect(context context.Context, username string, images []Image, weight float64) ([]Report, error) {

	// 1. Build the multipart body
	body, contentType, err := encodeImages(images, weight)
	if err != nil {
		return nil, fmt.Errorf("detector_encode_failed: %w", err)
	}

	request, err := http.NewRequestWithContext(context, http.MethodPost, detector.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("detector_request_failed: %w", err)
	}
	request.Header.Set("Content-Type", contentType)
	request.Header.Set("Accept", "application/json")

	// 2. Attach the service token when configured
	if detector.signer != nil {
		token, err := detector.signer.Sign(username)
		if err != nil {
			return nil, fmt.Errorf("detector_sign_failed: %w", err)
		}
		request.Header.Set("Authorization", "Bearer "+token)
	}

	// 3. Call
	response, err := detector.client.Do(request)
	if err != nil {
		return nil, unreachable(err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, passthrough(response)
	}

	// 4. Decode and zip
	var decoded detectorResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return nil, contractViolation("undecodable detector response: %v", err)
	}

	return zipReports(decoded)
}

func encodeImages(images []Image, weight float64) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, image := range images {
		contentType := image.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(image.Filename)))
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := writer.WriteField("weight", strconv.FormatFloat(weight, 'f', -1, 64)); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func zipReports(decoded detectorResponse) ([]Report, error) {
	if len(decoded.Detections) != len(decoded.Nutrition) {
		return nil, mismatch("detector returned %d detection entries and %d nutrition entries",
			len(decoded.Detections), len(decoded.Nutrition))
	}

	reports := make([]Report, 0, len(decoded.Detections))
	for index, detection := range decoded.Detections {
		nutrition := decoded.Nutrition[index]
		if detection.Filename != nutrition.Filename {
			return nil, mismatch("detector entry %d disagrees on filename: %q vs %q",
				index, detection.Filename, nutrition.Filename)
		}
		reports = append(reports, Report{
			Filename:   detection.Filename,
			Detections: detection.Detections,
			Nutrition:  nutrition.Nutrition,
		})
	}
	return reports, nil
}

// passthrough converts a detector failure into an AppError carrying the
// detector's own status and message.
func passthrough(response *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(response.Body, constants.DetectorErrorBodyLimit))

	message := http.StatusText(response.StatusCode)
	var decoded detectorError
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error != "" {
		message = decoded.Error
	}

	return apperr.Upstream("DETECTOR_ERROR", message, response.StatusCode,
		fmt.Errorf("detector responded %d: %s", response.StatusCode, strings.TrimSpace(string(raw))))
}

// unreachable maps transport failures. Timeouts become 504, the rest 502.
func unreachable(err error) error {
	var timeout interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &timeout) && timeout.Timeout()) {
		return apperr.Upstream("DETECTOR_TIMEOUT", "Food detector timed out", http.StatusGatewayTimeout, err)
	}
	return apperr.Upstream("DETECTOR_UNAVAILABLE", "Food detector is unavailable", http.StatusBadGateway, err)
}
