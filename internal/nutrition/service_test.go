// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package nutrition_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/platewise/internal/nutrition"
	"github.com/taibuivan/platewise/internal/platform/apperr"
)

/*
TestService_Analyze_Weight verifies that the service owns weight parsing and
validation, and that a rejected weight never reaches the detector.
*/
func TestService_Analyze_Weight(t *testing.T) {
	images := []nutrition.Image{{Filename: "a.jpg", Data: []byte("a")}}

	tests := []struct {
		name       string
		weight     string
		images     []nutrition.Image
		wantWeight float64
		wantErr    bool
	}{
		{"form_text", "150", images, 150, false},
		{"json_number", "150.5", images, 150.5, false},
		{"missing", "", images, 0, true},
		{"zero", "0", images, 0, true},
		{"negative", "-20", images, 0, true},
		{"text", "a handful", images, 0, true},
		{"checked_without_images", "0", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := &fakeDetector{}
			service := nutrition.NewService(detector, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

			result, err := service.Analyze(context.Background(), "alice", nutrition.UploadInput{
				Images: tt.images,
				Weight: json.RawMessage(tt.weight),
			})

			if tt.wantErr {
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				require.Len(t, ae.Details, 1)
				assert.Equal(t, nutrition.FieldWeight, ae.Details[0].Field)
				assert.Zero(t, detector.calls)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 1, detector.calls)
			assert.Equal(t, tt.wantWeight, detector.weight)
			assert.Len(t, result.Detections, 1)
		})
	}
}
