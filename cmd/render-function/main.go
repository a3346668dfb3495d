package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/Lllllllleong/inspectionrequest/internal/models"
	"github.com/Lllllllleong/inspectionrequest/internal/services"
)

var (
	renderInstance *services.RenderFunction
	once           sync.Once
	initErr        error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("RenderInspection", renderInspection)
	functions.CloudEvent("RenderUpload", renderUpload)
}

// main is required by the Go Functions Framework.
func main() {}

// setup creates the render service on first use and shares it between both entry points.
func setup() error {
	once.Do(func() {
		renderInstance, initErr = services.NewRenderService(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
	}
	return initErr
}

// renderInspection renders a JSON submission and responds with the PDF.
func renderInspection(w http.ResponseWriter, r *http.Request) {
	if err := setup(); err != nil {
		http.Error(w, "Service unavailable", http.StatusInternalServerError)
		return
	}
	renderInstance.ServeHTTP(w, r)
}

// renderUpload renders a submission object finalized in a bucket.
func renderUpload(ctx context.Context, e cloudevents.Event) error {
	if err := setup(); err != nil {
		return err
	}

	var gcsEvent models.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	resp, err := renderInstance.ProcessUpload(ctx, gcsEvent)
	if err != nil {
		// The error is already logged with context within ProcessUpload.
		return err
	}
	if resp != nil {
		slog.Info("Render complete.", "outputGcsUri", resp.OutputGCSUri, "bytes", resp.Bytes)
	}
	return nil
}
