package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
	"github.com/Lllllllleong/inspectionrequest/internal/gcp"
	"github.com/Lllllllleong/inspectionrequest/internal/models"
	"github.com/Lllllllleong/inspectionrequest/internal/render"
	"github.com/Lllllllleong/inspectionrequest/internal/session"
	"github.com/google/uuid"
)

const (
	// maxSubmissionBytes bounds the request body of the HTTP entry point.
	maxSubmissionBytes = 1 << 20
	receiptName        = "receipt.json"
)

type RenderConfig struct {
	Strategy     string
	TemplateDir  string
	TemplateName string
	TemplatePDF  string
	LayoutFile   string
	OutputBucket string
	DefaultEmail string
}

type RenderFunction struct {
	storageClient *storage.Client
	renderer      render.Renderer
	registry      *checklist.Registry
	config        RenderConfig
	now           func() time.Time
}

// NewRenderService reads its configuration from the environment and checks the
// render resources before the first request is served.
func NewRenderService(ctx context.Context) (*RenderFunction, error) {
	config := RenderConfig{
		Strategy:     gcp.GetEnv("RENDER_STRATEGY", render.StrategyTemplate),
		TemplateDir:  gcp.GetEnv("TEMPLATE_DIR", ""),
		TemplateName: gcp.GetEnv("TEMPLATE_NAME", ""),
		TemplatePDF:  gcp.GetEnv("TEMPLATE_PDF", ""),
		LayoutFile:   gcp.GetEnv("LAYOUT_FILE", ""),
		OutputBucket: gcp.GetEnv("OUTPUT_BUCKET", ""),
		DefaultEmail: gcp.GetEnv("DEFAULT_EMAIL", ""),
	}

	storageClient, err := gcp.NewStorageClient(ctx)
	if err != nil {
		return nil, err
	}

	reg := checklist.Default()
	renderer, err := render.New(ctx, render.Config{
		Strategy:     config.Strategy,
		TemplateDir:  config.TemplateDir,
		TemplateName: config.TemplateName,
		TemplatePDF:  config.TemplatePDF,
		LayoutFile:   config.LayoutFile,
		Fetcher:      gcp.NewObjectReader(storageClient),
	}, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	f := NewRenderFunction(config, reg, renderer, storageClient)
	slog.Info("Render service initialized.", "strategy", renderer.Strategy(), "outputBucket", config.OutputBucket)
	return f, nil
}

// NewRenderFunction wires a render function from its parts. storageClient may be
// nil when no output bucket is configured.
func NewRenderFunction(config RenderConfig, reg *checklist.Registry, renderer render.Renderer, storageClient *storage.Client) *RenderFunction {
	return &RenderFunction{
		storageClient: storageClient,
		renderer:      renderer,
		registry:      reg,
		config:        config,
		now:           time.Now,
	}
}

// Process renders one submission. Fields the submission leaves empty take the
// defaults of a cleared form.
func (f *RenderFunction) Process(ctx context.Context, sub models.Submission) (*models.RenderedDocument, error) {
	s := session.New(f.registry, session.WithClock(f.now), session.WithDefaultEmail(f.config.DefaultEmail))
	if err := s.Load(sub); err != nil {
		return nil, err
	}
	if err := s.Generate(ctx, f.renderer); err != nil {
		return nil, err
	}
	return s.Document, nil
}

// Archive stores doc under prefix in the output bucket and returns its gs:// URI.
// It is a no-op when no output bucket is configured.
func (f *RenderFunction) Archive(ctx context.Context, prefix string, doc *models.RenderedDocument) (string, error) {
	if f.config.OutputBucket == "" {
		return "", nil
	}
	if f.storageClient == nil {
		return "", errors.New("output bucket configured without a storage client")
	}
	objectName := path.Join(prefix, doc.Filename)
	bucket := f.storageClient.Bucket(f.config.OutputBucket)
	if err := gcp.SaveToGCSAtomically(ctx, bucket, objectName, "application/pdf", doc.Bytes()); err != nil {
		return "", fmt.Errorf("failed to archive rendered document: %w", err)
	}
	return gcp.URI(f.config.OutputBucket, objectName), nil
}

// ServeHTTP renders a JSON submission and responds with the PDF as a download.
func (f *RenderFunction) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logCtx := slog.With("requestId", requestID)
	w.Header().Set("X-Request-Id", requestID)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSubmissionBytes))
	if err != nil {
		logCtx.Warn("Failed to read request body.", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	var sub models.Submission
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sub); err != nil {
		logCtx.Warn("Failed to decode submission.", "error", err)
		http.Error(w, "Invalid JSON submission", http.StatusBadRequest)
		return
	}
	logCtx = logCtx.With("serialNo", sub.SerialNo)

	doc, err := f.Process(r.Context(), sub)
	if err != nil {
		status, msg := httpStatus(err)
		logCtx.Error("Failed to render submission.", "error", err, "status", status)
		http.Error(w, msg, status)
		return
	}

	uri, err := f.Archive(r.Context(), requestID, doc)
	if err != nil {
		logCtx.Error("Failed to archive rendered document.", "error", err)
		http.Error(w, "Failed to store document", http.StatusInternalServerError)
		return
	}
	if uri != "" {
		w.Header().Set("X-Output-Gcs-Uri", uri)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(doc.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := doc.WriteTo(w); err != nil {
		logCtx.Warn("Failed to write response.", "error", err)
		return
	}
	logCtx.Info("Served rendered document.", "filename", doc.Filename, "bytes", doc.Len())
}

// httpStatus maps a render error to a response status and a short message.
func httpStatus(err error) (int, string) {
	switch render.KindOf(err) {
	case render.ErrInvalidInput:
		return http.StatusBadRequest, err.Error()
	case render.ErrTemplateNotFound:
		return http.StatusInternalServerError, "Template not found"
	case render.ErrFilesystem:
		return http.StatusInternalServerError, "Filesystem error"
	default:
		return http.StatusInternalServerError, "Failed to render document"
	}
}

// ProcessUpload renders a submission object dropped into a bucket and stores the
// PDF in the output bucket next to a JSON receipt. Objects that are not
// submissions are ignored.
func (f *RenderFunction) ProcessUpload(ctx context.Context, e models.GCSEvent) (*models.RenderResponse, error) {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)

	ext := strings.ToLower(path.Ext(e.Name))
	if (ext != ".json" && ext != ".yaml" && ext != ".yml") || path.Base(e.Name) == receiptName {
		logCtx.Info("Object is not a submission, skipping.")
		return nil, nil
	}
	if f.config.OutputBucket == "" {
		return nil, errors.New("OUTPUT_BUCKET environment variable must be set to process uploads")
	}
	logCtx.Info("Processing submission object.")

	data, err := gcp.NewObjectReader(f.storageClient).Fetch(ctx, gcp.URI(e.Bucket, e.Name))
	if err != nil {
		logCtx.Error("Failed to read submission.", "error", err)
		return nil, err
	}
	sub, err := models.DecodeSubmission(data)
	if err != nil {
		// Retrying cannot fix a malformed submission.
		logCtx.Error("Invalid submission, skipping.", "error", err)
		return nil, nil
	}

	doc, err := f.Process(ctx, sub)
	if errors.Is(err, render.ErrInvalidInput) {
		logCtx.Error("Invalid submission, skipping.", "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	prefix := strings.TrimSuffix(e.Name, path.Ext(e.Name))
	uri, err := f.Archive(ctx, prefix, doc)
	if err != nil {
		logCtx.Error("Failed to archive rendered document.", "error", err)
		return nil, err
	}

	resp := &models.RenderResponse{
		Status:       "RENDERED",
		Filename:     doc.Filename,
		OutputGCSUri: uri,
		Bytes:        doc.Len(),
	}
	receipt, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal receipt: %w", err)
	}
	bucket := f.storageClient.Bucket(f.config.OutputBucket)
	if err := gcp.SaveToGCSAtomically(ctx, bucket, path.Join(prefix, receiptName), "application/json", receipt); err != nil {
		return nil, fmt.Errorf("failed to save receipt: %w", err)
	}
	logCtx.Info("Submission rendered and stored.", "outputGcsUri", uri)
	return resp, nil
}
