package documents

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"docextract-api/internal/archive"
	"docextract-api/internal/imageformat"
	"docextract-api/internal/llm"
	"docextract-api/internal/shared/apperr"
	"docextract-api/internal/shared/metrics"
	"docextract-api/internal/shared/telemetry"
)

const (
	noSourceMessage     = "No file or file URL provided"
	emptyContentMessage = "Empty file content"
	cancelledMessage    = "Request cancelled"
)

// Selector resolves a provider name to an adapter.
type Selector interface {
	Select(p llm.Provider) (llm.Extractor, error)
}

// Service runs extraction and archival for one document.
type Service struct {
	selector  Selector
	archiver  archive.Archiver
	fetcher   *Fetcher
	converter *Converter
	backend   string
	tenant    string
	now       func() time.Time
}

// NewService constructs a Service. backend labels archival metrics.
func NewService(selector Selector, archiver archive.Archiver, fetcher *Fetcher, converter *Converter, backend string) *Service {
	return &Service{
		selector:  selector,
		archiver:  archiver,
		fetcher:   fetcher,
		converter: converter,
		backend:   backend,
		now:       time.Now,
	}
}

// WithDefaultTenant sets the tenant used when a request names none.
func (s *Service) WithDefaultTenant(tenant string) *Service {
	s.tenant = tenant
	return s
}

// Extract resolves the document source, archives it and extracts its fields
// concurrently, then returns the typed result. Either branch failing fails
// the request.
func (s *Service) Extract(ctx context.Context, req ExtractionRequest) (ExtractionResponse, error) {
	start := s.now()
	provider := req.Provider
	if provider == "" {
		provider = llm.ProviderOpenAI
	}

	logFields := map[string]any{
		"provider":   provider.String(),
		"request_id": req.Trace.RequestID,
		"device_id":  req.Trace.DeviceID,
		"tenant":     req.Tenant,
		"has_file":   req.Image != nil,
	}
	telemetry.Info("extract.start", logFields)

	resp, err := s.extract(ctx, req, provider, start)
	elapsed := s.now().Sub(start).Seconds()
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		// The caller went away, so neither collaborator failed.
		metrics.ObserveExtraction(provider.String(), metrics.OutcomeCancelled, elapsed)
		logFields["duration_s"] = elapsed
		logFields["error"] = err
		telemetry.Warn("extract.cancelled", logFields)
		return ExtractionResponse{}, apperr.Wrap(apperr.KindUnknown, cancelledMessage, ctx.Err())
	}
	if err != nil {
		if ctx.Err() == nil {
			s.recordFailure(provider, err)
		}
		metrics.ObserveExtraction(provider.String(), metrics.OutcomeError, elapsed)
		logFields["duration_s"] = elapsed
		logFields["kind"] = apperr.KindOf(err).String()
		logFields["error"] = err
		telemetry.Error("extract.failed", logFields)
		return ExtractionResponse{}, err
	}

	metrics.ObserveExtraction(provider.String(), metrics.OutcomeSuccess, elapsed)
	logFields["duration_s"] = resp.TimeTaken
	logFields["doc_type"] = resp.Data.DocType
	telemetry.Info("extract.complete", logFields)
	return resp, nil
}

func (s *Service) extract(ctx context.Context, req ExtractionRequest, provider llm.Provider, start time.Time) (ExtractionResponse, error) {
	image, err := s.resolveSource(ctx, req)
	if err != nil {
		return ExtractionResponse{}, err
	}
	if len(image) == 0 {
		return ExtractionResponse{}, apperr.InvalidInput(emptyContentMessage)
	}

	extractor, err := s.selector.Select(provider)
	if err != nil {
		return ExtractionResponse{}, err
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = fmt.Sprintf("doc_%d.png", start.Unix())
	}
	imageType := imageformat.PNG.MIMEType()
	if format, err := imageformat.Detect(image); err == nil {
		imageType = format.MIMEType()
	}

	docs := []archive.Document{{
		ProductCode: archive.CategoryDocuments,
		Images:      []archive.Image{{Name: fileName, Type: imageType, Bytes: image}},
	}}
	submitter := archive.Submitter{MobileNo: req.Mobile}
	tenant := req.Tenant
	if tenant == "" {
		tenant = s.tenant
	}

	var (
		stored archive.Result
		fields llm.Fields
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.archiver.Store(gctx, submitter, docs, tenant)
		if err != nil {
			return err
		}
		stored = res
		return nil
	})
	g.Go(func() error {
		out, err := extractor.ExtractDocumentInfo(gctx, image)
		if err != nil {
			return err
		}
		fields = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return ExtractionResponse{}, err
	}

	info, err := s.converter.Convert(fields)
	if err != nil {
		return ExtractionResponse{}, err
	}

	resp := ExtractionResponse{
		Success:   true,
		Data:      &info,
		TimeTaken: roundSeconds(s.now().Sub(start)),
	}
	if url, ok := stored.First(archive.CategoryDocuments); ok {
		resp.URL = url
	}
	return resp, nil
}

func (s *Service) resolveSource(ctx context.Context, req ExtractionRequest) ([]byte, error) {
	switch {
	case req.Image != nil:
		return req.Image, nil
	case req.FileURL != "":
		return s.fetcher.Fetch(ctx, req.FileURL)
	default:
		return nil, apperr.InvalidInput(noSourceMessage)
	}
}

func (s *Service) recordFailure(provider llm.Provider, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindProvider:
		metrics.IncProviderFailure(provider.String())
	case apperr.KindArchival:
		metrics.IncArchivalFailure(s.backend)
	}
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
