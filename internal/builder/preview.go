package builder

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/normalize"
	"github.com/jonathan/cv-builder/internal/records"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/jonathan/cv-builder/internal/visibility"
)

// Preview is a rendered CV together with the sections that failed to load.
type Preview struct {
	CV       *types.CV
	Document *rendering.Document
	Flags    visibility.Flags
	Errors   []*SectionError
}

// Export is a rasterized CV ready for download.
type Export struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Preview loads and renders a CV with the default flags merged with overrides.
func (s *Service) Preview(ctx context.Context, cvID uuid.UUID, overrides visibility.Overrides, opts rendering.Options) (*Preview, error) {
	res, err := s.Load(ctx, cvID)
	if err != nil {
		return nil, err
	}
	if opts.Countries == nil {
		opts.Countries = s.countryLookup(ctx)
	}
	flags := visibility.Defaults().Merge(overrides)
	doc, err := rendering.Render(res.CV, flags, opts)
	if err != nil {
		return nil, err
	}
	return &Preview{CV: res.CV, Document: doc, Flags: flags, Errors: res.Errors}, nil
}

// Export renders a CV and prints it to PDF. Rasterization failures are
// returned as *export.Error and leave the stored CV untouched.
func (s *Service) Export(ctx context.Context, cvID uuid.UUID, overrides visibility.Overrides, opts export.Options) (*Export, error) {
	if s.exporter == nil {
		return nil, &export.Error{Op: "pdf", Message: "no exporter configured"}
	}
	p, err := s.Preview(ctx, cvID, overrides, renderOptions(opts))
	if err != nil {
		return nil, err
	}

	data, err := s.exporter.PDF(ctx, p.Document, opts)
	if err != nil {
		s.log.Error("export failed", "cv_id", cvID.String(), "error", err)
		return nil, asExportError("pdf", err)
	}

	s.log.Info("cv exported", "cv_id", cvID.String(), "bytes", len(data))
	return &Export{Data: data, Filename: exportFilename(p.CV, opts), ContentType: "application/pdf"}, nil
}

// Snapshot renders a CV to a JPEG image when the exporter supports it.
func (s *Service) Snapshot(ctx context.Context, cvID uuid.UUID, overrides visibility.Overrides, opts export.Options) (*Export, error) {
	snap, ok := s.exporter.(export.Snapshotter)
	if !ok {
		return nil, &export.Error{Op: "snapshot", Message: "exporter cannot take snapshots"}
	}
	p, err := s.Preview(ctx, cvID, overrides, renderOptions(opts))
	if err != nil {
		return nil, err
	}
	data, err := snap.Snapshot(ctx, p.Document, opts)
	if err != nil {
		return nil, asExportError("snapshot", err)
	}
	return &Export{Data: data, Filename: "preview.jpg", ContentType: "image/jpeg"}, nil
}

// RenderRecords runs the offline pipeline: normalize a record bundle and
// render it without touching persistence.
func RenderRecords(b *records.Bundle, overrides visibility.Overrides, opts rendering.Options) (*types.CV, *rendering.Document, error) {
	cv, err := normalize.CV(b)
	if err != nil {
		return nil, nil, err
	}
	doc, err := rendering.Render(cv, visibility.Defaults().Merge(overrides), opts)
	if err != nil {
		return nil, nil, err
	}
	return cv, doc, nil
}

// ExportFilename picks the download name for cv.
func ExportFilename(cv *types.CV, opts export.Options) string {
	return exportFilename(cv, opts)
}

func exportFilename(cv *types.CV, opts export.Options) string {
	if opts.Filename != "" && opts.Filename != export.DefaultOptions().Filename {
		return opts.Filename
	}
	return export.FilenameFor(cv.PersonalInfo)
}

func renderOptions(opts export.Options) rendering.Options {
	r := rendering.DefaultOptions()
	r.PageSize = opts.PageSize
	r.Landscape = opts.Landscape
	r.MarginMM = opts.MarginMM
	return r
}

func asExportError(op string, err error) error {
	var exportErr *export.Error
	if errors.As(err, &exportErr) {
		return exportErr
	}
	return &export.Error{Op: op, Message: "export failed", Cause: err}
}
