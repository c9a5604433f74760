package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/drawkit/pkg/cache"
	"github.com/matzehuels/drawkit/pkg/errors"
	"github.com/matzehuels/drawkit/pkg/model"
	"github.com/matzehuels/drawkit/pkg/observability"
)

// Report is the outcome of validating one document.
//
// A document that fails to decode for any reason is invalid. Integrity
// failures list every violation; other failures carry only the error code
// and message.
type Report struct {
	Source     string            `json:"source"`
	Valid      bool              `json:"valid"`
	Pages      int               `json:"pages"`
	Cells      int               `json:"cells"`
	Code       errors.Code       `json:"code,omitempty"`
	Message    string            `json:"message,omitempty"`
	PageID     string            `json:"page_id,omitempty"`
	CellID     string            `json:"cell_id,omitempty"`
	Violations []model.Violation `json:"violations"`
}

// NewReport builds the report for a decode result.
func NewReport(source string, doc *model.Document, err error) Report {
	rep := Report{Source: source, Valid: err == nil, Violations: []model.Violation{}}
	if err == nil {
		rep.Pages, rep.Cells = countCells(doc)
		return rep
	}
	rep.Code = errors.GetCode(err)
	if rep.Code == "" {
		rep.Code = errors.ErrCodeInternal
	}
	rep.Message = errors.UserMessage(err)
	rep.PageID = errors.PageOf(err)
	rep.CellID = errors.CellOf(err)
	var verr *model.ValidationError
	if stderrors.As(err, &verr) {
		rep.Violations = verr.Violations
	}
	return rep
}

// ValidateWithCacheInfo decodes data and reports whether it is a valid
// document. Only option errors are returned as errors; decode failures
// are part of the report. Reports are cached by the hash of data.
func (r *Runner) ValidateWithCacheInfo(ctx context.Context, data []byte, opts Options) (Report, bool, error) {
	if err := r.prepare(&opts); err != nil {
		return Report{}, false, err
	}
	key := r.Keyer.ValidationKey(cache.Hash(data))

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var rep Report
			if err := json.Unmarshal(cached, &rep); err == nil {
				rep.Source = opts.Source
				return rep, true, nil
			}
		}
	}

	start := time.Now()
	doc, err := decode(ctx, data, opts)
	rep := NewReport(opts.Source, doc, err)
	observability.Pipeline().OnValidateComplete(ctx, opts.Source, len(rep.Violations), time.Since(start))

	if cacheable(rep) {
		if encoded, err := json.Marshal(rep); err == nil {
			_ = r.Cache.Set(ctx, key, encoded, cache.TTLSummary)
		}
	}
	return rep, false, nil
}

// Validate is a convenience wrapper that calls ValidateWithCacheInfo and discards the cache hit info.
func (r *Runner) Validate(ctx context.Context, data []byte, opts Options) (Report, error) {
	rep, _, err := r.ValidateWithCacheInfo(ctx, data, opts)
	return rep, err
}

// ValidateFiles validates every file concurrently, at most
// opts.Concurrency at a time. Reports come back in the order of paths; an
// unreadable file yields an invalid report with code NOT_FOUND or
// INVALID_INPUT. The error is non-nil only for bad options or a cancelled
// context.
func (r *Runner) ValidateFiles(ctx context.Context, paths []string, opts Options) ([]Report, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}

	reports := make([]Report, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fileOpts := opts
			fileOpts.Source = path
			data, err := readFile(path)
			if err != nil {
				reports[i] = NewReport(path, nil, err)
				return nil
			}
			rep, _, err := r.ValidateWithCacheInfo(ctx, data, fileOpts)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	invalid := 0
	for _, rep := range reports {
		if !rep.Valid {
			invalid++
		}
	}
	opts.Logger.Info("validated documents", "files", len(paths), "invalid", invalid)
	return reports, nil
}

// cacheable reports whether rep depends only on the document bytes. The
// expansion limit is an option, and generic failures are environmental.
func cacheable(rep Report) bool {
	switch {
	case rep.Valid:
		return true
	case rep.Code == errors.ErrCodeExpansionLimitExceeded:
		return false
	}
	return rep.Code.Category() != errors.CategoryGeneric
}

func readFile(path string) ([]byte, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return data, nil
}
