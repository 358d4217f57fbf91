package layout

import (
	"context"

	"github.com/wudi/pdfreport/ir/semantic"
	"github.com/wudi/pdfreport/observability"
)

// AddFigure places the image ref at the left margin, height millimetres
// tall; a non-positive height selects the configured default. The width
// follows the image's aspect ratio. A figure that does not fit in the space
// left on the page moves to the next page whole.
func (e *Engine) AddFigure(ctx context.Context, ref string, height float64) error {
	if err := e.check("add figure"); err != nil {
		return err
	}
	h, err := e.figureHeight("add figure", height)
	if err != nil {
		return err
	}
	img, err := e.resolve(ctx, ref)
	if err != nil {
		return err
	}
	return e.placeImage(img, h)
}

// AddImage is AddFigure for an already decoded image.
func (e *Engine) AddImage(img *semantic.Image, height float64) error {
	if err := e.check("add image"); err != nil {
		return err
	}
	h, err := e.figureHeight("add image", height)
	if err != nil {
		return err
	}
	return e.placeImage(img, h)
}

func (e *Engine) figureHeight(op string, height float64) (float64, error) {
	if height <= 0 {
		height = e.cfg.DefaultFigureHeight
	}
	if usable := e.cfg.Geometry.UsableHeight(); height > usable+epsilon {
		e.log.Warn("figure rejected", observability.Float("height", height), observability.Float("usable_height", usable))
		return 0, newLayoutError(op, ErrFigureTooTall, "height %g exceeds usable page height %g", height, usable)
	}
	return height, nil
}

// resolve loads ref once per engine; repeated references share one image
// object in the output.
func (e *Engine) resolve(ctx context.Context, ref string) (*semantic.Image, error) {
	if img, ok := e.images[ref]; ok {
		return img, nil
	}
	img, err := e.cfg.Resolver.Resolve(ctx, ref)
	if err != nil {
		e.log.Warn("image unavailable", observability.String("ref", ref), observability.Error("error", err))
		return nil, &ResourceError{Ref: ref, Err: err}
	}
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, &ResourceError{Ref: ref, Err: errEmptyImage}
	}
	e.images[ref] = img
	return img, nil
}

func (e *Engine) placeImage(img *semantic.Image, h float64) error {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return &ResourceError{Ref: "<image>", Err: errEmptyImage}
	}
	if err := e.ensureSpace(h); err != nil {
		return err
	}
	w, _ := e.page().Image(img, e.cfg.Geometry.Left, e.cursor.Y, 0, h)
	e.log.Debug("figure placed",
		observability.Int("page", e.cursor.Page),
		observability.Float("y", e.cursor.Y),
		observability.Float("width", w),
		observability.Float("height", h),
	)
	e.cursor.Advance(h)
	return nil
}
