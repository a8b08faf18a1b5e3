package extractor

import (
	"context"

	"challan-reconciler/core/reconcile"

	"golang.org/x/sync/errgroup"
)

// StickerResult is the outcome for one image of a batch.
type StickerResult struct {
	Name    string
	Sticker *reconcile.Sticker
	Err     error
}

// ExtractStickers runs ExtractSticker over images with at most limit calls
// in flight. Results are returned in input order and a failed image never
// aborts the others. Cancelling ctx stops images that have not started.
func ExtractStickers(ctx context.Context, ex Extractor, images []Image, limit int) []StickerResult {
	results := make([]StickerResult, len(images))
	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, img := range images {
		results[i].Name = img.Name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			s, err := ex.ExtractSticker(ctx, img)
			results[i].Sticker = s
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()
	return results
}
