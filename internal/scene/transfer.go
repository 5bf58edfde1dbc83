package scene

import (
	"context"

	"github.com/airbusgeo/georef/internal/geocoding"
	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/log"
	"github.com/airbusgeo/georef/internal/progress"
	"github.com/airbusgeo/georef/internal/raster"
	"go.uber.org/zap"
)

const transferTask = "geo-coding transfer"

// Transfer sets on dest the geo-coding of src for the subset of src defined by def (nil for a copy of the whole raster).
// The size of dest must be the size of the subset.
// Tie-point grids and lat/lon bands used by the new geo-coding are added to the product of dest,
// unless it already has rasters with the same names and sizes.
// The rasters are validated and attached under the lock of the product: if an error is returned, dest is left unchanged.
// Cancellation of the monitor or the context returns a Cancelled error.
func Transfer(ctx context.Context, src, dest Scene, def *georef.SubsetDef, monitor progress.Monitor) error {
	gc := src.GeoCoding()
	if gc == nil {
		return georef.NewNotFound("geoCoding", src.Name(), "scene has no geo-coding")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	if w, h := def.SceneSize(src.Width(), src.Height()); w != dest.Width() || h != dest.Height() {
		return georef.NewInvalidArgument("dest", "scene %s is %dx%d, subset %s of %s is %dx%d",
			dest.Name(), dest.Width(), dest.Height(), def, src.Name(), w, h)
	}
	m := progress.OrNull(monitor)
	if err := checkCancelled(ctx, m); err != nil {
		return err
	}

	var install func() (georef.GeoCoding, error)
	switch g := gc.(type) {
	case *geocoding.CRSGeoCoding:
		sub, err := g.Subset(def)
		if err != nil {
			return err
		}
		install = func() (georef.GeoCoding, error) { return sub, nil }

	case *geocoding.MapGeoCoding:
		sub, err := g.Subset(def)
		if err != nil {
			return err
		}
		install = func() (georef.GeoCoding, error) { return sub, nil }

	case *geocoding.FXYGeoCoding:
		sub, err := g.Subset(def)
		if err != nil {
			return err
		}
		install = func() (georef.GeoCoding, error) { return sub, nil }

	case *geocoding.TiePointGeoCoding:
		sub, err := g.Subset(def)
		if err != nil {
			return err
		}
		grids, err := missingGrids(dest.Product(), sub.LatGrid(), sub.LonGrid())
		if err != nil {
			return err
		}
		install = func() (georef.GeoCoding, error) {
			if len(grids) == 0 {
				return sub, nil
			}
			clones := make([]*raster.TiePointGrid, len(grids))
			for i, grid := range grids {
				clones[i] = grid.Clone()
			}
			if err := dest.Product().AddTiePointGrids(clones...); err != nil {
				return nil, err
			}
			return sub, nil
		}

	case *geocoding.PixelGeoCoding:
		var err error
		if install, err = transferPixel(ctx, g, dest, def, m); err != nil {
			return err
		}

	default:
		return georef.NewNotImplemented("transfer of a %s geo-coding", gc.Kind())
	}

	if err := checkCancelled(ctx, m); err != nil {
		return err
	}
	newGC, err := install()
	if err != nil {
		return err
	}
	dest.SetGeoCoding(newGC)
	log.Logger(ctx).Debug("geo-coding transferred", zap.Stringer("kind", gc.Kind()),
		zap.String("src", src.Name()), zap.String("dest", dest.Name()), zap.String("subset", def.String()))
	return nil
}

func checkCancelled(ctx context.Context, m progress.Monitor) error {
	if err := ctx.Err(); err != nil {
		return georef.NewCancelled("%s: %v", transferTask, err)
	}
	return progress.Check(m, transferTask)
}

// missingGrids returns the grids that the product does not have yet.
// A grid of the product with the same name but another size is an error.
func missingGrids(p *raster.Product, grids ...*raster.TiePointGrid) ([]*raster.TiePointGrid, error) {
	if p == nil {
		return nil, nil
	}
	var res []*raster.TiePointGrid
	for _, g := range grids {
		existing := p.TiePointGrid(g.Name())
		if existing == nil {
			res = append(res, g)
			continue
		}
		if existing.GridWidth() != g.GridWidth() || existing.GridHeight() != g.GridHeight() {
			return nil, georef.NewInvalidArgument("dest", "product %s already has a tie-point grid %s of another size", p.Name(), g.Name())
		}
	}
	return res, nil
}

// subset returns the subset of a geo-coding that does not need rasters of the destination
func subset(gc georef.GeoCoding, def *georef.SubsetDef) (georef.GeoCoding, error) {
	switch g := gc.(type) {
	case *geocoding.CRSGeoCoding:
		return g.Subset(def)
	case *geocoding.MapGeoCoding:
		return g.Subset(def)
	case *geocoding.FXYGeoCoding:
		return g.Subset(def)
	case *geocoding.TiePointGeoCoding:
		return g.Subset(def)
	}
	return nil, georef.NewNotImplemented("subset of a %s geo-coding", gc.Kind())
}

// transferPixel samples the lat/lon bands of the subset. The returned function attaches
// the bands to the product of dest and creates the geo-coding.
func transferPixel(ctx context.Context, gc *geocoding.PixelGeoCoding, dest Scene, def *georef.SubsetDef, m progress.Monitor) (func() (georef.GeoCoding, error), error) {
	p := dest.Product()
	if p == nil {
		return nil, georef.NewInvalidArgument("dest", "scene %s must belong to a product to receive lat/lon bands", dest.Name())
	}
	options := gc.Options()
	// masked pixels are NaN in the subset bands
	options.ValidMask = ""
	if options.Estimator != nil {
		estimator, err := subset(options.Estimator, def)
		if err != nil {
			return nil, err
		}
		options.Estimator = estimator
	}

	lat, lon, err := gc.SubsetBands(ctx, def, m)
	if err != nil {
		return nil, err
	}
	var toAttach []*raster.Band
	bands := make([]*raster.Band, 2)
	for i, b := range []*raster.Band{lat, lon} {
		existing := p.Band(b.Name())
		switch {
		case existing == nil:
			bands[i] = b
			toAttach = append(toAttach, b)
		case existing.Width() == b.Width() && existing.Height() == b.Height():
			bands[i] = existing
		default:
			return nil, georef.NewInvalidArgument("dest", "product %s already has a band %s of another size", p.Name(), b.Name())
		}
	}
	return func() (georef.GeoCoding, error) {
		if err := p.AttachBands(toAttach...); err != nil {
			return nil, err
		}
		newGC, err := geocoding.NewPixelGeoCoding(bands[0], bands[1], options)
		if err != nil {
			p.DetachBands(toAttach...)
			return nil, err
		}
		return newGC, nil
	}, nil
}
