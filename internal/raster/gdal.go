package raster

import (
	"context"
	"fmt"
	"math"
	"path"

	"github.com/airbusgeo/georef/internal/log"
	"github.com/airbusgeo/georef/internal/utils"
	"github.com/airbusgeo/georef/internal/utils/affine"
	"github.com/airbusgeo/godal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrLogger turns GDAL errors into go errors and ignores warnings
var ErrLogger = godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
	if ec <= godal.CE_Warning {
		return nil
	}
	return fmt.Errorf("GDAL %d: %s", code, msg)
})

// GDALInfo is the georeferencing found in a GDAL dataset
type GDALInfo struct {
	// PixToCRS is nil if the dataset has no geotransform
	PixToCRS *affine.Affine
	// WktCRS is empty if the dataset has no spatial reference
	WktCRS string
}

// OpenOptions configures OpenProduct
type OpenOptions struct {
	// BandNames names the bands of the dataset, in order (default: band_1, band_2...)
	BandNames []string
	// Workers is the number of bands read concurrently (default: 4)
	Workers int
	// Retries is the number of additional attempts to read a band after a temporary failure
	// of the storage (default: 0)
	Retries int
}

// OpenProduct reads all the bands of a GDAL dataset (local file or any uri handled by a GDAL VSI handler)
// into a resident product. Nodata values are replaced by NaN.
func OpenProduct(ctx context.Context, uri string, options OpenOptions) (*Product, *GDALInfo, error) {
	ds, err := godal.Open(uri, ErrLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("OpenProduct.%w", err)
	}
	defer ds.Close()

	structure := ds.Structure()
	if options.BandNames != nil && len(options.BandNames) != structure.NBands {
		return nil, nil, fmt.Errorf("OpenProduct: %d band names for %d bands", len(options.BandNames), structure.NBands)
	}
	product, err := NewProduct(path.Base(uri), structure.SizeX, structure.SizeY)
	if err != nil {
		return nil, nil, fmt.Errorf("OpenProduct: %w", err)
	}

	info := &GDALInfo{}
	if gt, err := ds.GeoTransform(); err == nil {
		info.PixToCRS = affine.NewAffine(gt[0], gt[1], gt[2], gt[3], gt[4], gt[5])
	}
	if wkt, err := ds.SpatialRef().WKT(); err == nil {
		info.WktCRS = wkt
	}

	data := make([][]float64, structure.NBands)
	g, gCtx := errgroup.WithContext(ctx)
	workers := options.Workers
	if workers <= 0 {
		workers = 4
	}
	g.SetLimit(workers)
	for i := range data {
		i := i
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			var errs error
			for try := 0; ; try++ {
				var err error
				if data[i], err = readBandAt(uri, i, structure.SizeX, structure.SizeY); err == nil {
					return nil
				}
				errs = utils.MergeErrors(true, errs, fmt.Errorf("band %d: %w", i+1, err))
				if try >= options.Retries || !utils.Temporary(err) || gCtx.Err() != nil {
					return errs
				}
				log.Logger(gCtx).Warn("retry reading band", zap.Int("band", i+1), zap.Int("try", try+1), zap.Error(err))
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("OpenProduct[%s]: %w", uri, err)
	}

	for i, d := range data {
		name := fmt.Sprintf("band_%d", i+1)
		if options.BandNames != nil {
			name = options.BandNames[i]
		}
		if _, err := product.AddBand(name, d); err != nil {
			return nil, nil, fmt.Errorf("OpenProduct: %w", err)
		}
	}
	log.Logger(ctx).Debug("product opened", zap.String("uri", uri), zap.Int("width", product.width),
		zap.Int("height", product.height), zap.Int("bands", len(data)), zap.Bool("georeferenced", info.PixToCRS != nil))
	return product, info, nil
}

// readBandAt opens its own handle of the dataset, as a handle cannot be shared between goroutines
func readBandAt(uri string, i, width, height int) ([]float64, error) {
	ds, err := godal.Open(uri, ErrLogger)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	return readBand(ds.Bands()[i], width, height)
}

func readBand(band godal.Band, width, height int) ([]float64, error) {
	buf := make([]float64, width*height)
	if err := band.Read(0, 0, buf, width, height); err != nil {
		return nil, err
	}
	if nodata, ok := band.NoData(); ok {
		for i, v := range buf {
			if v == nodata {
				buf[i] = math.NaN()
			}
		}
	}
	return buf, nil
}
