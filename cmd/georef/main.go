package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/airbusgeo/georef/cmd"
	"github.com/airbusgeo/georef/internal/crs"
	"github.com/airbusgeo/georef/internal/geocoding"
	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/log"
	"github.com/airbusgeo/georef/internal/progress"
	"github.com/airbusgeo/georef/internal/raster"
	"github.com/airbusgeo/georef/internal/scene"
	"github.com/joho/godotenv"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

func main() {
	// Flags fall back on the environment, that may be completed by a .env file
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newApp(ctx).Run(os.Args); err != nil {
		log.Logger(ctx).Error("exit on error", zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func newApp(ctx context.Context) *cli.App {
	app := cli.NewApp()
	app.Name = "georef"
	app.Usage = "inspect and subset the geo-coding of a raster product"
	app.Version = "0.1.0"
	app.Flags = append([]cli.Flag{
		cli.StringFlag{Name: "input, i", Usage: "uri of the product (any GDAL dataset)", EnvVar: "GEOREF_INPUT"},
		cli.StringSliceFlag{Name: "band", Usage: "name of the bands of the product, in order (repeat the flag for each band)"},
		cli.StringFlag{Name: "lat-band", Usage: "band of latitudes: the product is geo-coded per pixel (requires --lon-band)"},
		cli.StringFlag{Name: "lon-band", Usage: "band of longitudes (requires --lat-band)"},
		cli.StringFlag{Name: "valid-mask", Usage: "expression of the valid pixels of a per-pixel geo-coding (ex: 'quality > 0 && !cloud')"},
		cli.IntFlag{Name: "search-radius", Value: geocoding.DefaultSearchRadius, Usage: "search radius of a per-pixel geo-coding, in pixels"},
		cli.BoolFlag{Name: "fractional", Usage: "interpolate between pixel centers in a per-pixel geo-coding"},
		cli.BoolFlag{Name: "json", Usage: "log in JSON instead of the console format", EnvVar: "GEOREF_LOG_JSON"},
	}, cmd.GDALConfigFlags()...)
	app.Before = func(c *cli.Context) error {
		if !c.GlobalBool("json") {
			log.Console()
		}
		if err := cmd.InitGDAL(ctx, cmd.GDALConfigFromContext(c)); err != nil {
			return fmt.Errorf("init gdal: %w", err)
		}
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:        "info",
			Usage:       "print the geo-coding of the product",
			Description: "ex: georef --input product.tif info --step 32",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "step", Value: 16, Usage: "sampling of the boundary of the footprint, in pixels"},
			},
			Action: func(c *cli.Context) error { return cliInfo(ctx, c) },
		},
		{
			Name:        "geo",
			Usage:       "convert a pixel position to a geographic position",
			ArgsUsage:   "X Y",
			Description: "ex: georef --input product.tif geo 10.5 20.5",
			Action:      func(c *cli.Context) error { return cliGeoPos(ctx, c) },
		},
		{
			Name:        "pixel",
			Usage:       "convert a geographic position to a pixel position",
			ArgsUsage:   "LAT,LON",
			Description: "ex: georef --input product.tif pixel 43.6,1.44",
			Action:      func(c *cli.Context) error { return cliPixelPos(ctx, c) },
		},
		{
			Name:        "subset",
			Usage:       "transfer the geo-coding to a subset of the product and print it",
			Description: "ex: georef --input product.tif subset --region 100,100,600,400 --subsampling 2,2",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "region", Usage: "x0,y0,x1,y1 (default: whole product)"},
				cli.StringFlag{Name: "subsampling", Value: "1,1", Usage: "sx,sy"},
				cli.IntFlag{Name: "step", Value: 16, Usage: "sampling of the boundary of the footprint, in pixels"},
			},
			Action: func(c *cli.Context) error { return cliSubset(ctx, c) },
		},
	}
	return app
}

// loadScene opens the product and creates its geo-coding:
// per-pixel if the latitude and longitude bands are given, from the geotransform of the dataset otherwise.
func loadScene(ctx context.Context, c *cli.Context) (scene.Scene, error) {
	uri := c.GlobalString("input")
	if uri == "" {
		return nil, fmt.Errorf("missing --input flag")
	}
	product, info, err := raster.OpenProduct(ctx, uri, raster.OpenOptions{BandNames: c.GlobalStringSlice("band")})
	if err != nil {
		return nil, err
	}
	ctx = log.With(ctx, "product", product.Name())

	latBand, lonBand := c.GlobalString("lat-band"), c.GlobalString("lon-band")
	switch {
	case latBand != "" || lonBand != "":
		if product.Band(latBand) == nil || product.Band(lonBand) == nil {
			return nil, fmt.Errorf("bands %q and %q not found in %v", latBand, lonBand, product.BandNames())
		}
		gc, err := geocoding.NewPixelGeoCoding(product.Band(latBand), product.Band(lonBand), geocoding.PixelOptions{
			ValidMask:    c.GlobalString("valid-mask"),
			SearchRadius: c.GlobalInt("search-radius"),
			Fractional:   c.GlobalBool("fractional"),
		})
		if err != nil {
			return nil, err
		}
		if err := gc.Initialize(ctx, progress.FromContext(ctx)); err != nil {
			return nil, err
		}
		product.SetGeoCoding(gc)
	case info.PixToCRS != nil && info.WktCRS != "":
		projection, err := crs.NewProjection(info.WktCRS)
		if err != nil {
			return nil, err
		}
		gc, err := geocoding.NewCRSGeoCoding(info.PixToCRS, projection, product.Width(), product.Height(), crs.DatumOf(projection.CRS()))
		if err != nil {
			return nil, err
		}
		product.SetGeoCoding(gc)
	default:
		return nil, georef.NewNotFound("GeoCoding", uri, "product is not georeferenced: use --lat-band and --lon-band")
	}
	log.Logger(ctx).Debug("scene loaded", zap.Stringer("kind", product.GeoCoding().Kind()))
	return scene.ForProduct(product), nil
}

func cliInfo(ctx context.Context, c *cli.Context) error {
	s, err := loadScene(ctx, c)
	if err != nil {
		return err
	}
	return printScene(c.App.Writer, s, c.Int("step"))
}

func cliGeoPos(ctx context.Context, c *cli.Context) error {
	if len(c.Args()) != 2 {
		return fmt.Errorf("geo: expecting X Y, got %v", []string(c.Args()))
	}
	x, err := strconv.ParseFloat(c.Args().Get(0), 64)
	if err != nil {
		return fmt.Errorf("geo.x: %w", err)
	}
	y, err := strconv.ParseFloat(c.Args().Get(1), 64)
	if err != nil {
		return fmt.Errorf("geo.y: %w", err)
	}
	s, err := loadScene(ctx, c)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, s.GeoCoding().GeoPos(georef.PixelPos{X: x, Y: y}))
	return nil
}

func cliPixelPos(ctx context.Context, c *cli.Context) error {
	g, err := georef.ParseGeoPos(strings.Join(c.Args(), ""))
	if err != nil {
		return err
	}
	s, err := loadScene(ctx, c)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, s.GeoCoding().PixelPos(g))
	return nil
}

func cliSubset(ctx context.Context, c *cli.Context) error {
	src, err := loadScene(ctx, c)
	if err != nil {
		return err
	}
	region := image.Rect(0, 0, src.Width(), src.Height())
	if s := c.String("region"); s != "" {
		r, err := parseInts(s, 4)
		if err != nil {
			return fmt.Errorf("subset.region: %w", err)
		}
		region = image.Rect(r[0], r[1], r[2], r[3])
	}
	ss, err := parseInts(c.String("subsampling"), 2)
	if err != nil {
		return fmt.Errorf("subset.subsampling: %w", err)
	}
	def, err := georef.NewSubsetDef(&region, ss[0], ss[1])
	if err != nil {
		return err
	}
	width, height := def.SceneSize(src.Width(), src.Height())
	product, err := raster.NewProduct(src.Name()+"_subset", width, height)
	if err != nil {
		return err
	}
	dest := scene.ForProduct(product)
	if err := scene.Transfer(ctx, src, dest, def, progress.FromContext(ctx)); err != nil {
		return err
	}
	return printScene(c.App.Writer, dest, c.Int("step"))
}

func printScene(w io.Writer, s scene.Scene, step int) error {
	gc := s.GeoCoding()
	fmt.Fprintf(w, "scene:      %s (%dx%d)\n", s.Name(), s.Width(), s.Height())
	fmt.Fprintf(w, "geocoding:  %s\n", gc.Kind())
	fmt.Fprintf(w, "datum:      %s\n", gc.Datum().Name)
	fmt.Fprintf(w, "antimeridian crossing: %t\n", gc.CrossesAntimeridian())
	corners := []struct {
		name string
		p    georef.PixelPos
	}{
		{"upper left", georef.PixelPos{X: 0, Y: 0}},
		{"upper right", georef.PixelPos{X: float64(s.Width()), Y: 0}},
		{"lower right", georef.PixelPos{X: float64(s.Width()), Y: float64(s.Height())}},
		{"lower left", georef.PixelPos{X: 0, Y: float64(s.Height())}},
		{"center", georef.PixelPos{X: float64(s.Width()) / 2, Y: float64(s.Height()) / 2}},
	}
	for _, c := range corners {
		fmt.Fprintf(w, "%-12s %s -> %s\n", c.name+":", c.p, gc.GeoPos(c.p))
	}
	footprint, err := crs.Footprint(gc, s.Width(), s.Height(), step)
	if err != nil {
		// Per-pixel geo-codings may have invalid pixels on their boundary
		fmt.Fprintf(w, "footprint:  unavailable (%v)\n", err)
		return nil
	}
	wkt, err := crs.FootprintWKT(footprint)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "footprint:  %s\n", wkt)
	return nil
}

// parseInts parses n comma-separated integers
func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expecting %d comma-separated integers, got '%s'", n, s)
	}
	res := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}
