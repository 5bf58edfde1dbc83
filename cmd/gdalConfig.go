package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/osio"
	"github.com/urfave/cli"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"

	osioGcs "github.com/airbusgeo/osio/gcs"
	osioS3 "github.com/airbusgeo/osio/s3"
	aws3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// GDALConfig configures GDAL and the remote storages it can read products from
type GDALConfig struct {
	BlockSize       string
	NumCachedBlocks int
	WithGCS         bool
	WithS3          bool
	AwsRegion       string
	AwsEndpoint     string
	AwsCredentials  string
}

const (
	BlockSize       = "gdalBlockSize"
	NumCachedBlocks = "gdalNumCachedBlocks"
	WithGCS         = "with-gcs"
	WithS3          = "with-s3"
	AWSRegion       = "aws-region"
	AWSEndPoint     = "aws-endpoint"
	AwsCredentials  = "aws-shared-credentials-file"
)

// GDALConfigFlags returns the command-line flags of the GDAL configuration.
// Each flag can also be set with its environment variable (GEOREF_GDAL_BLOCK_SIZE...).
func GDALConfigFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: BlockSize, Value: "1Mb", Usage: "gdal blocksize value", EnvVar: "GEOREF_GDAL_BLOCK_SIZE"},
		cli.IntFlag{Name: NumCachedBlocks, Value: 500, Usage: "gdal blockcache value", EnvVar: "GEOREF_GDAL_NUM_CACHED_BLOCKS"},
		cli.BoolFlag{Name: WithGCS, Usage: "configure GDAL to use gcs storage (may need authentication)", EnvVar: "GEOREF_WITH_GCS"},
		cli.BoolFlag{Name: WithS3, Usage: "configure GDAL to use s3 storage (may need authentication)", EnvVar: "GEOREF_WITH_S3"},
		cli.StringFlag{Name: AWSRegion, Usage: "define aws_region for GDAL to use s3 storage (--with-s3)", EnvVar: "AWS_REGION"},
		cli.StringFlag{Name: AWSEndPoint, Usage: "define aws_endpoint for GDAL to use s3 storage (--with-s3)", EnvVar: "AWS_ENDPOINT"},
		cli.StringFlag{Name: AwsCredentials, Usage: "define aws_shared_credentials_file for GDAL to use s3 storage (--with-s3)", EnvVar: "AWS_SHARED_CREDENTIALS_FILE"},
	}
}

// GDALConfigFromContext reads the flags declared by GDALConfigFlags
func GDALConfigFromContext(c *cli.Context) *GDALConfig {
	return &GDALConfig{
		BlockSize:       c.GlobalString(BlockSize),
		NumCachedBlocks: c.GlobalInt(NumCachedBlocks),
		WithGCS:         c.GlobalBool(WithGCS),
		WithS3:          c.GlobalBool(WithS3),
		AwsRegion:       c.GlobalString(AWSRegion),
		AwsEndpoint:     c.GlobalString(AWSEndPoint),
		AwsCredentials:  c.GlobalString(AwsCredentials),
	}
}

// InitGDAL registers the GDAL drivers and the VSI handlers of the configured storages
func InitGDAL(ctx context.Context, gdalConfig *GDALConfig) error {
	os.Setenv("GDAL_DISABLE_READDIR_ON_OPEN", "EMPTY_DIR")

	godal.RegisterAll()

	switch {
	case gdalConfig.WithGCS:
		handle, err := osioGcs.Handle(ctx)
		if err != nil {
			return fmt.Errorf("gcs.handle: %w", err)
		}
		gcsa, err := osio.NewAdapter(handle,
			osio.BlockSize(gdalConfig.BlockSize),
			osio.NumCachedBlocks(gdalConfig.NumCachedBlocks))
		if err != nil {
			return err
		}
		if err = godal.RegisterVSIHandler("gs://", gcsa); err != nil {
			return err
		}
	case gdalConfig.WithS3:
		var options []func(*awsConfig.LoadOptions) error
		if gdalConfig.AwsCredentials != "" {
			options = append(options, awsConfig.WithSharedCredentialsFiles([]string{gdalConfig.AwsCredentials}))
		}
		if gdalConfig.AwsRegion != "" {
			options = append(options, awsConfig.WithRegion(gdalConfig.AwsRegion))
		}
		if gdalConfig.AwsEndpoint != "" {
			resolver := aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{
					PartitionID:       "aws",
					URL:               gdalConfig.AwsEndpoint,
					SigningRegion:     region,
					HostnameImmutable: true,
				}, nil
			})
			options = append(options, awsConfig.WithEndpointResolver(resolver))
		}

		config, err := awsConfig.LoadDefaultConfig(ctx, options...)
		if err != nil {
			return fmt.Errorf("aws.loadDefaultConfig: %w", err)
		}

		s3Client := aws3.NewFromConfig(config)
		osioS3Handle, err := osioS3.Handle(ctx, osioS3.S3Client(s3Client))
		if err != nil {
			return fmt.Errorf("s3.handle: %w", err)
		}

		s3Adapter, err := osio.NewAdapter(osioS3Handle,
			osio.BlockSize(gdalConfig.BlockSize),
			osio.NumCachedBlocks(gdalConfig.NumCachedBlocks))
		if err != nil {
			return err
		}

		if err = godal.RegisterVSIHandler("s3://", s3Adapter); err != nil {
			return err
		}
	}

	return nil
}
