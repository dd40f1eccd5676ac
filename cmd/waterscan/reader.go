//go:build !gdal

package main

import (
	"fmt"

	"waterscan/pkg/config"
	"waterscan/pkg/rasterio"
)

func newReader(cfg *config.Config, useGDAL bool) (rasterio.Reader, error) {
	if useGDAL {
		return nil, fmt.Errorf("this build has no GDAL support; rebuild with -tags gdal")
	}
	return rasterio.TIFFReader{NoData: configuredNoData(cfg)}, nil
}
