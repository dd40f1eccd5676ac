//go:build gdal

package main

import (
	"waterscan/pkg/config"
	"waterscan/pkg/rasterio"
)

func newReader(cfg *config.Config, useGDAL bool) (rasterio.Reader, error) {
	if useGDAL {
		return rasterio.GDALReader{NoData: configuredNoData(cfg)}, nil
	}
	return rasterio.TIFFReader{NoData: configuredNoData(cfg)}, nil
}
