// Package pipeline chains the index, mask, labeling and change stages into
// whole-scene and two-scene analyses driven by a config.Config.
package pipeline

import (
	"fmt"
	"time"

	"waterscan/internal/logger"
	"waterscan/pkg/change"
	"waterscan/pkg/config"
	"waterscan/pkg/filter"
	"waterscan/pkg/indices"
	"waterscan/pkg/interpolation"
	"waterscan/pkg/raster"
	"waterscan/pkg/rasterio"
	"waterscan/pkg/stats"
	"waterscan/pkg/waterbody"
)

// Scene is one acquisition ready for analysis.
type Scene struct {
	// Name identifies the scene in logs and reports
	Name string

	Bands indices.Bands

	// PixelSize overrides the configured pixel size when non-zero
	PixelSize raster.PixelSize

	// GeoTransform georeferences outputs when known
	GeoTransform *rasterio.GeoTransform
}

// SceneResult holds every intermediate product of a scene analysis.
type SceneResult struct {
	Name      string
	Index     indices.Index
	PixelSize raster.PixelSize

	// IndexRaster is the water index, NaN where undefined
	IndexRaster *raster.Raster

	// Mask is true where the index exceeds the water threshold
	Mask *raster.Mask

	Stats   change.WaterStats
	Summary stats.Summary
	Bodies  *waterbody.Result

	GeoTransform *rasterio.GeoTransform
}

// ChangeResult holds both scene analyses and their comparison.
type ChangeResult struct {
	Before *SceneResult
	After  *SceneResult

	Change change.WaterChange

	// Diff is the index difference of After relative to Before
	Diff       *raster.Raster
	DiffMethod change.DiffMethod

	// Resampled reports whether After was resampled to Before's grid
	Resampled bool
}

// Analyzer runs analyses with a fixed configuration.
type Analyzer struct {
	cfg     *config.Config
	onStage func(stage string)
}

// NewAnalyzer creates an analyzer. A nil cfg selects the defaults.
func NewAnalyzer(cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Analyzer{cfg: cfg}
}

// OnStage registers a callback invoked as each stage starts.
func (a *Analyzer) OnStage(fn func(stage string)) {
	a.onStage = fn
}

// SceneStages is the number of stages AnalyzeScene reports.
const SceneStages = 4

// ChangeStages is the number of stages AnalyzeChange reports.
const ChangeStages = 2*SceneStages + 3

func (a *Analyzer) stage(scene, name string) {
	logger.WithFields(map[string]interface{}{
		"scene": scene,
		"stage": name,
	}).Info("Pipeline stage")
	if a.onStage != nil {
		a.onStage(name)
	}
}

// AnalyzeScene runs a scene analysis with cfg.
func AnalyzeScene(s Scene, cfg *config.Config) (*SceneResult, error) {
	return NewAnalyzer(cfg).AnalyzeScene(s)
}

// AnalyzeChange runs a two-scene analysis with cfg.
func AnalyzeChange(before, after Scene, cfg *config.Config) (*ChangeResult, error) {
	return NewAnalyzer(cfg).AnalyzeChange(before, after)
}

// AnalyzeScene computes the water index, mask, statistics and water bodies
// of a scene.
func (a *Analyzer) AnalyzeScene(s Scene) (*SceneResult, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	idx, err := a.cfg.WaterIndex()
	if err != nil {
		return nil, err
	}
	conn, err := a.cfg.Connectivity()
	if err != nil {
		return nil, err
	}
	smoothing, err := a.cfg.Smoothing()
	if err != nil {
		return nil, err
	}

	res := &SceneResult{
		Name:         s.Name,
		Index:        idx,
		PixelSize:    s.PixelSize,
		GeoTransform: s.GeoTransform,
	}
	if res.PixelSize == (raster.PixelSize{}) {
		res.PixelSize = a.cfg.PixelSize()
	}
	start := time.Now()

	a.stage(s.Name, "index")
	res.IndexRaster, err = indices.Compute(idx, s.Bands)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", s.Name, err)
	}
	if smoothing != filter.None {
		res.IndexRaster, err = filter.Smooth(res.IndexRaster, smoothing, a.cfg.Processing.SmoothingSize)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", s.Name, err)
		}
	}

	a.stage(s.Name, "mask")
	res.Mask, err = indices.WaterMask(res.IndexRaster, a.cfg.Water.Threshold)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", s.Name, err)
	}

	a.stage(s.Name, "statistics")
	res.Stats, err = change.Stats(res.Mask, res.PixelSize)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", s.Name, err)
	}
	res.Summary, err = stats.Summarize(res.IndexRaster, stats.DefaultBins)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", s.Name, err)
	}

	a.stage(s.Name, "water bodies")
	res.Bodies, err = waterbody.Label(res.Mask, waterbody.Options{
		PixelSize:    res.PixelSize,
		MinArea:      a.cfg.Water.MinArea,
		Connectivity: conn,
	})
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", s.Name, err)
	}

	logger.WithFields(map[string]interface{}{
		"scene":      s.Name,
		"index":      idx.String(),
		"area_km2":   res.Stats.TotalArea,
		"coverage":   res.Stats.CoveragePercent,
		"bodies":     len(res.Bodies.Bodies),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Info("Scene analyzed")
	return res, nil
}

// AnalyzeChange analyzes two scenes of the same area and compares their
// water masks. The after scene is resampled onto the before scene's grid
// when their shapes differ.
func (a *Analyzer) AnalyzeChange(before, after Scene) (*ChangeResult, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	method, err := a.cfg.ResampleMethod()
	if err != nil {
		return nil, err
	}
	diffMethod, err := a.cfg.Diff()
	if err != nil {
		return nil, err
	}

	out := &ChangeResult{DiffMethod: diffMethod}

	a.stage(after.Name, "align")
	aligned, resampled, err := alignBands(before.Bands, after.Bands, method)
	if err != nil {
		return nil, fmt.Errorf("aligning %s to %s: %w", after.Name, before.Name, err)
	}
	after.Bands = aligned
	out.Resampled = resampled
	if resampled {
		// the after scene now lives on the before grid
		after.PixelSize = before.PixelSize
		after.GeoTransform = before.GeoTransform
		logger.WithFields(map[string]interface{}{
			"scene":  after.Name,
			"method": method.String(),
		}).Warn("Scenes differ in shape, resampled")
	}

	if out.Before, err = a.AnalyzeScene(before); err != nil {
		return nil, err
	}
	if out.After, err = a.AnalyzeScene(after); err != nil {
		return nil, err
	}

	a.stage(after.Name, "compare")
	out.Change, err = change.Compare(out.Before.Mask, out.After.Mask, out.Before.PixelSize)
	if err != nil {
		return nil, err
	}

	a.stage(after.Name, "diff")
	out.Diff, err = change.Diff(out.Before.IndexRaster, out.After.IndexRaster, diffMethod)
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"before":         before.Name,
		"after":          after.Name,
		"gained_km2":     out.Change.GainedArea,
		"lost_km2":       out.Change.LostArea,
		"net_km2":        out.Change.NetChange,
		"change_percent": out.Change.ChangePercent,
	}).Info("Change analyzed")
	return out, nil
}

// alignBands resamples every band of after that is set onto the shape of
// the first band set in before.
func alignBands(before, after indices.Bands, m interpolation.Method) (indices.Bands, bool, error) {
	ref := firstBand(before)
	if ref == nil {
		return after, false, fmt.Errorf("%w: before scene has no bands", raster.ErrInvalidParameter)
	}
	resampled := false
	for _, band := range []**raster.Raster{&after.Blue, &after.Green, &after.Red, &after.NIR, &after.SWIR} {
		if *band == nil {
			continue
		}
		if err := (*band).Validate("band"); err != nil {
			return after, false, err
		}
		matched, err := interpolation.Match(ref, *band, m)
		if err != nil {
			return after, false, err
		}
		if matched != *band {
			resampled = true
		}
		*band = matched
	}
	return after, resampled, nil
}

func firstBand(b indices.Bands) *raster.Raster {
	for _, r := range []*raster.Raster{b.Blue, b.Green, b.Red, b.NIR, b.SWIR} {
		if r != nil {
			return r
		}
	}
	return nil
}
