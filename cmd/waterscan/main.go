package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/mem"

	"waterscan/internal/logger"
	"waterscan/internal/tiling"
	"waterscan/pkg/config"
	"waterscan/pkg/pipeline"
	"waterscan/pkg/rasterio"
)

const usage = `Usage:
  waterscan scene  -green G.tif -nir N.tif [-swir S.tif] [-config cfg.yaml] [-out dir]
  waterscan change -green1 G1.tif -nir1 N1.tif -green2 G2.tif -nir2 N2.tif [-config cfg.yaml] [-out dir]
  waterscan init-config path.yaml

Common flags: -cores N, -nodata V, -gdal, -text-log
`

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).Warn("Failed to load .env")
	}
	logger.SetLevel(os.Getenv(logger.LevelEnv))

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "scene":
		err = runScene(os.Args[2:])
	case "change":
		err = runChange(os.Args[2:])
	case "init-config":
		err = runInitConfig(os.Args[2:])
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(1)
	}
	if err != nil {
		logger.WithError(err).Error("waterscan failed")
		os.Exit(1)
	}
}

// common holds the flags shared by the analysis commands.
type common struct {
	configPath *string
	outDir     *string
	cores      *int
	nodata     *float64
	useGDAL    *bool
	textLog    *bool
}

func addCommon(fs *flag.FlagSet) common {
	return common{
		configPath: fs.String("config", os.Getenv(config.ConfigEnv), "YAML configuration file"),
		outDir:     fs.String("out", "", "Output directory (overrides config)"),
		cores:      fs.Int("cores", 0, "Number of CPU cores to use (default: from config)"),
		nodata:     fs.Float64("nodata", 0, "Sample value treated as missing (enables nodata handling)"),
		useGDAL:    fs.Bool("gdal", false, "Read inputs through GDAL (requires a gdal build)"),
		textLog:    fs.Bool("text-log", false, "Write human-readable logs instead of JSON"),
	}
}

// configuredNoData returns the nodata override from cfg, or nil when
// nodata handling is off.
func configuredNoData(cfg *config.Config) *float64 {
	if !cfg.Raster.UseNoData {
		return nil
	}
	nd := cfg.Raster.NoData
	return &nd
}

// setup loads the configuration and applies command line overrides.
func (c common) setup(fs *flag.FlagSet) (*config.Config, rasterio.Reader, error) {
	if *c.textLog {
		logger.UseText()
	}
	cfg, err := config.LoadConfig(*c.configPath)
	if err != nil {
		return nil, nil, err
	}
	if *c.outDir != "" {
		cfg.Output.Dir = *c.outDir
	}
	if *c.cores > 0 {
		cfg.Processing.NumCores = *c.cores
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "nodata" {
			cfg.Raster.UseNoData = true
			cfg.Raster.NoData = *c.nodata
		}
	})
	if cfg.Output.Verbose {
		logger.SetLevel("debug")
	}
	tiling.SetWorkers(cfg.Processing.NumCores)

	reader, err := newReader(cfg, *c.useGDAL)
	if err != nil {
		return nil, nil, err
	}
	return cfg, reader, nil
}

func runScene(args []string) error {
	fs := flag.NewFlagSet("scene", flag.ExitOnError)
	green := fs.String("green", "", "Green band raster")
	nir := fs.String("nir", "", "Near-infrared band raster")
	swir := fs.String("swir", "", "Short-wave infrared band raster (for MNDWI)")
	c := addCommon(fs)
	fs.Parse(args)

	if *green == "" || (*nir == "" && *swir == "") {
		fs.Usage()
		return fmt.Errorf("scene needs -green and -nir or -swir")
	}
	cfg, reader, err := c.setup(fs)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := logger.WithField("run", runID)
	printBanner("SCENE WATER ANALYSIS", runID)

	scene, err := pipeline.LoadScene(reader, "scene", pipeline.BandPaths{Green: *green, NIR: *nir, SWIR: *swir}, cfg)
	if err != nil {
		return err
	}
	checkMemory(scene.Bands.Green.Len(), 1)

	bar := progressbar.Default(pipeline.SceneStages, "analyzing")
	analyzer := pipeline.NewAnalyzer(cfg)
	analyzer.OnStage(func(stage string) {
		bar.Describe(stage)
		bar.Add(1)
	})

	startTime := time.Now()
	res, err := analyzer.AnalyzeScene(scene)
	if err != nil {
		return err
	}
	bar.Finish()

	outDir := filepath.Join(cfg.Output.Dir, runID)
	if err := pipeline.SaveScene(res, outDir, cfg); err != nil {
		return err
	}
	log.WithField("elapsed", time.Since(startTime).String()).Info("Scene analysis finished")

	fmt.Printf("\nScene analysis completed in %.2f seconds\n", time.Since(startTime).Seconds())
	fmt.Printf("Water index:        %s\n", res.Index)
	fmt.Printf("Pixel size:         %g x %g m\n", res.PixelSize.X, res.PixelSize.Y)
	fmt.Printf("Water area:         %.6f km²\n", res.Stats.TotalArea)
	fmt.Printf("Water coverage:     %.2f%%\n", res.Stats.CoveragePercent)
	fmt.Printf("Water bodies:       %d\n", len(res.Bodies.Bodies))
	fmt.Printf("Index mean/median:  %.3f / %.3f\n", res.Summary.Mean, res.Summary.P50)
	fmt.Printf("Outputs saved to:   %s\n", outDir)
	return nil
}

func runChange(args []string) error {
	fs := flag.NewFlagSet("change", flag.ExitOnError)
	green1 := fs.String("green1", "", "Green band of the first scene")
	nir1 := fs.String("nir1", "", "NIR band of the first scene")
	swir1 := fs.String("swir1", "", "SWIR band of the first scene")
	green2 := fs.String("green2", "", "Green band of the second scene")
	nir2 := fs.String("nir2", "", "NIR band of the second scene")
	swir2 := fs.String("swir2", "", "SWIR band of the second scene")
	c := addCommon(fs)
	fs.Parse(args)

	if *green1 == "" || *green2 == "" || (*nir1 == "" && *swir1 == "") || (*nir2 == "" && *swir2 == "") {
		fs.Usage()
		return fmt.Errorf("change needs -green1 -nir1 -green2 -nir2")
	}
	cfg, reader, err := c.setup(fs)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := logger.WithField("run", runID)
	printBanner("WATER CHANGE DETECTION", runID)

	before, err := pipeline.LoadScene(reader, "before", pipeline.BandPaths{Green: *green1, NIR: *nir1, SWIR: *swir1}, cfg)
	if err != nil {
		return err
	}
	after, err := pipeline.LoadScene(reader, "after", pipeline.BandPaths{Green: *green2, NIR: *nir2, SWIR: *swir2}, cfg)
	if err != nil {
		return err
	}
	checkMemory(before.Bands.Green.Len()+after.Bands.Green.Len(), 2)

	bar := progressbar.Default(pipeline.ChangeStages, "analyzing")
	analyzer := pipeline.NewAnalyzer(cfg)
	analyzer.OnStage(func(stage string) {
		bar.Describe(stage)
		bar.Add(1)
	})

	startTime := time.Now()
	res, err := analyzer.AnalyzeChange(before, after)
	if err != nil {
		return err
	}
	bar.Finish()

	outDir := filepath.Join(cfg.Output.Dir, runID)
	if err := pipeline.SaveChange(res, outDir, cfg); err != nil {
		return err
	}
	log.WithField("elapsed", time.Since(startTime).String()).Info("Change analysis finished")

	fmt.Printf("\nChange analysis completed in %.2f seconds\n", time.Since(startTime).Seconds())
	if res.Resampled {
		fmt.Println("Note: the second scene was resampled to the first scene's grid")
	}
	fmt.Printf("Water area before:  %.6f km² (%d bodies)\n", res.Before.Stats.TotalArea, len(res.Before.Bodies.Bodies))
	fmt.Printf("Water area after:   %.6f km² (%d bodies)\n", res.After.Stats.TotalArea, len(res.After.Bodies.Bodies))
	fmt.Printf("Gained:             %.6f km²\n", res.Change.GainedArea)
	fmt.Printf("Lost:               %.6f km²\n", res.Change.LostArea)
	fmt.Printf("Net change:         %+.6f km²\n", res.Change.NetChange)
	fmt.Printf("Changed pixels:     %.2f%%\n", res.Change.ChangePercent)
	fmt.Printf("Outputs saved to:   %s\n", outDir)
	return nil
}

func runInitConfig(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("init-config needs exactly one path")
	}
	if err := config.CreateDefaultConfigFile(args[0]); err != nil {
		return err
	}
	fmt.Printf("Default configuration written to %s\n", args[0])
	return nil
}

func printBanner(title, runID string) {
	fmt.Println("================================")
	fmt.Println("WATERSCAN - " + title)
	fmt.Println("Run: " + runID)
	fmt.Println("================================")
}

// checkMemory warns when the rasters of a run are unlikely to fit in memory.
// Each pixel is held as several float64 products per scene.
func checkMemory(pixels, scenes int) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		logger.WithError(err).Debug("Memory check unavailable")
		return
	}
	const bytesPerPixel = 8 * 6
	need := uint64(pixels) * bytesPerPixel * uint64(scenes)
	fields := map[string]interface{}{
		"available_mb": vm.Available / (1 << 20),
		"estimate_mb":  need / (1 << 20),
	}
	if need > vm.Available {
		logger.WithFields(fields).Warn("Scene may not fit in available memory")
		return
	}
	logger.WithFields(fields).Debug("Memory check")
}
