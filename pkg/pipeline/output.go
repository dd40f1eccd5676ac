package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"waterscan/internal/logger"
	"waterscan/pkg/config"
	"waterscan/pkg/report"
	"waterscan/pkg/visualization"
)

// SaveScene writes the tables, maps and outlines of a scene into dir,
// prefixing every file with the scene name.
func SaveScene(res *SceneResult, dir string, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	prefix := filepath.Join(dir, res.Name)

	if err := writeFile(prefix+"_bodies.csv", func(f *os.File) error {
		return report.WriteBodiesCSV(f, res.Bodies.Bodies)
	}); err != nil {
		return err
	}
	if err := writeFile(prefix+"_stats.csv", func(f *os.File) error {
		return report.WriteStatsCSV(f, []report.StatsRow{report.NewStatsRow(res.Name, res.Stats, len(res.Bodies.Bodies))})
	}); err != nil {
		return err
	}

	if cfg.Output.SaveGeoJSON {
		data, err := report.MarshalBodies(res.Bodies.Bodies, res.GeoTransform)
		if err != nil {
			return err
		}
		if err := os.WriteFile(prefix+"_bodies.geojson", data, 0644); err != nil {
			return fmt.Errorf("failed to write GeoJSON: %w", err)
		}
	}

	if cfg.Output.SaveImages {
		cmap, err := visualization.ParseColormap(cfg.Output.Colormap)
		if err != nil {
			return err
		}
		rows, cols := res.Mask.Rows, res.Mask.Cols

		c := visualization.NewCanvas(rows, cols)
		if err := visualization.DrawRaster(c, res.IndexRaster, cmap, -1, 1); err != nil {
			return err
		}
		if err := visualization.Save(c, prefix+"_01_"+res.Index.String()+".png"); err != nil {
			return err
		}

		c = visualization.NewCanvas(rows, cols)
		if err := visualization.DrawMask(c, res.Mask, visualization.Blues[len(visualization.Blues)-1]); err != nil {
			return err
		}
		if err := visualization.Save(c, prefix+"_02_water_mask.png"); err != nil {
			return err
		}

		c = visualization.NewCanvas(rows, cols)
		if err := visualization.DrawLabels(c, res.Bodies.Labels); err != nil {
			return err
		}
		if err := visualization.Save(c, prefix+"_03_water_bodies.png"); err != nil {
			return err
		}
	}

	logger.WithFields(map[string]interface{}{
		"scene": res.Name,
		"dir":   dir,
	}).Info("Scene outputs saved")
	return nil
}

// SaveChange writes both scenes plus the change table, change map and
// index difference map into dir.
func SaveChange(res *ChangeResult, dir string, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := SaveScene(res.Before, dir, cfg); err != nil {
		return err
	}
	if err := SaveScene(res.After, dir, cfg); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(dir, "change.csv"), func(f *os.File) error {
		return report.WriteChangeCSV(f, res.Change)
	}); err != nil {
		return err
	}

	if cfg.Output.SaveImages {
		rows, cols := res.Before.Mask.Rows, res.Before.Mask.Cols
		c := visualization.NewCanvas(rows, cols)
		if err := visualization.DrawChange(c, res.Before.Mask, res.After.Mask); err != nil {
			return err
		}
		if err := visualization.Save(c, filepath.Join(dir, "change_map.png")); err != nil {
			return err
		}

		c = visualization.NewCanvas(rows, cols)
		if err := visualization.DrawRaster(c, res.Diff, visualization.RdYlGn, 0, 0); err != nil {
			return err
		}
		if err := visualization.Save(c, filepath.Join(dir, "change_"+res.DiffMethod.String()+".png")); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
