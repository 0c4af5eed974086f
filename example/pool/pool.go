/*
Example code showing how to run YOLOv3 over a directory of images with a pool
of networks, one goroutine per image.  Boxes are drawn with OpenCV, or in pure
Go with -g, and the annotated images written to the output directory.
*/
package main

import (
	"errors"
	"flag"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/swdee/go-darknet"
	"github.com/swdee/go-darknet/internal/config"
	"github.com/swdee/go-darknet/internal/logger"
	"github.com/swdee/go-darknet/native"
	"github.com/swdee/go-darknet/preprocess"
	"github.com/swdee/go-darknet/render"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// job holds the settings shared by all images processed
type job struct {
	log    *zap.Logger
	lib    *darknet.Library
	opts   darknet.DetectOptions
	labels []string
	outDir string
	goDraw bool
}

func main() {

	var (
		imgDir   string
		outDir   string
		poolSize int
		repeat   int
		goDraw   bool
		cpus     string
	)

	cfg, err := config.Parse("pool", config.VOC(), os.Args[1:], nil,
		func(fs *flag.FlagSet) {
			fs.StringVar(&imgDir, "d", "darknet/data/", "A directory of images to run detection on")
			fs.StringVar(&outDir, "out", "detections/", "Directory the annotated images are written to")
			fs.IntVar(&poolSize, "s", 2, "Size of the network pool")
			fs.IntVar(&repeat, "r", 1, "Repeat processing image directory the specified number of times")
			fs.BoolVar(&goDraw, "g", false, "Render boxes in pure Go and save PNG instead of using OpenCV")
			fs.StringVar(&cpus, "cpus", "", "Restrict inference to the given CPU cores, eg: 0-3,6")
		})

	if errors.Is(err, flag.ErrHelp) {
		return
	} else if err != nil {
		os.Exit(2)
	}

	log, _, err := logger.ForRun(false)

	if err != nil {
		panic(err)
	}

	defer log.Sync()

	// the image setting is unused, directory listing supplies the images
	cfg.Image = imgDir

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	// check dir exists
	info, err := os.Stat(imgDir)

	if err != nil {
		log.Fatal("No such image directory", zap.String("dir", imgDir), zap.Error(err))
	}

	if !info.IsDir() {
		log.Fatal("Image path is not a directory", zap.String("dir", imgDir))
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatal("Error creating output directory", zap.Error(err))
	}

	if cpus != "" {
		mask, err := darknet.ParseCoreList(cpus)

		if err != nil {
			log.Fatal("Invalid core list", zap.Error(err))
		}

		if err := darknet.SetCPUAffinity(mask); err != nil {
			log.Fatal("Failed to set CPU affinity", zap.Error(err))
		}

		log.Info("Set CPU affinity", zap.String("cores", cpus))
	}

	lib, err := native.NewLibrary(darknet.WithLogger(log))

	if err != nil {
		log.Fatal("Error creating library", zap.Error(err))
	}

	labels, classes, err := classNames(lib, cfg)

	if err != nil {
		log.Fatal("Error loading class names", zap.Error(err))
	}

	// create new pool
	pool, err := lib.NewPool(poolSize, cfg.NetworkConfig, cfg.Weights)

	if err != nil {
		log.Fatal("Error creating network pool", zap.Error(err))
	}

	defer pool.Close()

	files, err := os.ReadDir(imgDir)

	if err != nil {
		log.Fatal("Error reading image directory", zap.Error(err))
	}

	j := &job{
		log: log,
		lib: lib,
		opts: darknet.DetectOptions{
			Threshold:     cfg.Threshold,
			HierThreshold: cfg.HierThreshold,
			NMSThreshold:  cfg.NMSThreshold,
			Classes:       classes,
			Relative:      true,
		},
		labels: labels,
		outDir: outDir,
		goDraw: goDraw,
	}

	var wg sync.WaitGroup
	start := time.Now()
	count := 0

	for i := 0; i < repeat; i++ {
		for _, file := range files {
			if file.IsDir() {
				continue
			}

			// pool.Get() blocks if no networks are available in the pool
			net := pool.Get()
			count++

			wg.Add(1)

			go func(net *darknet.Network, file string) {
				defer wg.Done()
				defer pool.Return(net)

				j.processFile(net, file)
			}(net, filepath.Join(imgDir, file.Name()))
		}
	}

	wg.Wait()

	log.Info("Completed",
		zap.Int("images", count),
		zap.Int("poolSize", pool.Size()),
		zap.Duration("took", time.Since(start)),
	)
}

// classNames returns the class labels and count from the metadata file when
// one is configured, otherwise from the configured labels
func classNames(lib *darknet.Library, cfg config.Config) ([]string, int, error) {

	labels := cfg.Labels
	classes := cfg.Classes

	if cfg.Metadata != "" {
		meta, err := lib.LoadMetadata(cfg.Metadata)

		if err != nil {
			return nil, 0, err
		}

		defer meta.Close()

		labels = meta.Names()

		if classes == 0 {
			classes = meta.Classes()
		}
	}

	if classes == 0 {
		classes = len(labels)
	}

	return labels, classes, nil
}

func (j *job) processFile(net *darknet.Network, file string) {

	log := j.log.With(zap.String("file", file))

	mat := gocv.IMRead(file, gocv.IMReadColor)

	if mat.Empty() {
		log.Warn("Error reading image")
		return
	}

	defer mat.Close()

	start := time.Now()

	img, err := preprocess.MatToImage(j.lib, mat)

	if err != nil {
		log.Error("Error converting image", zap.Error(err))
		return
	}

	defer img.Close()

	dets, err := net.Detect(img, j.opts)

	if err != nil {
		log.Error("Detection failed", zap.Error(err))
		return
	}

	defer dets.Close()

	results := dets.Results(j.opts.Threshold, j.labels)

	log.Info("Detected",
		zap.Int("objects", len(results)),
		zap.Duration("took", time.Since(start)),
	)

	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	if j.goDraw {
		if err := j.savePNG(img, results, filepath.Join(j.outDir, name+".png")); err != nil {
			log.Error("Error saving image", zap.Error(err))
		}
		return
	}

	render.DetectionBoxes(&mat, results, j.opts.Classes,
		render.FontForHeight(mat.Rows()), render.LineWidth(mat.Rows()))

	if ok := gocv.IMWrite(filepath.Join(j.outDir, name+".jpg"), mat); !ok {
		log.Error("Failed to write output image")
	}
}

// savePNG draws results onto a copy of img in pure Go and encodes it as PNG
func (j *job) savePNG(img *darknet.Image, results []darknet.Result, path string) error {

	rgba, err := preprocess.ToRGBA(img)

	if err != nil {
		return err
	}

	render.DrawResults(rgba, results, j.opts.Classes, render.LineWidth(img.Height()))

	f, err := os.Create(path)

	if err != nil {
		return err
	}

	if err := png.Encode(f, rgba); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
