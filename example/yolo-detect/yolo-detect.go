/*
Example code showing how to run YOLOv3 trained on COCO over a single image
with class names taken from a darknet metadata file.  Detections are listed
in the log and drawn onto the saved image.
*/
package main

import (
	"errors"
	"flag"
	"os"
	"time"

	"github.com/swdee/go-darknet"
	"github.com/swdee/go-darknet/internal/config"
	"github.com/swdee/go-darknet/internal/logger"
	"github.com/swdee/go-darknet/native"
	"go.uber.org/zap"
)

func main() {

	cfg, err := config.Parse("yolo-detect", config.COCO(), os.Args[1:], nil)

	if errors.Is(err, flag.ErrHelp) {
		return
	} else if err != nil {
		os.Exit(2)
	}

	log, _, err := logger.ForRun(true)

	if err != nil {
		panic(err)
	}

	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	if err := run(log, cfg); err != nil {
		log.Fatal("Detection failed", zap.Error(err))
	}
}

// loadNames returns the class names and count from the metadata file when
// one is configured, otherwise from the configured labels
func loadNames(lib *darknet.Library, cfg config.Config) (*darknet.NameList, int, error) {

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

	names, err := lib.LoadNames(labels)

	if err != nil {
		return nil, 0, err
	}

	if classes == 0 {
		classes = names.Len()
	}

	return names, classes, nil
}

func run(log *zap.Logger, cfg config.Config) error {

	lib, err := native.NewLibrary(darknet.WithLogger(log))

	if err != nil {
		return err
	}

	alphabet := lib.LoadAlphabet()
	defer alphabet.Close()

	net, err := lib.LoadNetwork(cfg.NetworkConfig, cfg.Weights, false)

	if err != nil {
		return err
	}

	defer net.Close()

	names, classes, err := loadNames(lib, cfg)

	if err != nil {
		return err
	}

	defer names.Close()

	img, err := lib.LoadImageColor(cfg.Image, 0, 0)

	if err != nil {
		return err
	}

	defer img.Close()

	start := time.Now()

	// draw_detections expects box coordinates relative to the image
	dets, err := net.Detect(img, darknet.DetectOptions{
		Threshold:     cfg.Threshold,
		HierThreshold: cfg.HierThreshold,
		NMSThreshold:  cfg.NMSThreshold,
		Classes:       classes,
		Relative:      true,
	})

	if err != nil {
		return err
	}

	defer dets.Close()

	log.Info("Inference complete", zap.Duration("took", time.Since(start)))

	for _, res := range dets.Results(cfg.Threshold, names.Labels()) {
		log.Info("Detected",
			zap.String("class", res.Name),
			zap.Float32("probability", res.Probability),
			zap.Int("left", res.Box.Left),
			zap.Int("top", res.Box.Top),
			zap.Int("right", res.Box.Right),
			zap.Int("bottom", res.Box.Bottom),
		)
	}

	if err := dets.Annotate(img, cfg.Threshold, names, alphabet, classes); err != nil {
		return err
	}

	if err := img.Save(cfg.Output); err != nil {
		return err
	}

	log.Info("Saved annotated image", zap.String("file", cfg.Output+".jpg"))

	return nil
}
