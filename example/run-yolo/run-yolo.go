/*
Example code showing how to run YOLOv3 trained on Pascal VOC over a single
image with a fixed label list and save the image annotated by darknet.
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

	cfg, err := config.Parse("run-yolo", config.VOC(), os.Args[1:], nil)

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

	names, err := lib.LoadNames(cfg.Labels)

	if err != nil {
		return err
	}

	defer names.Close()

	classes := cfg.Classes

	if classes == 0 {
		classes = names.Len()
	}

	img, err := lib.LoadImageColor(cfg.Image, 0, 0)

	if err != nil {
		return err
	}

	defer img.Close()

	// annotate a copy so the decoded image stays untouched
	canvas, err := img.Resize(img.Width(), img.Height())

	if err != nil {
		return err
	}

	defer canvas.Close()

	start := time.Now()

	// draw_detections expects box coordinates relative to the image
	dets, err := net.Detect(canvas, darknet.DetectOptions{
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

	log.Info("Inference complete",
		zap.String("image", cfg.Image),
		zap.Int("detections", dets.Len()),
		zap.Duration("took", time.Since(start)),
	)

	err = dets.Annotate(canvas, cfg.Threshold, names, alphabet, classes)

	if err != nil {
		return err
	}

	if err := canvas.Save(cfg.Output); err != nil {
		return err
	}

	log.Info("Saved annotated image", zap.String("file", cfg.Output+".jpg"))

	return nil
}
