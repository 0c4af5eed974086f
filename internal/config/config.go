// Package config holds the settings of the example detection drivers
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config defines the model files, input image and detection thresholds used
// by a driver run
type Config struct {
	// NetworkConfig is the darknet .cfg file describing the network
	NetworkConfig string `yaml:"network_config"`
	// Weights is the trained weights file, empty loads no weights
	Weights string `yaml:"weights"`
	// Metadata is an optional darknet .data file providing class names and
	// the class count
	Metadata string `yaml:"metadata,omitempty"`
	// Labels are the class names used when no Metadata file is given
	Labels []string `yaml:"labels,omitempty"`
	// Classes is the number of classes the network was trained on, 0 takes
	// the count from Metadata or Labels
	Classes int `yaml:"classes"`
	// Image is the input image file
	Image string `yaml:"image"`
	// Output is the base name of the annotated image, darknet appends .jpg
	Output string `yaml:"output"`

	Threshold     float32 `yaml:"threshold"`
	HierThreshold float32 `yaml:"hier_threshold"`
	NMSThreshold  float32 `yaml:"nms_threshold"`
}

// VOCLabels are the 20 classes of the Pascal VOC dataset
var VOCLabels = []string{
	"aeroplane", "bicycle", "bird", "boat", "bottle",
	"bus", "car", "cat", "chair", "cow",
	"diningtable", "dog", "horse", "motorbike", "person",
	"pottedplant", "sheep", "sofa", "train", "tvmonitor",
}

// VOC returns the settings for YOLOv3 trained on Pascal VOC
func VOC() Config {
	return Config{
		NetworkConfig: "darknet/cfg/yolov3-voc.cfg",
		Weights:       "trained_weights/yolov3.weights",
		Labels:        append([]string(nil), VOCLabels...),
		Classes:       20,
		Image:         "darknet/data/horses.jpg",
		Output:        "detection",
		Threshold:     0.001,
		HierThreshold: 0.5,
		NMSThreshold:  0.45,
	}
}

// COCO returns the settings for YOLOv3 trained on COCO, with class names
// and count read from the coco.data metadata file
func COCO() Config {
	return Config{
		NetworkConfig: "darknet/cfg/yolov3.cfg",
		Weights:       "trained_weights/yolov3.weights",
		Metadata:      "darknet/cfg/coco.data",
		Image:         "darknet/data/horses.jpg",
		Output:        "detection",
		Threshold:     0.5,
		HierThreshold: 0.5,
		NMSThreshold:  0.45,
	}
}

// LoadFile overlays the settings in the YAML file at path onto c, settings
// missing from the file keep their current value
func (c *Config) LoadFile(path string) error {

	data, err := os.ReadFile(path)

	if err != nil {
		return errors.Wrap(err, "error reading config file")
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "error parsing config file %s", path)
	}

	return nil
}

// Validate checks the settings before any model is loaded
func (c Config) Validate() error {

	if c.NetworkConfig == "" {
		return errors.New("network config file is required")
	}

	if c.Image == "" {
		return errors.New("input image is required")
	}

	if c.Output == "" {
		return errors.New("output base name is required")
	}

	if c.Threshold < 0 || c.HierThreshold < 0 || c.NMSThreshold < 0 {
		return errors.Errorf("thresholds must not be negative, got %v, %v and %v",
			c.Threshold, c.HierThreshold, c.NMSThreshold)
	}

	if c.Classes < 0 {
		return errors.Errorf("classes must not be negative, got %d", c.Classes)
	}

	if c.Metadata == "" && len(c.Labels) == 0 {
		return errors.New("either a metadata file or labels are required")
	}

	if c.Metadata == "" && c.Classes > len(c.Labels) {
		return errors.Errorf("%d classes but only %d labels", c.Classes, len(c.Labels))
	}

	return nil
}

// Save writes c to path as YAML
func (c Config) Save(path string) error {

	data, err := yaml.Marshal(c)

	if err != nil {
		return errors.Wrap(err, "error encoding config")
	}

	return errors.Wrap(os.WriteFile(path, data, 0o644), "error writing config file")
}
