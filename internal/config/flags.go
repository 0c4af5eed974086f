package config

import (
	"flag"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Parse reads the driver command line in args.  Settings start from preset,
// are overlaid by the YAML file given with -c and finally by any flag set
// explicitly on the command line.  Each extra function may register driver
// specific flags on the flag set before parsing.
func Parse(name string, preset Config, args []string, output io.Writer,
	extra ...func(*flag.FlagSet)) (Config, error) {

	cfg := preset

	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	if output != nil {
		fs.SetOutput(output)
	}

	cfgFile := fs.String("c", "", "YAML config file, flags given on the command line take precedence")
	fs.StringVar(&cfg.NetworkConfig, "n", cfg.NetworkConfig, "Darknet network .cfg file")
	fs.StringVar(&cfg.Weights, "w", cfg.Weights, "Trained weights file, leave empty to load no weights")
	fs.StringVar(&cfg.Metadata, "m", cfg.Metadata, "Darknet .data metadata file providing class names")
	fs.Var((*labelsValue)(&cfg.Labels), "l", "Comma separated class labels, used when no metadata file is given")
	fs.IntVar(&cfg.Classes, "k", cfg.Classes, "Number of classes, 0 takes the count from the metadata or labels")
	fs.StringVar(&cfg.Image, "i", cfg.Image, "Image file to run detection on")
	fs.StringVar(&cfg.Output, "o", cfg.Output, "Base name of the annotated output image")
	fs.Var((*float32Value)(&cfg.Threshold), "t", "Detection probability threshold")
	fs.Var((*float32Value)(&cfg.HierThreshold), "hier", "Hierarchical class threshold")
	fs.Var((*float32Value)(&cfg.NMSThreshold), "nms", "Non-maximum suppression IoU threshold, 0 disables NMS")

	for _, register := range extra {
		register(fs)
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *cfgFile == "" {
		return cfg, nil
	}

	// record the explicit flags before the file replaces their targets
	explicit := make(map[string]string)

	fs.Visit(func(f *flag.Flag) {
		if f.Name != "c" {
			explicit[f.Name] = f.Value.String()
		}
	})

	loaded := preset

	if err := loaded.LoadFile(*cfgFile); err != nil {
		return Config{}, err
	}

	cfg = loaded

	for name, val := range explicit {
		if err := fs.Set(name, val); err != nil {
			return Config{}, errors.Wrapf(err, "error reapplying flag -%s", name)
		}
	}

	return cfg, nil
}

type float32Value float32

func (f *float32Value) String() string {
	return strconv.FormatFloat(float64(*f), 'g', -1, 32)
}

func (f *float32Value) Set(s string) error {

	v, err := strconv.ParseFloat(s, 32)

	if err != nil {
		return err
	}

	*f = float32Value(v)
	return nil
}

type labelsValue []string

func (l *labelsValue) String() string {
	return strings.Join(*l, ",")
}

func (l *labelsValue) Set(s string) error {

	*l = nil

	for _, label := range strings.Split(s, ",") {
		if label = strings.TrimSpace(label); label != "" {
			*l = append(*l, label)
		}
	}

	return nil
}
