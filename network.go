package darknet

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Network wraps a native darknet network
type Network struct {
	lib *Library
	// handle is the native network*, nil once closed
	handle NetworkHandle
	// configPath the network was loaded from
	configPath string
}

// LoadNetwork wraps load_network and loads a network from its configuration
// file.  An empty weightsPath loads the network without weights.  When clear
// is set the seen image counter of the network is reset.
func (l *Library) LoadNetwork(configPath, weightsPath string, clear bool) (*Network, error) {

	const op = "LoadNetwork"

	cfg, err := NewCString(configPath)

	if err != nil {
		return nil, newError(MarshalError, op, errors.Wrap(err, "config path"))
	}

	// a nil CString is passed to darknet as the NULL "no weights" sentinel
	var weights CString

	if weightsPath != "" {
		weights, err = NewCString(weightsPath)

		if err != nil {
			return nil, newError(MarshalError, op, errors.Wrap(err, "weights path"))
		}
	}

	// darknet exits the process on missing files, so check them in Go first
	if err := checkFile(op, "config", configPath); err != nil {
		return nil, err
	}

	if weightsPath != "" {
		if err := checkFile(op, "weights", weightsPath); err != nil {
			return nil, err
		}
	}

	h := l.engine.LoadNetwork(cfg, weights, clear)

	runtime.KeepAlive(cfg)
	runtime.KeepAlive(weights)

	if h == nil {
		return nil, newError(LoadError, op,
			errors.Errorf("darknet returned no network for %s", configPath))
	}

	l.log.Debug("loaded network",
		zap.String("config", configPath),
		zap.String("weights", weightsPath),
		zap.Bool("clear", clear),
	)

	return &Network{
		lib:        l,
		handle:     h,
		configPath: configPath,
	}, nil
}

// Close wraps free_network and releases the native network.  Only the first
// call releases, subsequent calls do nothing.
func (n *Network) Close() error {

	if n.handle == nil {
		return nil
	}

	n.lib.engine.FreeNetwork(n.handle)
	n.handle = nil

	n.lib.log.Debug("released network", zap.String("config", n.configPath))

	return nil
}

// Closed reports whether the network has been released
func (n *Network) Closed() bool {
	return n.handle == nil
}

// SetBatchSize wraps set_batch_network
func (n *Network) SetBatchSize(batch int) error {

	const op = "SetBatchSize"

	if n.handle == nil {
		return closedError(op)
	}

	if batch < 1 {
		return invalidArgf(op, "batch size must be positive, got %d", batch)
	}

	n.lib.engine.SetBatchNetwork(n.handle, batch)
	return nil
}

// Forward wraps forward_network
func (n *Network) Forward() error {

	if n.handle == nil {
		return closedError("Forward")
	}

	n.lib.engine.ForwardNetwork(n.handle)
	return nil
}

// Backward wraps backward_network
func (n *Network) Backward() error {

	if n.handle == nil {
		return closedError("Backward")
	}

	n.lib.engine.BackwardNetwork(n.handle)
	return nil
}

// Update wraps update_network
func (n *Network) Update() error {

	if n.handle == nil {
		return closedError("Update")
	}

	n.lib.engine.UpdateNetwork(n.handle)
	return nil
}

// Predict wraps network_predict_image and runs the network on img.  The
// image is resized by darknet to the network input size, but its channel
// count must match the network input as darknet copies that many planes.
func (n *Network) Predict(img *Image) error {

	const op = "Predict"

	if n.handle == nil {
		return closedError(op)
	}

	if err := img.check(op); err != nil {
		return err
	}

	_, _, channels := n.lib.engine.NetworkSize(n.handle)

	if c := img.Channels(); c != channels {
		return invalidArgf(op, "image has %d channels, network expects %d", c, channels)
	}

	n.lib.engine.NetworkPredictImage(n.handle, img.handle)
	return nil
}

// Size returns the input width, height and channel count of the network
func (n *Network) Size() (width, height, channels int, err error) {

	if n.handle == nil {
		return 0, 0, 0, closedError("Size")
	}

	width, height, channels = n.lib.engine.NetworkSize(n.handle)
	return width, height, channels, nil
}

// checkFile checks path exists in Go before it is passed to darknet
func checkFile(op, kind, path string) error {

	info, err := os.Stat(path)

	if err != nil {
		return newError(LoadError, op,
			errors.Wrapf(err, "%s file does not exist at %s", kind, path))
	}

	if info.IsDir() {
		return newError(LoadError, op,
			errors.Errorf("%s file %s is a directory", kind, path))
	}

	return nil
}
