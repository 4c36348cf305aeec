package dual

// Config configures the neural network
type Config struct {
	Hidden      int `json:"hidden"`       // shared hidden layer width
	Width       int `json:"width"`        // board size width
	Height      int `json:"height"`       // board size height
	Features    int `json:"features"`     // feature plane count
	ActionSpace int `json:"action_space"` // action space
}

// DefaultConf sizes the network for a board of the given dimensions.
func DefaultConf(m, n, actionSpace int) Config {
	return Config{
		Hidden:      4 * m * n,
		Width:       n,
		Height:      m,
		Features:    3,
		ActionSpace: actionSpace,
	}
}

// IsValid reports whether the config describes a buildable network.
func (conf Config) IsValid() bool {
	return conf.Hidden >= 1 &&
		conf.ActionSpace >= 2 &&
		conf.Width > 0 &&
		conf.Height > 0 &&
		conf.Features > 0
}

func (conf Config) inputSize() int {
	return conf.Height * conf.Width * conf.Features
}
