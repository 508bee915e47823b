package explorer

import (
	"github.com/kelseyhightower/envconfig"
)

type ExplorerConfig struct {
	ExplorerApiUrl  string `envconfig:"EXPLORER_API_URL" required:"true"`
	ExplorerApiKey  string `envconfig:"EXPLORER_API_KEY"`
	TokenContract   string `envconfig:"TOKEN_CONTRACT" required:"true"`
	RequestTimeout  int    `envconfig:"EXPLORER_REQUEST_TIMEOUT" default:"30"` // in seconds
}

func LoadConfig() (c *ExplorerConfig, err error) {
	c = &ExplorerConfig{}

	err = envconfig.Process("", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}
