package chain

import (
	"github.com/kelseyhightower/envconfig"
)

type ChainConfig struct {
	RPCUrl         string `envconfig:"CHAIN_RPC_URL" required:"true"`
	TokenContract  string `envconfig:"TOKEN_CONTRACT" required:"true"`
	GatewayAddress string `envconfig:"RECEIVING_ADDRESS" required:"true"`
	RequestTimeout int    `envconfig:"CHAIN_REQUEST_TIMEOUT" default:"30"` // in seconds
}

func LoadConfig() (c *ChainConfig, err error) {
	c = &ChainConfig{}

	err = envconfig.Process("", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}
