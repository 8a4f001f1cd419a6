package config

import (
	"net"
	"strconv"

	"github.com/urfave/cli/v2"
)

// IdentityFlags are the flags shared by the validator and miner entrypoints.
func IdentityFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "key-name",
			Aliases: []string{"k"},
			Usage:   "name of the key file under COMMUNE_KEY_DIR",
			EnvVars: []string{"KEY_NAME"},
		},
		&cli.StringFlag{
			Name:  "module-path",
			Usage: "registered module name, used as the key name when --key-name is empty",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "host the module listens on and is registered with",
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "port the module listens on and is registered with",
		},
		&cli.BoolFlag{
			Name:  "use-testnet",
			Usage: "talk to the testnet chain gateway",
		},
		&cli.StringFlag{
			Name:  "env-file",
			Value: ".env",
			Usage: "dotenv file loaded before the environment is read",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "force debug log level",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "force trace log level",
		},
	}
}

// ApplyFlags lets flags set on the command line win over the environment.
func (c *AppConfig) ApplyFlags(ctx *cli.Context) {
	if v := ctx.String("key-name"); v != "" {
		c.KeyName = v
	}
	if c.KeyName == "" {
		c.KeyName = ctx.String("module-path")
	}
	if ctx.IsSet("host") {
		c.Host = ctx.String("host")
	}
	if ctx.IsSet("port") {
		c.Port = ctx.Int("port")
	}
	if ctx.Bool("use-testnet") {
		c.UseTestnet = true
	}
	if c.UseTestnet {
		c.GatewayPort = c.GatewayTestnetPort
	}
}

// ListenAddress is host:port of the local server.
func (c *ServerEnvConfig) ListenAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
