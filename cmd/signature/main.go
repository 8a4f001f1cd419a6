package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/tensorplex-labs/eden/internal/utils/logger"
	"github.com/tensorplex-labs/eden/pkg/signature"
)

func main() {
	keyFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "key-name",
			Aliases:  []string{"k"},
			Usage:    "name of the key file",
			EnvVars:  []string{"KEY_NAME"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "key-dir",
			Value:   signature.DefaultKeyDir,
			Usage:   "directory holding commune key files",
			EnvVars: []string{"COMMUNE_KEY_DIR"},
		},
	}

	app := &cli.App{
		Name:  "eden-signature",
		Usage: "inspect commune keys and sign or verify messages",
		Before: func(c *cli.Context) error {
			logger.Init(logger.Options{})
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "inspect",
				Usage: "print the ss58 address of a key",
				Flags: keyFlags,
				Action: func(c *cli.Context) error {
					key, err := signature.LoadKey(c.String("key-dir"), c.String("key-name"))
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, key.SS58Address())
					return nil
				},
			},
			{
				Name:      "sign",
				Usage:     "sign a message with a key",
				ArgsUsage: "<message>",
				Flags:     keyFlags,
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("sign expects exactly one message argument", 2)
					}
					key, err := signature.LoadKey(c.String("key-dir"), c.String("key-name"))
					if err != nil {
						return err
					}
					sig, err := key.Provider.Sign(c.Args().First())
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, sig)
					return nil
				},
			},
			{
				Name:      "verify",
				Usage:     "verify a 0x signature over a message",
				ArgsUsage: "<message> <signature> <ss58-address>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 3 {
						return cli.Exit("verify expects <message> <signature> <ss58-address>", 2)
					}
					ok, err := signature.Verify(c.Args().Get(0), c.Args().Get(1), c.Args().Get(2))
					if err != nil {
						return err
					}
					if !ok {
						return cli.Exit("signature invalid", 1)
					}
					fmt.Fprintln(c.App.Writer, "signature valid")
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("signature tool failed")
	}
}
