package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"tracklake/internal/actions"
)

func main() {
	app := &cli.App{
		Name:  "tracklake",
		Usage: "Tracklake fetches a Spotify playlist and loads its tracks into a document store and a SQL table.",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the playlist pipeline once",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "playlist",
						Usage: "playlist id to load (overrides TRACKLAKE_PLAYLIST_ID)",
					},
					&cli.StringFlag{
						Name:  "sinks",
						Usage: "comma-separated destinations: mongo, postgres, csv",
					},
					&cli.StringFlag{
						Name:  "csv-out",
						Usage: "output path for the csv sink",
					},
					&cli.StringFlag{
						Name:  "env-file",
						Usage: "path to a .env file with credentials and connection strings",
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "abort on the first malformed record instead of skipping it",
					},
				},
				Action: actions.Run,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
