package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amaumene/bestmovies/internal/constants"
)

// Flags shared by every command.
type flags struct {
	configFile   string
	cachePath    string
	cacheBackend string
	databasePath string
	debug        bool
}

var opts flags

var rootCmd = &cobra.Command{
	Use:   constants.AppName,
	Short: "Browse Rotten Tomatoes best-of lists and store them in SQLite",
	Long: `bestmovies crawls the Rotten Tomatoes best-of genre listings, enriches the
movies you pick with OMDb data and loads everything into a SQLite database.
Every page and API response is cached, so repeated runs stay offline.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.handler.RunSession(cmd.Context(), os.Stdin)
	},
}

var genresCmd = &cobra.Command{
	Use:          "genres",
	Short:        "List the genres of the best-of directory",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.handler.ListGenres(cmd.Context())
	},
}

var listCmd = &cobra.Command{
	Use:          "list <genre>",
	Short:        "Print the ranked movies of a genre without storing them",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.handler.ShowListing(cmd.Context(), args[0])
	},
}

var cacheCmd = &cobra.Command{
	Use:          "cache",
	Short:        "Show the response cache location and size",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		app.handler.ShowCache()
		return nil
	},
}

var dbCmd = &cobra.Command{
	Use:          "db",
	Short:        "Show what the last session stored in the SQLite database",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.handler.ShowDatabase(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", constants.AppName, constants.AppVersion)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "config file (default is ./config.json or $CONFIG_FILE)")
	pf.StringVar(&opts.cachePath, "cache", "", "response cache path")
	pf.StringVar(&opts.cacheBackend, "cache-backend", "", "response cache backend (file or bolt)")
	pf.StringVar(&opts.databasePath, "db", "", "SQLite database path")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(genresCmd, listCmd, cacheCmd, dbCmd, versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}
