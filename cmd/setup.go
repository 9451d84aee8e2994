package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/lrcx/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func (r *Runner) configFile() string {
	if r.configPath == "" {
		return defaultConfigPath
	}
	return r.configPath
}

// SetupConfig writes the default configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configFile()
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Configuration written to %s\n", path)
	r.writePlain("Run 'lrcx setup cookie --curl-file request.sh' to use your own account cookie\n")
	return nil
}

// SetupCookie stores the catalog cookie, and the browser's User-Agent when present, from a cURL command.
//
// Accepts a cURL command copied from the browser's DevTools network tab.
func (r *Runner) SetupCookie(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var curlHeaders *shared.CurlHeaders
	var err error

	if curlFile != "" {
		curlHeaders, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		curlHeaders, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	if curlHeaders.Cookie == "" {
		return fmt.Errorf("%w: no cookie found in cURL command", shared.ErrInvalidInput)
	}

	path := r.configFile()
	config := r.config
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return err
		}
	}

	config.Credentials.Cookie = curlHeaders.Cookie
	if ua := curlHeaders.UserAgent(); ua != "" {
		config.Catalog.UserAgent = ua
	}

	if err := shared.SaveConfig(path, config); err != nil {
		return err
	}
	r.config = config

	r.logger.Debug("saved cookie", "length", len(curlHeaders.Cookie))
	r.writePlain("✓ Catalog cookie saved to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("Run 'lrcx search \"那些花儿 - 朴树\"' to test the cookie\n")
	return nil
}

// SetupDatabase initializes the history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.History.Path
	r.logger.Info("initializing database", "path", path)

	db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", path)
	r.writePlain("✓ History database ready at %s\n", path)
	if !r.config.History.Enabled {
		r.writePlain("Set history.enabled = true in %s or pass --history to record runs\n", r.configFile())
	}
	return nil
}
