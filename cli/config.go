package cli

import (
	"os"
	"strconv"

	"github.com/absmach/supermq/pkg/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defEnvFile = ".env"

var force = false

var (
	errEnvFileExists = errors.New("env file already exists, use --force to overwrite")
	errFailedEnvFile = errors.New("failed to create env file")
)

// EnvVars renders the effective settings as the environment variables the
// pkgbench binary reads.
func EnvVars() map[string]string {
	return map[string]string{
		"PKGBENCH_API_URL":          settings.APIURL,
		"PKGBENCH_LOG_LEVEL":        settings.LogLevel,
		"PKGBENCH_TIMEOUT":          settings.Timeout.String(),
		"PKGBENCH_DOWNLOAD_TIMEOUT": settings.DownloadTimeout.String(),
		"PKGBENCH_POLL_INTERVAL":    settings.PollInterval.String(),
		"PKGBENCH_TLS_VERIFICATION": strconv.FormatBool(settings.TLSVerification),
	}
}

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [show|init]",
		Short: "Client configuration",
		Long:  `Inspect the effective configuration or persist it to an env file.`,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show configuration",
		Long:  `Show the configuration after env, config file and flags were applied.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}
			logJSONCmd(*cmd, EnvVars())
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write env file",
		Long:  `Write the effective configuration to an env file (default .env).`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			path := defEnvFile
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				logErrorCmd(*cmd, errEnvFileExists)

				return
			}

			content, err := godotenv.Marshal(EnvVars())
			if err != nil {
				logErrorCmd(*cmd, errors.Wrap(errFailedEnvFile, err))

				return
			}
			if err := os.WriteFile(path, []byte(content+"\n"), filePermission); err != nil {
				logErrorCmd(*cmd, errors.Wrap(errFailedEnvFile, err))

				return
			}
			logSuccessCmd(*cmd, "Successfully created "+path)
			logOKCmd(*cmd)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	cmd.AddCommand(showCmd)
	cmd.AddCommand(initCmd)

	return cmd
}
