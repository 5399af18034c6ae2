package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/absmach/pkgbench"
	"github.com/absmach/pkgbench/analyzer"
	"github.com/absmach/pkgbench/pkg/sdk"
	"github.com/fatih/color"
	prettyjson "github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
)

const filePermission = 0o644

var (
	psdk     sdk.SDK
	logger   = slog.New(slog.DiscardHandler)
	settings = pkgbench.Settings{
		APIURL:          sdk.DefAPIURL,
		LogLevel:        "info",
		Timeout:         sdk.DefTimeout,
		DownloadTimeout: sdk.DefDownloadTimeout,
		PollInterval:    analyzer.DefPollInterval,
		TLSVerification: true,
	}
)

func SetSDK(s sdk.SDK) {
	psdk = s
}

func SetLogger(l *slog.Logger) {
	logger = l
}

// SetSettings records the effective configuration used by the commands.
func SetSettings(s pkgbench.Settings) {
	settings = s
}

func logJSONCmd(cmd cobra.Command, iList ...any) {
	for _, i := range iList {
		m, err := json.Marshal(i)
		if err != nil {
			logErrorCmd(cmd, err)

			return
		}

		pj, err := prettyjson.Format(m)
		if err != nil {
			logErrorCmd(cmd, err)

			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n\n", string(pj))
	}
}

func logUsageCmd(cmd cobra.Command, u string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s", color.YellowString("\nusage: %s\n\n", u))
}

func logErrorCmd(cmd cobra.Command, err error) {
	boldRed := color.New(color.FgRed, color.Bold)
	boldRed.Fprint(cmd.ErrOrStderr(), "\nerror: ")

	fmt.Fprintf(cmd.ErrOrStderr(), "%s\n\n", color.RedString(err.Error()))
}

func logOKCmd(cmd cobra.Command) {
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n\n", color.BlueString("ok"))
}

func logSuccessCmd(cmd cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", color.GreenString(msg))
}

func logWarnCmd(cmd cobra.Command, msg string) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", color.YellowString(msg))
}
